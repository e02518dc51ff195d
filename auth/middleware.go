// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines the JWT guard applied to protected route groups.
package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/response"
)

// CookieName is the cookie that carries the token for browser clients.
const CookieName = "jwt"

// unauthorizedMessage is the only thing a caller learns about a rejected token.
const unauthorizedMessage = "Unauthorized. Invalid or expired token."

// TokenParser verifies a raw token string.
type TokenParser interface {
	ParseToken(tokenString string) (*CustomClaims, error)
}

// JWTMiddleware requires a valid token on every request it wraps. The token is
// read from `Authorization: Bearer <token>` first and the `jwt` cookie second;
// the verified claims are stored in the request context.
func JWTMiddleware(parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := tokenFromRequest(r)
			if !ok {
				response.Error(w, r, apperror.NewAuthError(unauthorizedMessage, nil))
				return
			}

			claims, err := parser.ParseToken(tokenString)
			if err != nil {
				// The cause (expired, bad signature, ...) is logged, never returned.
				logger.FromContext(r.Context()).Debug("token rejected", zap.Error(err))
				response.Error(w, r, apperror.NewAuthError(unauthorizedMessage, err))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
