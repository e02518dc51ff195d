// Package auth, as part of the authentication module.
// This file, `context.go`, carries the verified token claims through the request context.
package auth

import (
	"context"
)

// `contextKey` is unexported so no other package can collide with it.
type contextKey string

const claimsContextKey contextKey = "auth_claims"

// NewContextWithClaims returns a child context carrying claims.
func NewContextWithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the claims stored by JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's id, or "" and false on public routes.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
