// Package auth is responsible for handling authentication and authorization logic.
// This includes user registration, login, token generation (JWT), and token validation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/config"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/storage"
)

const tokenIssuer = "forum-api"

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// UserStore is the part of the storage layer AuthService needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthService provides authentication-related services.
type AuthService struct {
	users      UserStore
	authConfig *config.AuthConfig
	log        *zap.Logger
	now        func() time.Time
	// dummyHash is compared against when the email is unknown, so both failure
	// paths of Login cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, authConfig *config.AuthConfig, log *zap.Logger) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), authConfig.BcryptCost)
	return &AuthService{
		users:      users,
		authConfig: authConfig,
		log:        logger.OrNop(log),
		now:        time.Now,
		dummyHash:  dummy,
	}
}

// Register creates a new user and returns the email it was registered with.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Password) > maxPasswordBytes {
		return "", apperror.NewValidationError("validation failed", []apperror.FieldError{{
			Field:   "password",
			Rule:    "max",
			Message: fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes),
		}})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.authConfig.BcryptCost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}

	created, err := s.users.CreateUser(ctx, &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		if storage.IsUniqueViolation(err, storage.ConstraintUserEmail) {
			return "", apperror.NewConflictError("A user with this email already exists.", nil)
		}
		return "", apperror.NewDatabaseError("failed to create user", err)
	}

	s.log.Info("user registered", zap.String("user_id", created.ID))
	return created.Email, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			// Never reveal whether the email or the password was wrong.
			return "", apperror.NewAuthError("Invalid credentials", nil)
		}
		return "", apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", apperror.NewAuthError("Invalid credentials", nil)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", err
	}
	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return token, nil
}

// IssueToken signs an HS256 token whose subject is the user id.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := &CustomClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authConfig.TokenDuration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", apperror.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// ParseToken verifies the signature, algorithm, issuer and expiry of tokenString.
// The returned error describes the cause and is meant for logs only.
func (s *AuthService) ParseToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.authConfig.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// CookieMaxAge is how long the browser should keep the jwt cookie.
func (s *AuthService) CookieMaxAge() time.Duration {
	return s.authConfig.TokenDuration
}
