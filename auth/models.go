package auth

import "github.com/golang-jwt/jwt/v5"

// CustomClaims is the JWT payload. The user id travels in the standard `sub`
// claim; Email is carried alongside it.
type CustomClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *CustomClaims) UserID() string {
	return c.Subject
}
