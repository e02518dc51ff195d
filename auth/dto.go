// Package auth provides authentication and authorization functionality.
// This file, `dto.go` (Data Transfer Object), defines the request and response
// bodies of the /auth endpoints.
package auth

// RegisterRequest represents the registration request payload.
// `validate:"..."` tags are checked by the validate package before the service runs.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32" example:"DemoUser"`
	Email    string `json:"email" validate:"required,email,max=254" example:"demo@example.com"`
	// max counts runes; Register also caps the byte length for bcrypt.
	Password string `json:"password" validate:"required,min=8,max=72" example:"strongpassword123"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"demo@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginResponse is returned on successful login. The same token is also set as the `jwt` cookie.
type LoginResponse struct {
	Message string `json:"message" example:"Login successful"`
	JWT     string `json:"jwt" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}
