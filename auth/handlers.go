// Package auth, as part of the authentication module.
// This file, `handlers.go`, is responsible for handling HTTP requests related to authentication.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/forum-go/response"
	"github.com/user/forum-go/validate"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service      *AuthService
	secureCookie bool
}

// NewHandlers creates a new Handlers instance. secureCookie sets the Secure
// attribute on the jwt cookie and should be true in production.
func NewHandlers(service *AuthService, secureCookie bool) *Handlers {
	return &Handlers{service: service, secureCookie: secureCookie}
}

// RegisterRoutes mounts the public /auth endpoints on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister())
	r.Post("/login", h.HandleLogin())
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user in the system.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} response.MessageOnly "User registered"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - Email already registered"
// @Failure 429 {object} apperror.ErrorResponse "Too Many Requests"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		email, err := h.service.Register(r.Context(), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		response.Message(w, http.StatusCreated, "User "+email+" registered successfully")
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Logs in an existing user. The token is returned in the body and set as the httpOnly `jwt` cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.LoginResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 429 {object} apperror.ErrorResponse "Too Many Requests"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		token, err := h.service.Login(r.Context(), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(h.service.CookieMaxAge().Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		response.JSON(w, http.StatusOK, LoginResponse{Message: "Login successful", JWT: token})
	}
}
