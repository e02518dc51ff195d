// Package users encapsulates the user profile endpoints.
// This file, `handlers.go`, is responsible for handling HTTP requests related to users.
package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/response"
)

// UserHandlers provides HTTP handlers for user profiles.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user endpoints on r. r must already require authentication.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers())
	r.Get("/me", h.HandleGetUserProfile())
}

// HandleGetUserProfile godoc
// @Summary Get current user's profile
// @Description Retrieves the profile information for the currently authenticated user.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=users.UserProfileResponse} "User profile"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Router /users/me [get]
func (h *UserHandlers) HandleGetUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		profile, err := h.service.GetUserProfile(r.Context(), userID)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "User profile", profile)
	}
}

// HandleListUsers godoc
// @Summary List users
// @Description Lists every registered user, oldest first.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]users.UserProfileResponse} "List of users"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListUsers(r.Context())
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "List of users", list)
	}
}
