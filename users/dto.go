// Package users, as part of the user profile module.
// This file, `dto.go`, defines the response bodies of the users module.
package users

import (
	"time"

	"github.com/user/forum-go/domain"
)

// UserProfileResponse is the public view of a user.
// @Description User profile information
type UserProfileResponse struct {
	ID        string    `json:"id" example:"5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"`
	Username  string    `json:"username" example:"DemoUser"`
	Email     string    `json:"email" example:"demo@example.com"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfile(u *domain.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
