// Package users, as part of the user profile module.
// This file, `service.go`, contains the business logic for user lookups.
package users

import (
	"context"
	"errors"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage"
)

// UserStore is the part of the storage layer UserService needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// UserService provides read access to user profiles.
type UserService struct {
	store UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// GetUserProfile retrieves a user's profile by id.
func (s *UserService) GetUserProfile(ctx context.Context, userID string) (*UserProfileResponse, error) {
	if !storage.ValidID(userID) {
		return nil, apperror.NewNotFoundError("User not found", nil)
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to fetch user profile", err)
	}
	return toProfile(u), nil
}

// ListUsers returns every user, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*UserProfileResponse, error) {
	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	out := make([]*UserProfileResponse, 0, len(all))
	for _, u := range all {
		out = append(out, toProfile(u))
	}
	return out, nil
}
