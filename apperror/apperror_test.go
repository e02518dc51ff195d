package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"auth", NewAuthError("nope", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"conflict", NewConflictError("taken", nil), http.StatusConflict},
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("bad", nil), http.StatusBadRequest},
		{"database", NewDatabaseError("db", nil), http.StatusInternalServerError},
		{"rate limit", NewRateLimitError("slow down"), http.StatusTooManyRequests},
		{"unavailable", NewUnavailableError("down", nil), http.StatusServiceUnavailable},
		{"payload too large", NewPayloadTooLargeError("big", nil), http.StatusRequestEntityTooLarge},
		{"unknown", NewAppError(UnknownError, "?", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestToResponseHidesUnderlyingError(t *testing.T) {
	err := NewDatabaseError("failed to create topic", errors.New("pq: connection refused"))

	resp := err.ToResponse()

	assert.Equal(t, "failed to create topic", resp.Message)
	assert.Equal(t, "Internal Server Error", resp.Error)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestValidationDetails(t *testing.T) {
	err := NewValidationError("validation failed", []FieldError{{Field: "title", Rule: "required", Message: "title is required"}})

	resp := err.ToResponse()

	require.Len(t, resp.Details, 1)
	assert.Equal(t, "title", resp.Details[0].Field)
}

func TestFromErrorFollowsWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewConflictError("A topic with the same title already exists.", nil))

	ae, ok := FromError(wrapped)

	require.True(t, ok)
	assert.Equal(t, ConflictError, ae.Type)
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsNotFound(wrapped))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}
