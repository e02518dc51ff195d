// Package apperror defines a centralized system for application-specific errors.
// Every failure that reaches an HTTP client goes through an AppError so that the
// status code and the JSON error envelope stay consistent across the forum API.
package apperror

import (
	"errors"
	"fmt"
	// `net/http` is used for HTTP status codes and status texts.
	"net/http"
)

// ErrorType is an enumeration (using `iota`) for different categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the storage layer
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (missing/invalid token, bad credentials)
	AuthError
	// ForbiddenError represents an authorization error (authenticated, but not the owner)
	ForbiddenError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// InternalError represents a generic internal server error
	InternalError
	// MigrationError represents an error during database migrations
	MigrationError
	// ConflictError represents a conflict, e.g., a slug or email that already exists
	ConflictError
	// RateLimitError represents a client that exceeded its request budget
	RateLimitError
	// UnavailableError represents a dependency, such as storage, that cannot be reached
	UnavailableError
	// PayloadTooLargeError represents a request body over the accepted size
	PayloadTooLargeError
)

// FieldError describes a single failing field of a validated request body.
type FieldError struct {
	Field   string `json:"field" example:"title"`
	Rule    string `json:"rule" example:"required"`
	Message string `json:"message" example:"title is required"`
}

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for logging, which is never sent to clients.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
	Details []FieldError
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so `errors.Is` and `errors.As` can inspect the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	case AuthError:
		// 401: the caller is not (or no longer) authenticated.
		return http.StatusUnauthorized
	case ForbiddenError:
		// 403: the caller is authenticated but may not touch this resource.
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case UnavailableError:
		return http.StatusServiceUnavailable
	case PayloadTooLargeError:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// Constructor functions for specific error types.
// `NewNotFoundError("message", err)` reads better than `NewAppError(NotFoundError, "message", err)`.

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues)
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError (for ownership/authorization issues)
func NewForbiddenError(message string, underlyingError error) *AppError {
	return NewAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError carrying per-field details.
func NewValidationError(message string, details []FieldError) *AppError {
	e := NewAppError(ValidationError, message, nil)
	e.Details = details
	return e
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(message string) *AppError {
	return NewAppError(RateLimitError, message, nil)
}

// NewUnavailableError creates a new UnavailableError
func NewUnavailableError(message string, underlyingError error) *AppError {
	return NewAppError(UnavailableError, message, underlyingError)
}

// NewPayloadTooLargeError creates a new PayloadTooLargeError
func NewPayloadTooLargeError(message string, underlyingError error) *AppError {
	return NewAppError(PayloadTooLargeError, message, underlyingError)
}

// ErrorResponse represents the error envelope returned to API clients.
type ErrorResponse struct {
	Message    string       `json:"message" example:"Topic not found"`
	Error      string       `json:"error" example:"Not Found"`
	StatusCode int          `json:"statusCode" example:"404"`
	Details    []FieldError `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Only the user-facing `Message` is included, never the underlying `Err`.
func (e *AppError) ToResponse() ErrorResponse {
	status := e.StatusCode()
	return ErrorResponse{
		Message:    e.Message,
		Error:      http.StatusText(status),
		StatusCode: status,
		Details:    e.Details,
	}
}

// FromError attempts to convert a generic error to an *AppError, following wrapped chains.
// It returns the *AppError and true if successful, otherwise nil and false.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Helper functions to check error types.

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return isType(err, NotFoundError)
}

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	return isType(err, AuthError)
}

// IsForbidden checks if an error is a ForbiddenError (ownership problem)
func IsForbidden(err error) bool {
	return isType(err, ForbiddenError)
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	return isType(err, ValidationError)
}

// IsBadRequest checks if an error is a BadRequest error
func IsBadRequest(err error) bool {
	return isType(err, BadRequestError)
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	return isType(err, ConflictError)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}
