// Package response centralizes how handlers write JSON bodies.
// Successful responses use the `{message, data}` envelope and failures use
// apperror.ErrorResponse, so every handler in the API answers in the same shape.
package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/logger"
)

// Envelope is the success body shared by every endpoint that returns data.
type Envelope struct {
	Message string      `json:"message" example:"Topic found"`
	Data    interface{} `json:"data,omitempty"`
}

// MessageOnly is the success body for endpoints that have nothing but a message to report.
type MessageOnly struct {
	Message string `json:"message" example:"Topic \"Stoicism\" deleted successfully"`
}

// JSON serializes data to JSON and writes it with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to tell the client.
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// Data writes the `{message, data}` envelope.
func Data(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, Envelope{Message: message, Data: data})
}

// Message writes a `{message}` body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageOnly{Message: message})
}

// Error converts err into the standard error envelope. Errors that are not
// already an *apperror.AppError become a 500 with a generic message, and every
// 5xx is logged with the request-scoped logger.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(appErr),
		)
	}

	JSON(w, status, appErr.ToResponse())
}
