// Package response writes the JSON envelope shared by every API endpoint
package response

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorBody is the error part of a failed response
type ErrorBody struct {
	Code      apperrors.ErrorCode `json:"code"`
	Message   string              `json:"message"`
	Details   string              `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a successful envelope
func OK(w http.ResponseWriter, status int, data interface{}, message string) {
	JSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

// Error writes a failed envelope for err. Errors that are not AppErrors are
// reported as internal errors without their text.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")

	status := appErr.StatusCode()
	requestID := chimiddleware.GetReqID(r.Context())
	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
		} else {
			logger.Warn("Request rejected", fields...)
		}
	}

	JSON(w, status, APIResponse{
		Success: false,
		Error: &ErrorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: requestID,
		},
	})
}
