package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foxwhite25/maabridge/internal/bridge"
	"github.com/foxwhite25/maabridge/pkg/tasks"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRejected       = "REJECTED"
	ErrCodeDestroyed      = "DESTROYED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeErrorWithDetails(w, status, code, message, nil)
}

// writeErrorWithDetails writes an error response with details.
func writeErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeSuccess writes a success response.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeBridgeError maps a connection error to a status and code.
func writeBridgeError(w http.ResponseWriter, err error, details map[string]any) {
	switch {
	case errors.Is(err, bridge.ErrDestroyed):
		writeErrorWithDetails(w, http.StatusConflict, ErrCodeDestroyed, err.Error(), details)
	case errors.Is(err, tasks.ErrAppendRejected):
		writeErrorWithDetails(w, http.StatusUnprocessableEntity, ErrCodeRejected, err.Error(), details)
	default:
		writeErrorWithDetails(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error(), details)
	}
}
