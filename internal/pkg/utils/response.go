package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
)

// RequestIDHeader carries the request ID on requests and responses
const RequestIDHeader = "X-Request-ID"

// SuccessResponse is the envelope of every successful API response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed API response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure. Details is an object for quota errors
// and a list of field errors for validation errors.
type ErrorDetail struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// WriteJSON writes data as JSON. Responses carry live usage counters, so
// they are never cached.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes data inside the success envelope
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// WriteError writes err inside the error envelope, tagged with the request
// ID already set on the response
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteJSON(w, err.StatusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			RequestID: w.Header().Get(RequestIDHeader),
		},
	})
}

// WriteErrorMessage writes an error envelope without details
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) error {
	return WriteError(w, errors.New(code, message, status))
}
