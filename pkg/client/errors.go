package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes returned by the API
const (
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
)

// FieldError is one rejected request field of a VALIDATION_ERROR
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// APIError represents an error returned by the API
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	// Details is an object for quota errors and a list of field errors
	// for validation errors.
	Details json.RawMessage `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("API error: %s (status: %d)", e.Message, e.StatusCode)
}

// IsNotFound returns true if the error is a 404 not found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsQuotaExceeded returns true when the AI allowance is used up
func (e *APIError) IsQuotaExceeded() bool {
	return e.Code == CodeQuotaExceeded
}

// IsServerError returns true if the error is a 5xx server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// RequiredTier returns the plan suggested by a quota error
func (e *APIError) RequiredTier() string {
	var details struct {
		RequiredTier string `json:"requiredTier"`
	}
	if len(e.Details) == 0 || e.Details[0] != '{' {
		return ""
	}
	if err := json.Unmarshal(e.Details, &details); err != nil {
		return ""
	}
	return details.RequiredTier
}

// FieldErrors returns the rejected fields of a validation error
func (e *APIError) FieldErrors() []FieldError {
	if e.Code != CodeValidation || len(e.Details) == 0 || e.Details[0] != '[' {
		return nil
	}
	var fields []FieldError
	if err := json.Unmarshal(e.Details, &fields); err != nil {
		return nil
	}
	return fields
}

// FieldSummary joins field errors as "field: message" pairs
func (e *APIError) FieldSummary() string {
	fields := e.FieldErrors()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
