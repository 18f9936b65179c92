package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
)

const maxBodyBytes = 64 << 10

// requireAccountID returns the authenticated account or writes a 401
func requireAccountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetAccountID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return "", false
	}
	return id, true
}

// decodeJSON decodes and validates the request body into dst.
// It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}

	if validationErrs := val.Validate(dst); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return false
	}
	return true
}
