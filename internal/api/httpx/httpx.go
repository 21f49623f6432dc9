package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baharkarakas/user-directory/internal/services"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
}

// order matters: the specific conflict sentinels come before ErrConflict
var errorMappings = []errorMapping{
	{services.ErrEmailInUse, http.StatusConflict, "email_in_use"},
	{services.ErrUsernameInUse, http.StatusConflict, "username_in_use"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrInvalidOrExpiredToken, http.StatusUnauthorized, "invalid_token"},
	{services.ErrSelfDeleteNotAllowed, http.StatusForbidden, "self_delete_not_allowed"},
}

// WriteServiceError maps a directory service error onto a status code.
// Unknown errors become a 500 without leaking their text.
func WriteServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", verr.Violations)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			WriteError(w, m.status, m.code, m.target.Error(), nil)
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}
