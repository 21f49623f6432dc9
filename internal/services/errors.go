package services

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/user-directory/internal/auth"
	"github.com/baharkarakas/user-directory/internal/validate"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSelfDeleteNotAllowed = errors.New("cannot delete your own account")
	ErrInternal             = errors.New("internal error")

	ErrConflict      = errors.New("conflict")
	ErrEmailInUse    = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrUsernameInUse = fmt.Errorf("%w: username already in use", ErrConflict)

	ErrInvalidOrExpiredToken = auth.ErrInvalidOrExpiredToken
)

// ValidationError carries every violated rule, not just the first.
type ValidationError struct {
	Violations validate.Errs
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Violations.Error()
}
