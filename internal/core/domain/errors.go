package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a missing or unknown session token, or a failed login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an operation on a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore marks any failure of the underlying storage engine.
	ErrStore = errors.New("store failure")
	// ErrEntropy marks an unusable random source. Requests hitting it must abort.
	ErrEntropy = errors.New("random source unavailable")

	ErrEmailNotFound    = fmt.Errorf("%w: email not found", ErrUnauthorized)
	ErrPasswordMismatch = fmt.Errorf("%w: password mismatch", ErrUnauthorized)

	// ErrPartialDelete is returned when the user row was removed but its credential was not.
	ErrPartialDelete = fmt.Errorf("%w: credential delete failed after user delete", ErrStore)
)
