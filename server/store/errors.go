package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an operation on an id that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized reports a non-admin attempting an admin-only action.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInviteConsumed reports an invite token that was already claimed.
	ErrInviteConsumed = errors.New("invite already used")

	// ErrInviteExpired reports an invite token past its expiry.
	ErrInviteExpired = errors.New("invite expired")

	// ErrSessionExpired reports a session past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError reports a missing or out-of-range required field. The
// message is shown to the user inline and is not retryable without an input
// change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
