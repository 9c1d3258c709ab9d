package subscription

import (
	"errors"
	"fmt"

	"github.com/Priya8975/melon-site/internal/domain"
)

var (
	// ErrValidation is returned when a required field is missing.
	ErrValidation = errors.New("incomplete subscription request")
	// ErrFormat is returned when the email is not local@domain.tld.
	ErrFormat = errors.New("invalid email format")
	// ErrConflict is returned when the email is already registered.
	ErrConflict = errors.New("email already subscribed")
	// ErrNotFound is returned when no record exists for the email.
	ErrNotFound = errors.New("subscription not found")
)

// ConflictError carries the record that blocked a duplicate subscription.
type ConflictError struct {
	Existing domain.Subscription
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Existing.Email)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
