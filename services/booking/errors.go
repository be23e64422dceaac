package booking

import (
	"errors"
	"fmt"

	bookingRepo "karigar/database/repository/booking"
)

// ErrNotFound is returned when the referenced booking or provider does not
// exist or is not visible to the caller.
var ErrNotFound = bookingRepo.ErrNotFound

// ErrConflict is returned when an optimistic-concurrency check failed during
// a transition. Callers should re-fetch and retry once.
var ErrConflict = bookingRepo.ErrStatusConflict

// ErrNoMatchingProviders is returned when auto-matching found zero viable
// providers for a booking request.
var ErrNoMatchingProviders = errors.New("no matching providers found")

// GuardError rejects a state transition attempted against a booking that does
// not satisfy the transition's precondition. It is never retried
// automatically; the caller must re-fetch and re-validate.
type GuardError struct {
	Op     string
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Reason)
}

func newGuardError(op, format string, args ...any) error {
	return &GuardError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsGuardViolation reports whether err is a rejected transition.
func IsGuardViolation(err error) bool {
	var guardErr *GuardError
	return errors.As(err, &guardErr)
}
