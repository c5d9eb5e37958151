package storage

import "errors"

var (
	// ErrNotFound is returned when no row matched the id or key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned for UNIQUE and CHECK constraint violations.
	ErrConflict = errors.New("data conflict or validation error")

	// ErrMissingField is returned for NOT NULL constraint violations.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidReference is returned for FOREIGN KEY constraint violations.
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrAlreadyApproved is returned when approving a user that is already approved.
	ErrAlreadyApproved = errors.New("user is already approved")

	// ErrLastAdmin is returned when an update would remove the only administrator.
	ErrLastAdmin = errors.New("cannot demote the only admin")
)

// ConstraintError carries the engine's message for a classified constraint violation.
// Unwrap returns one of the sentinel errors above.
type ConstraintError struct {
	Kind   error
	Detail string
}

func (e *ConstraintError) Error() string {
	return e.Kind.Error() + ": " + e.Detail
}

func (e *ConstraintError) Unwrap() error {
	return e.Kind
}
