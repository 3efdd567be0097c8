package mines

import "errors"

var (
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	ErrMineOrigin  = errors.New("cannot flood-fill from a mine")
)

// ValidationError reports a malformed game parameter. Nothing is clamped:
// callers get the offending field back instead.
type ValidationError struct {
	Field  string
	Reason string
}

// [ValidationError] implements [error]
func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
