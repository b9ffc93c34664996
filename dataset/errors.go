package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrBadFormat is returned when the store contents are malformed or a read
	// does not return what was asked for.
	ErrBadFormat = errors.New("dataset: bad format")

	// ErrNotFound is returned for unknown variables.
	ErrNotFound = errors.New("dataset: variable not found")

	// ErrIO is returned when the underlying byte source fails.
	ErrIO = errors.New("dataset: io failure")
)

// FormatError describes malformed content.
type FormatError struct {
	Variable string
	Msg      string
}

func (e *FormatError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("dataset: bad format: %s", e.Msg)
	}
	return fmt.Sprintf("dataset: bad format in %q: %s", e.Variable, e.Msg)
}

// Unwrap allows errors.Is(err, ErrBadFormat).
func (e *FormatError) Unwrap() error { return ErrBadFormat }

// IOError wraps a failure of the byte source underneath a dataset.
type IOError struct {
	Variable string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("dataset: io failure reading %q: %v", e.Variable, e.Err)
}

// Unwrap returns the cause.
func (e *IOError) Unwrap() error { return e.Err }

// Is matches ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
