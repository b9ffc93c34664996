package materialize

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrMemoryExhausted is returned when an attempt cannot obtain the memory it needs.
var ErrMemoryExhausted = errors.New("materialize: memory exhausted")

// MemoryError describes a denied reservation.
type MemoryError struct {
	Requested int64
	Used      int64
	Limit     int64
	Cause     error
}

func (e *MemoryError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("materialize: memory exhausted: requested %d bytes with %d of %d in use", e.Requested, e.Used, e.Limit)
	}
	return fmt.Sprintf("materialize: memory exhausted: %v", e.Cause)
}

// Unwrap matches ErrMemoryExhausted and the cause.
func (e *MemoryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrMemoryExhausted}
	}
	return []error{ErrMemoryExhausted, e.Cause}
}

// IsMemoryExhausted reports whether err signals memory exhaustion.
func IsMemoryExhausted(err error) bool {
	return errors.Is(err, ErrMemoryExhausted)
}

// recoverAllocation converts a runtime allocation panic into a MemoryError.
// Any other panic is re-raised.
func recoverAllocation(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if re, ok := r.(runtime.Error); ok {
		msg := re.Error()
		if strings.Contains(msg, "makeslice") || strings.Contains(msg, "out of memory") {
			*err = &MemoryError{Cause: re}
			return
		}
	}
	panic(r)
}
