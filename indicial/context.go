// Package indicial addresses sub-arrays of a variable by fixing its outermost indices.
package indicial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrContextMismatch is returned when a context cannot address a variable.
var ErrContextMismatch = errors.New("indicial: context does not match variable rank")

// MismatchError carries the offending context and rank.
type MismatchError struct {
	Context Context
	Rank    int
	Reason  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("indicial: context %s does not address rank %d variable: %s", e.Context, e.Rank, e.Reason)
}

// Unwrap allows errors.Is(err, ErrContextMismatch).
func (e *MismatchError) Unwrap() error { return ErrContextMismatch }

// Context is an ordered prefix of indices, outermost dimension first.
// Values are immutable; every mutator returns a new Context.
type Context struct {
	idx []int
}

// New creates a context from the given indices. The input is copied.
func New(indices ...int) Context {
	if len(indices) == 0 {
		return Context{}
	}
	return Context{idx: append([]int(nil), indices...)}
}

// Len returns the number of fixed dimensions.
func (c Context) Len() int { return len(c.idx) }

// Index returns the i-th fixed index.
func (c Context) Index(i int) int { return c.idx[i] }

// Indices returns a copy of the fixed indices.
func (c Context) Indices() []int { return append([]int(nil), c.idx...) }

// Append returns a new context with i added as the next inner index.
func (c Context) Append(i int) Context {
	out := make([]int, len(c.idx)+1)
	copy(out, c.idx)
	out[len(c.idx)] = i
	return Context{idx: out}
}

// Clone returns an independent copy.
func (c Context) Clone() Context { return New(c.idx...) }

// Equal reports whether both contexts fix the same indices.
func (c Context) Equal(o Context) bool {
	if len(c.idx) != len(o.idx) {
		return false
	}
	for i := range c.idx {
		if c.idx[i] != o.idx[i] {
			return false
		}
	}
	return true
}

func (c Context) String() string {
	parts := make([]string, len(c.idx))
	for i, v := range c.idx {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Validate checks the context against a variable rank.
func (c Context) Validate(rank int) error {
	if len(c.idx) > rank {
		return &MismatchError{Context: c, Rank: rank, Reason: "more indices than dimensions"}
	}
	for _, v := range c.idx {
		if v < 0 {
			return &MismatchError{Context: c, Rank: rank, Reason: "negative index"}
		}
	}
	return nil
}

// Block converts the context into the hyperslab it addresses: fixed dimensions get
// extent one at their index, free dimensions span their full length.
func (c Context) Block(lengths []int) (origin, shape []int, err error) {
	if err := c.Validate(len(lengths)); err != nil {
		return nil, nil, err
	}
	origin = make([]int, len(lengths))
	shape = make([]int, len(lengths))
	for i, l := range lengths {
		if i < len(c.idx) {
			if c.idx[i] >= l {
				return nil, nil, &MismatchError{Context: c, Rank: len(lengths), Reason: fmt.Sprintf("index %d out of range for dimension of length %d", c.idx[i], l)}
			}
			origin[i] = c.idx[i]
			shape[i] = 1
			continue
		}
		shape[i] = l
	}
	return origin, shape, nil
}
