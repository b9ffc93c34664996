package virtual

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lazycdf/mathtype"
)

// ErrTypeResolution is returned when the type of a node cannot be determined.
var ErrTypeResolution = errors.New("virtual: type resolution failed")

// Kind discriminates node variants.
type Kind uint8

const (
	KindReal Kind = iota + 1
	KindText
	KindTuple
	KindField
	KindFlatField
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindTuple:
		return "tuple"
	case KindField:
		return "field"
	case KindFlatField:
		return "flatfield"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is a virtual data node. The set of implementations is closed:
// *Real, *Text, *Tuple and *Field.
type Node interface {
	Kind() Kind
	// Type resolves the structural type. No range values are read.
	Type() (mathtype.Type, error)
	node()
}

type resolveError struct {
	name string
	err  error
}

func (e *resolveError) Error() string {
	return fmt.Sprintf("virtual: cannot resolve type of %q: %v", e.name, e.err)
}

func (e *resolveError) Unwrap() []error { return []error{ErrTypeResolution, e.err} }
