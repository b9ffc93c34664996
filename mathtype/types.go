package mathtype

import (
	"strings"
)

// Type is implemented by every structural type.
type Type interface {
	String() string
	Equal(o Type) bool
	isType()
}

// RealType is a named numeric quantity with an optional unit.
type RealType struct {
	Name string
	Unit string
}

func (RealType) isType() {}

func (t RealType) String() string { return t.Name }

// Equal compares name and unit.
func (t RealType) Equal(o Type) bool {
	r, ok := o.(RealType)
	return ok && r == t
}

// TextType is a named string quantity.
type TextType struct {
	Name string
}

func (TextType) isType() {}

func (t TextType) String() string { return t.Name + "(Text)" }

func (t TextType) Equal(o Type) bool {
	r, ok := o.(TextType)
	return ok && r == t
}

// RealTupleType is a vector of real quantities. Domains are RealTupleTypes.
type RealTupleType struct {
	Components []RealType
}

func (RealTupleType) isType() {}

// Len returns the number of components.
func (t RealTupleType) Len() int { return len(t.Components) }

func (t RealTupleType) String() string {
	if len(t.Components) == 1 {
		return t.Components[0].String()
	}
	parts := make([]string, len(t.Components))
	for i, c := range t.Components {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t RealTupleType) Equal(o Type) bool {
	r, ok := o.(RealTupleType)
	if !ok || len(r.Components) != len(t.Components) {
		return false
	}
	for i := range t.Components {
		if t.Components[i] != r.Components[i] {
			return false
		}
	}
	return true
}

// TupleType is a heterogeneous record.
type TupleType struct {
	Components []Type
}

func (TupleType) isType() {}

// Len returns the number of components.
func (t TupleType) Len() int { return len(t.Components) }

func (t TupleType) String() string {
	parts := make([]string, len(t.Components))
	for i, c := range t.Components {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TupleType) Equal(o Type) bool {
	r, ok := o.(TupleType)
	if !ok || len(r.Components) != len(t.Components) {
		return false
	}
	for i := range t.Components {
		if !t.Components[i].Equal(r.Components[i]) {
			return false
		}
	}
	return true
}

// FunctionType maps a domain to a range.
type FunctionType struct {
	Domain RealTupleType
	Range  Type
}

func (FunctionType) isType() {}

func (t FunctionType) String() string {
	return "(" + t.Domain.String() + " -> " + t.Range.String() + ")"
}

func (t FunctionType) Equal(o Type) bool {
	r, ok := o.(FunctionType)
	return ok && t.Domain.Equal(r.Domain) && t.Range.Equal(r.Range)
}

// Flat reports whether every range component is real. Flat functions can be
// stored as one float64 array per component.
func (t FunctionType) Flat() bool {
	switch r := t.Range.(type) {
	case RealType, RealTupleType:
		return true
	case TupleType:
		for _, c := range r.Components {
			if _, ok := c.(RealType); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
