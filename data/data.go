// Package data holds the concrete objects produced by materializing a virtual tree.
//
// Scalars, tuples and nested fields are always held in memory. Flat fields, whose
// range is a set of real components over one domain, are the bulk of a dataset and
// come in two flavors: MemoryFlatField with resident arrays, and LazyFlatField which
// reads its components through a shared bounded cache on first access.
package data

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lazycdf/mathtype"
)

// Data is a materialized value.
type Data interface {
	Type() mathtype.Type
}

// Real is a materialized scalar. NaN marks a vetted-out value.
type Real struct {
	RealType mathtype.RealType
	Value    float64
}

func (r *Real) Type() mathtype.Type { return r.RealType }

// Missing reports whether the value was vetted out.
func (r *Real) Missing() bool { return math.IsNaN(r.Value) }

// Text is a materialized string.
type Text struct {
	TextType mathtype.TextType
	Value    string
}

func (t *Text) Type() mathtype.Type { return t.TextType }

// Tuple is a materialized record.
type Tuple struct {
	TupleType mathtype.TupleType
	Items     []Data
}

func (t *Tuple) Type() mathtype.Type { return t.TupleType }

// Len returns the number of items.
func (t *Tuple) Len() int { return len(t.Items) }

// Field is a materialized function whose samples are arbitrary data,
// for example one flat field per time step.
type Field struct {
	FuncType mathtype.FunctionType
	Domain   mathtype.Set
	Samples  []Data
}

func (f *Field) Type() mathtype.Type { return f.FuncType }

// Len returns the number of samples.
func (f *Field) Len() int { return len(f.Samples) }

// Sample returns the i-th sample.
func (f *Field) Sample(i int) (Data, error) {
	if i < 0 || i >= len(f.Samples) {
		return nil, fmt.Errorf("data: sample %d out of range [0,%d)", i, len(f.Samples))
	}
	return f.Samples[i], nil
}

// FlatField is a function from a domain to real components stored as one
// float64 array per component, in domain sample order.
// Returned slices are shared and must be treated as read-only.
type FlatField interface {
	Data
	FunctionType() mathtype.FunctionType
	DomainSet() mathtype.Set
	Len() int
	NumComponents() int
	Component(ctx context.Context, i int) ([]float64, error)
	Values(ctx context.Context) ([][]float64, error)
	// Lazy reports whether values are read on access.
	Lazy() bool
}

// Missing returns the sample indices of component i that were vetted out.
func Missing(ctx context.Context, f FlatField, i int) (*roaring.Bitmap, error) {
	vals, err := f.Component(ctx, i)
	if err != nil {
		return nil, err
	}
	bm := roaring.New()
	for j, v := range vals {
		if math.IsNaN(v) {
			bm.Add(uint32(j))
		}
	}
	return bm, nil
}

// MemoryFlatField is a FlatField with resident component arrays.
type MemoryFlatField struct {
	typ        mathtype.FunctionType
	domain     mathtype.Set
	components [][]float64
}

var _ FlatField = (*MemoryFlatField)(nil)

// NewMemoryFlatField creates a resident flat field. Every component must hold
// domain.Len() values.
func NewMemoryFlatField(typ mathtype.FunctionType, domain mathtype.Set, components [][]float64) (*MemoryFlatField, error) {
	for i, c := range components {
		if len(c) != domain.Len() {
			return nil, fmt.Errorf("data: component %d has %d values, domain has %d samples", i, len(c), domain.Len())
		}
	}
	return &MemoryFlatField{typ: typ, domain: domain, components: components}, nil
}

func (f *MemoryFlatField) Type() mathtype.Type                 { return f.typ }
func (f *MemoryFlatField) FunctionType() mathtype.FunctionType { return f.typ }
func (f *MemoryFlatField) DomainSet() mathtype.Set             { return f.domain }
func (f *MemoryFlatField) Len() int                            { return f.domain.Len() }
func (f *MemoryFlatField) NumComponents() int                  { return len(f.components) }
func (f *MemoryFlatField) Lazy() bool                          { return false }

func (f *MemoryFlatField) Component(_ context.Context, i int) ([]float64, error) {
	if i < 0 || i >= len(f.components) {
		return nil, fmt.Errorf("data: component %d out of range [0,%d)", i, len(f.components))
	}
	return f.components[i], nil
}

func (f *MemoryFlatField) Values(context.Context) ([][]float64, error) {
	return f.components, nil
}
