package data

import (
	"context"
	"fmt"

	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/mathtype"
)

// Loader reads and vets the values of one component.
type Loader func(ctx context.Context) ([]float64, error)

// LazyComponent binds a component to its cache key and loader.
type LazyComponent struct {
	Key  cache.Key
	Load Loader
}

// LazyFlatField is a FlatField whose components are read on access through a
// shared cache. Constructing one performs no I/O. Evicted components are re-read
// (or restored from the cache spill) with identical values.
type LazyFlatField struct {
	typ        mathtype.FunctionType
	domain     mathtype.Set
	components []LazyComponent
	cache      *cache.Samples
}

var _ FlatField = (*LazyFlatField)(nil)

// NewLazyFlatField creates a lazy flat field. A nil cache reads on every access.
func NewLazyFlatField(typ mathtype.FunctionType, domain mathtype.Set, c *cache.Samples, components ...LazyComponent) *LazyFlatField {
	return &LazyFlatField{
		typ:        typ,
		domain:     domain,
		components: append([]LazyComponent(nil), components...),
		cache:      c,
	}
}

func (f *LazyFlatField) Type() mathtype.Type                 { return f.typ }
func (f *LazyFlatField) FunctionType() mathtype.FunctionType { return f.typ }
func (f *LazyFlatField) DomainSet() mathtype.Set             { return f.domain }
func (f *LazyFlatField) Len() int                            { return f.domain.Len() }
func (f *LazyFlatField) NumComponents() int                  { return len(f.components) }
func (f *LazyFlatField) Lazy() bool                          { return true }

// Key returns the cache key of component i.
func (f *LazyFlatField) Key(i int) cache.Key { return f.components[i].Key }

func (f *LazyFlatField) Component(ctx context.Context, i int) ([]float64, error) {
	if i < 0 || i >= len(f.components) {
		return nil, fmt.Errorf("data: component %d out of range [0,%d)", i, len(f.components))
	}
	c := f.components[i]
	load := func(ctx context.Context) ([]float64, error) {
		v, err := c.Load(ctx)
		if err != nil {
			return nil, err
		}
		if len(v) != f.domain.Len() {
			return nil, fmt.Errorf("data: component %d loaded %d values, domain has %d samples", i, len(v), f.domain.Len())
		}
		return v, nil
	}
	if f.cache == nil {
		return load(ctx)
	}
	return f.cache.GetOrLoad(ctx, c.Key, load)
}

func (f *LazyFlatField) Values(ctx context.Context) ([][]float64, error) {
	out := make([][]float64, len(f.components))
	for i := range f.components {
		v, err := f.Component(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
