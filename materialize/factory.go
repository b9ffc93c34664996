package materialize

import (
	"context"
	"fmt"

	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/data"
	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/indicial"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/virtual"
)

// Factory materializes a virtual tree.
type Factory interface {
	Name() string
	Materialize(ctx context.Context, n virtual.Node, s *Session) (data.Data, error)
}

// InMemory reads every array eagerly, reserving its size from the session first.
type InMemory struct{}

// Disk materializes flat fields as lazy proxies over the session cache.
// Scalars, tuples and nested fields are built in memory.
type Disk struct{}

var (
	_ Factory = InMemory{}
	_ Factory = Disk{}
)

func (InMemory) Name() string { return "in-memory" }

func (InMemory) Materialize(ctx context.Context, n virtual.Node, s *Session) (d data.Data, err error) {
	defer recoverAllocation(&err)
	return build(ctx, n, indicial.New(), s, residentFlat)
}

func (Disk) Name() string { return "disk" }

func (Disk) Materialize(ctx context.Context, n virtual.Node, s *Session) (d data.Data, err error) {
	defer recoverAllocation(&err)
	return build(ctx, n, indicial.New(), s, lazyFlat)
}

type flatBuilder func(ctx context.Context, f *virtual.Field, c indicial.Context, s *Session) (data.Data, error)

// Per-sample bookkeeping charged for nested fields and tuples.
const sampleOverhead = 16

func build(ctx context.Context, n virtual.Node, c indicial.Context, s *Session, flat flatBuilder) (data.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch v := n.(type) {
	case *virtual.Real:
		rt, err := v.RealType()
		if err != nil {
			return nil, err
		}
		if err := s.Reserve(8); err != nil {
			return nil, err
		}
		vals, err := v.Read(ctx, c)
		if err != nil {
			return nil, err
		}
		if len(vals) != 1 {
			return nil, &dataset.FormatError{Variable: v.Source().Variable, Msg: fmt.Sprintf("scalar read at %s returned %d values", c, len(vals))}
		}
		return &data.Real{RealType: rt, Value: vals[0]}, nil

	case *virtual.Text:
		t, err := v.Type()
		if err != nil {
			return nil, err
		}
		if err := s.Reserve(int64(v.Source().Size(c))); err != nil {
			return nil, err
		}
		strs, err := v.ReadStrings(ctx, c)
		if err != nil {
			return nil, err
		}
		if len(strs) != 1 {
			return nil, &dataset.FormatError{Variable: v.Source().Variable, Msg: fmt.Sprintf("text read at %s returned %d strings", c, len(strs))}
		}
		return &data.Text{TextType: t.(mathtype.TextType), Value: strs[0]}, nil

	case *virtual.Tuple:
		return buildTuple(ctx, v, c, s, flat)

	case *virtual.Field:
		if v.IsFlat() {
			return flat(ctx, v, c, s)
		}
		return buildField(ctx, v, c, s, flat)

	default:
		return nil, fmt.Errorf("materialize: unsupported node %T", n)
	}
}

func buildTuple(ctx context.Context, t *virtual.Tuple, c indicial.Context, s *Session, flat flatBuilder) (data.Data, error) {
	typ, err := t.Type()
	if err != nil {
		return nil, err
	}
	if err := s.Reserve(int64(t.Len()) * sampleOverhead); err != nil {
		return nil, err
	}
	items := make([]data.Data, t.Len())
	for i := range items {
		d, err := build(ctx, t.Item(i), c, s, flat)
		if err != nil {
			return nil, err
		}
		items[i] = d
	}
	return &data.Tuple{TupleType: typ.(mathtype.TupleType), Items: items}, nil
}

// buildField materializes a field sample by sample, addressing each sample by
// appending its domain indices (outermost first) to the context.
func buildField(ctx context.Context, f *virtual.Field, c indicial.Context, s *Session, flat flatBuilder) (data.Data, error) {
	ft, err := f.FunctionType()
	if err != nil {
		return nil, err
	}
	domain := f.Domain()
	n := domain.Len()
	if err := s.Reserve(int64(n) * sampleOverhead); err != nil {
		return nil, err
	}

	var rng virtual.Node = f.Range()
	if f.Range().Len() == 1 {
		rng = f.Range().Item(0)
	}

	lengths := domain.Lengths()
	samples := make([]data.Data, n)
	for i := range samples {
		sc := c
		for _, idx := range sampleIndices(lengths, i) {
			sc = sc.Append(idx)
		}
		d, err := build(ctx, rng, sc, s, flat)
		if err != nil {
			return nil, err
		}
		samples[i] = d
	}
	return &data.Field{FuncType: ft, Domain: domain, Samples: samples}, nil
}

// sampleIndices converts a flat sample index into per-axis indices, outermost first.
// lengths are listed innermost first.
func sampleIndices(lengths []int, i int) []int {
	out := make([]int, len(lengths))
	for k, l := range lengths {
		out[len(lengths)-1-k] = i % l
		i /= l
	}
	return out
}

func residentFlat(ctx context.Context, f *virtual.Field, c indicial.Context, s *Session) (data.Data, error) {
	ft, err := f.FunctionType()
	if err != nil {
		return nil, err
	}
	comps := make([][]float64, f.Range().Len())
	for i := range comps {
		r := f.Range().Item(i).(*virtual.Real)
		if _, err := r.Vetter(); err != nil {
			return nil, err
		}
		if err := s.Reserve(int64(r.Source().Size(c)) * 8); err != nil {
			return nil, err
		}
		vals, err := r.Read(ctx, c)
		if err != nil {
			return nil, err
		}
		comps[i] = vals
	}
	ff, err := data.NewMemoryFlatField(ft, f.Domain(), comps)
	if err != nil {
		return nil, &dataset.FormatError{Msg: err.Error()}
	}
	return ff, nil
}

func lazyFlat(_ context.Context, f *virtual.Field, c indicial.Context, s *Session) (data.Data, error) {
	ft, err := f.FunctionType()
	if err != nil {
		return nil, err
	}
	if err := s.Reserve(int64(f.Range().Len()) * sampleOverhead); err != nil {
		return nil, err
	}

	bound := c.Clone()
	comps := make([]data.LazyComponent, f.Range().Len())
	for i := range comps {
		r := f.Range().Item(i).(*virtual.Real)
		if _, err := r.Vetter(); err != nil {
			return nil, err
		}
		src := r.Source()
		origin, shape, err := bound.Block(src.Lengths())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Variable, err)
		}
		comps[i] = data.LazyComponent{
			Key: cache.SampleKey(s.Source(src.Reader.Name()), src.Variable, origin, shape),
			Load: func(ctx context.Context) ([]float64, error) {
				return r.Read(ctx, bound)
			},
		}
	}
	return data.NewLazyFlatField(ft, f.Domain(), s.Cache(), comps...), nil
}
