// Package view walks a dataset and describes each data variable as a virtual node.
//
// Coordinate variables (rank one, numeric, named like their dimension) are not data.
// They sample their dimension: an arithmetic progression yields a linear axis, any
// other sequence a gridded axis. Dimensions without a coordinate variable get an
// integer axis. Domains list their axes innermost first.
//
// A variable whose outermost dimension is temporal, or is listed as an outer
// dimension, becomes a nested field (outer -> (inner -> value)) so that each outer
// sample can be materialized on its own.
package view

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/indicial"
	"github.com/hupe1980/lazycdf/infer"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/virtual"
)

// Option configures a View.
type Option func(*options)

type options struct {
	charToText bool
	outerDims  map[string]struct{}
	inferrer   infer.Inferrer
	logger     *slog.Logger
}

// WithCharToText imports character variables of rank two or less as text.
func WithCharToText(enabled bool) Option {
	return func(o *options) { o.charToText = enabled }
}

// WithOuterDimensions forces nesting over the named outermost dimensions.
func WithOuterDimensions(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.outerDims[n] = struct{}{}
		}
	}
}

// WithInferrer replaces the attribute-convention type inference.
func WithInferrer(inf infer.Inferrer) Option {
	return func(o *options) { o.inferrer = inf }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// View describes the data variables of one dataset.
type View struct {
	r    dataset.Reader
	opts options

	mu   sync.Mutex
	axes map[string]mathtype.Axis
}

// New creates a view over r.
func New(r dataset.Reader, opts ...Option) *View {
	o := options{
		outerDims: make(map[string]struct{}),
		inferrer:  infer.Conventions{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &View{r: r, opts: o, axes: make(map[string]mathtype.Axis)}
}

// Reader returns the underlying dataset.
func (v *View) Reader() dataset.Reader { return v.r }

// IsCoordinate reports whether variable samples its own dimension.
func (v *View) IsCoordinate(variable string) bool {
	dims := v.r.Dimensions(variable)
	return len(dims) == 1 && dims[0] == variable && v.r.StorageType(variable).Numeric()
}

// Leaves returns a fresh node for every data variable, in definition order.
func (v *View) Leaves(ctx context.Context) ([]virtual.Node, error) {
	var out []virtual.Node
	for _, name := range v.r.Variables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := v.leaf(ctx, name)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// Build merges fresh leaves into a new tuple with m.
func (v *View) Build(ctx context.Context, m virtual.Merger) (*virtual.Tuple, error) {
	leaves, err := v.Leaves(ctx)
	if err != nil {
		return nil, err
	}
	acc := virtual.NewTuple()
	for _, n := range leaves {
		if err := acc.Merge(n, m); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (v *View) leaf(ctx context.Context, name string) (virtual.Node, error) {
	src := virtual.Source{Reader: v.r, Variable: name}
	st := v.r.StorageType(name)
	dims := v.r.Dimensions(name)

	if st == dataset.Char {
		if !v.opts.charToText || len(dims) > 2 {
			v.debug("skipping character variable", name)
			return nil, nil
		}
		text := virtual.NewText(src, v.opts.inferrer)
		if len(dims) < 2 {
			return text, nil
		}
		axis, err := v.axis(ctx, dims[0])
		if err != nil {
			return nil, err
		}
		return virtual.NewField(mathtype.NewSet(axis), text), nil
	}

	if !st.Numeric() {
		v.debug("skipping variable of unknown type", name)
		return nil, nil
	}
	if v.IsCoordinate(name) {
		return nil, nil
	}

	value := virtual.NewReal(src, v.opts.inferrer)
	if len(dims) == 0 {
		return value, nil
	}

	if len(dims) > 1 && v.isOuter(dims[0]) {
		outer, err := v.domain(ctx, dims[:1])
		if err != nil {
			return nil, err
		}
		inner, err := v.domain(ctx, dims[1:])
		if err != nil {
			return nil, err
		}
		return virtual.NewField(outer, virtual.NewField(inner, value)), nil
	}

	domain, err := v.domain(ctx, dims)
	if err != nil {
		return nil, err
	}
	return virtual.NewField(domain, value), nil
}

func (v *View) isOuter(dim string) bool {
	if _, ok := v.opts.outerDims[dim]; ok {
		return true
	}
	return v.hasCoordinate(dim) && infer.IsTimeUnit(infer.Unit(v.r, dim))
}

func (v *View) hasCoordinate(dim string) bool {
	return slices.Contains(v.r.Variables(), dim) && v.IsCoordinate(dim)
}

// domain builds the set over dims (outermost first) with the innermost axis first.
func (v *View) domain(ctx context.Context, dims []string) (mathtype.Set, error) {
	axes := make([]mathtype.Axis, len(dims))
	for i, d := range dims {
		a, err := v.axis(ctx, d)
		if err != nil {
			return mathtype.Set{}, err
		}
		axes[len(dims)-1-i] = a
	}
	return mathtype.NewSet(axes...), nil
}

func (v *View) axis(ctx context.Context, dim string) (mathtype.Axis, error) {
	v.mu.Lock()
	a, ok := v.axes[dim]
	v.mu.Unlock()
	if ok {
		return a, nil
	}

	a, err := v.loadAxis(ctx, dim)
	if err != nil {
		return mathtype.Axis{}, err
	}

	v.mu.Lock()
	v.axes[dim] = a
	v.mu.Unlock()
	return a, nil
}

func (v *View) loadAxis(ctx context.Context, dim string) (mathtype.Axis, error) {
	rt := mathtype.RealType{Name: dim}
	if !v.hasCoordinate(dim) {
		return mathtype.IntegerAxis(rt, v.dimLength(dim)), nil
	}
	rt.Unit = infer.Unit(v.r, dim)
	b, err := indicial.Read(ctx, v.r, dim, indicial.New())
	if err != nil {
		return mathtype.Axis{}, err
	}
	return mathtype.NewAxis(rt, b.Float64s()), nil
}

func (v *View) dimLength(dim string) int {
	for _, name := range v.r.Variables() {
		for i, d := range v.r.Dimensions(name) {
			if d == dim {
				return v.r.Lengths(name)[i]
			}
		}
	}
	return 0
}

func (v *View) debug(msg, variable string) {
	if v.opts.logger != nil {
		v.opts.logger.Debug(msg, "variable", variable)
	}
}
