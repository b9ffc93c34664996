package virtual

import (
	"context"
	"sync"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/indicial"
	"github.com/hupe1980/lazycdf/infer"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/vet"
)

// Source binds a node to a dataset variable.
type Source struct {
	Reader   dataset.Reader
	Variable string
}

// Lengths returns the dimension lengths of the variable.
func (s Source) Lengths() []int { return s.Reader.Lengths(s.Variable) }

// Size returns the number of values c addresses.
func (s Source) Size(c indicial.Context) int { return indicial.Size(c, s.Lengths()) }

// Real is a numeric variable. Its type and vetter are resolved on first use.
type Real struct {
	src Source
	inf infer.Inferrer

	once   sync.Once
	typ    mathtype.RealType
	vetter *vet.Vetter
	err    error
}

// NewReal creates a numeric leaf.
func NewReal(src Source, inf infer.Inferrer) *Real {
	return &Real{src: src, inf: inf}
}

func (*Real) node()      {}
func (*Real) Kind() Kind { return KindReal }

// Source returns the bound variable.
func (r *Real) Source() Source { return r.src }

func (r *Real) resolve() {
	r.once.Do(func() {
		info, err := r.inf.Real(r.src.Reader, r.src.Variable)
		if err != nil {
			r.err = &resolveError{name: r.src.Variable, err: err}
			return
		}
		r.typ = info.Type
		r.vetter = vet.New(info.Vet)
	})
}

// Type implements Node.
func (r *Real) Type() (mathtype.Type, error) {
	rt, err := r.RealType()
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// RealType returns the resolved real type.
func (r *Real) RealType() (mathtype.RealType, error) {
	r.resolve()
	return r.typ, r.err
}

// Vetter returns the value vetter of the variable.
func (r *Real) Vetter() (*vet.Vetter, error) {
	r.resolve()
	return r.vetter, r.err
}

// Read returns the vetted values addressed by c.
func (r *Real) Read(ctx context.Context, c indicial.Context) ([]float64, error) {
	v, err := r.Vetter()
	if err != nil {
		return nil, err
	}
	b, err := indicial.Read(ctx, r.src.Reader, r.src.Variable, c)
	if err != nil {
		return nil, err
	}
	return v.Vet(b.Float64s()), nil
}

// Text is a character variable read as strings along its innermost dimension.
type Text struct {
	src Source
	inf infer.Inferrer
}

// NewText creates a text leaf.
func NewText(src Source, inf infer.Inferrer) *Text {
	return &Text{src: src, inf: inf}
}

func (*Text) node()      {}
func (*Text) Kind() Kind { return KindText }

// Source returns the bound variable.
func (t *Text) Source() Source { return t.src }

// Type implements Node.
func (t *Text) Type() (mathtype.Type, error) {
	tt, err := t.inf.Text(t.src.Reader, t.src.Variable)
	if err != nil {
		return nil, &resolveError{name: t.src.Variable, err: err}
	}
	return tt, nil
}

// ReadStrings returns one string per innermost row addressed by c.
func (t *Text) ReadStrings(ctx context.Context, c indicial.Context) ([]string, error) {
	b, err := indicial.Read(ctx, t.src.Reader, t.src.Variable, c)
	if err != nil {
		return nil, err
	}
	return b.Strings(), nil
}
