package virtual

import (
	"github.com/hupe1980/lazycdf/mathtype"
)

// Tuple is an ordered collection of nodes.
type Tuple struct {
	items []Node
}

// NewTuple creates a tuple holding items.
func NewTuple(items ...Node) *Tuple {
	return &Tuple{items: append([]Node(nil), items...)}
}

func (*Tuple) node()      {}
func (*Tuple) Kind() Kind { return KindTuple }

// Add appends n.
func (t *Tuple) Add(n Node) { t.items = append(t.items, n) }

// Merge folds n into the tuple using m.
func (t *Tuple) Merge(n Node, m Merger) error { return m.Merge(t, n) }

// Len returns the number of items.
func (t *Tuple) Len() int { return len(t.items) }

// Item returns the i-th item.
func (t *Tuple) Item(i int) Node { return t.items[i] }

// Items returns a copy of the items.
func (t *Tuple) Items() []Node { return append([]Node(nil), t.items...) }

// Type implements Node.
func (t *Tuple) Type() (mathtype.Type, error) {
	c := make([]mathtype.Type, len(t.items))
	for i, n := range t.items {
		nt, err := n.Type()
		if err != nil {
			return nil, err
		}
		c[i] = nt
	}
	return mathtype.TupleType{Components: c}, nil
}

// Field maps a sampled domain to a range tuple. The domain covers the innermost
// dimensions of every range variable that remain after the caller's indicial context.
type Field struct {
	domain mathtype.Set
	rng    *Tuple
}

// NewField creates a field over domain. range items are appended in order.
func NewField(domain mathtype.Set, items ...Node) *Field {
	return &Field{domain: domain, rng: NewTuple(items...)}
}

func (*Field) node() {}

// Kind reports KindFlatField when every range component is a Real.
func (f *Field) Kind() Kind {
	if f.IsFlat() {
		return KindFlatField
	}
	return KindField
}

// IsFlat reports whether the range consists of Real leaves only.
func (f *Field) IsFlat() bool {
	if f.rng.Len() == 0 {
		return false
	}
	for _, n := range f.rng.items {
		if _, ok := n.(*Real); !ok {
			return false
		}
	}
	return true
}

// Domain returns the domain set.
func (f *Field) Domain() mathtype.Set { return f.domain }

// Range returns the range tuple.
func (f *Field) Range() *Tuple { return f.rng }

// Type implements Node.
func (f *Field) Type() (mathtype.Type, error) {
	ft, err := f.FunctionType()
	if err != nil {
		return nil, err
	}
	return ft, nil
}

// FunctionType resolves the function type of the field. A single range component
// is used directly, several real components form a RealTupleType.
func (f *Field) FunctionType() (mathtype.FunctionType, error) {
	ft := mathtype.FunctionType{Domain: f.domain.Type()}
	if f.rng.Len() == 1 {
		rt, err := f.rng.items[0].Type()
		if err != nil {
			return mathtype.FunctionType{}, err
		}
		ft.Range = rt
		return ft, nil
	}

	if f.IsFlat() {
		reals := make([]mathtype.RealType, f.rng.Len())
		for i, n := range f.rng.items {
			rt, err := n.(*Real).RealType()
			if err != nil {
				return mathtype.FunctionType{}, err
			}
			reals[i] = rt
		}
		ft.Range = mathtype.RealTupleType{Components: reals}
		return ft, nil
	}

	rt, err := f.rng.Type()
	if err != nil {
		return mathtype.FunctionType{}, err
	}
	ft.Range = rt
	return ft, nil
}
