package virtual

// Merger folds a node into an accumulating tuple.
type Merger interface {
	Name() string
	Merge(acc *Tuple, item Node) error
}

// DefaultConsolidator folds a field into an existing field of the tuple whose domain
// is structurally equal, merging the range components recursively.
type DefaultConsolidator struct{}

// FlatConsolidator behaves like DefaultConsolidator except that flat fields are always
// appended as separate items.
type FlatConsolidator struct{}

var (
	// Default is the stateless default merge policy.
	Default Merger = DefaultConsolidator{}
	// Flat is the stateless flat-preserving merge policy.
	Flat Merger = FlatConsolidator{}
)

func (DefaultConsolidator) Name() string { return "default" }

func (m DefaultConsolidator) Merge(acc *Tuple, item Node) error {
	return consolidate(m, acc, item, true)
}

func (FlatConsolidator) Name() string { return "flat" }

func (m FlatConsolidator) Merge(acc *Tuple, item Node) error {
	return consolidate(m, acc, item, false)
}

func consolidate(m Merger, acc *Tuple, item Node, foldFlat bool) error {
	if _, err := item.Type(); err != nil {
		return err
	}

	f, ok := item.(*Field)
	if !ok || (!foldFlat && f.IsFlat()) {
		acc.Add(item)
		return nil
	}

	for _, existing := range acc.items {
		target, ok := existing.(*Field)
		if !ok || !target.domain.Equal(f.domain) {
			continue
		}
		if !foldFlat && target.IsFlat() {
			continue
		}
		for _, r := range f.rng.items {
			if err := m.Merge(target.rng, r); err != nil {
				return err
			}
		}
		return nil
	}

	acc.Add(item)
	return nil
}
