package materialize

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lazycdf/virtual"
)

// Strategy pairs a merge policy with a factory.
type Strategy struct {
	Name    string
	Merger  virtual.Merger
	Factory Factory
}

func (s Strategy) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Merger.Name() + "/" + s.Factory.Name()
}

// Chain is an ordered list of strategies.
type Chain []Strategy

// DefaultChain degrades from fully resident data to lazy flat fields.
func DefaultChain() Chain {
	return Chain{
		{Name: "default/in-memory", Merger: virtual.Default, Factory: InMemory{}},
		{Name: "default/disk", Merger: virtual.Default, Factory: Disk{}},
		{Name: "flat/disk", Merger: virtual.Flat, Factory: Disk{}},
	}
}

// Validate checks that the chain is usable.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return errors.New("materialize: empty strategy chain")
	}
	for i, s := range c {
		if s.Merger == nil || s.Factory == nil {
			return fmt.Errorf("materialize: strategy %d (%q) needs a merger and a factory", i, s.Name)
		}
	}
	return nil
}

// Names returns the strategy names in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.String()
	}
	return out
}
