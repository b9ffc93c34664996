package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryVariable describes a variable of an in-memory dataset.
type MemoryVariable struct {
	Name       string
	Type       StorageType
	Dimensions []string
	Attributes map[string]Attribute

	// Values holds numeric data in row-major order.
	Values []float64
	// Text holds character data in row-major order.
	Text []byte
}

// Memory is an in-memory Reader. It is safe for concurrent reads once built.
type Memory struct {
	name string

	mu      sync.RWMutex
	dims    map[string]int
	order   []string
	vars    map[string]*MemoryVariable
	globals map[string]Attribute
}

var _ Reader = (*Memory)(nil)

// NewMemory creates an empty in-memory dataset.
func NewMemory(name string) *Memory {
	return &Memory{
		name:    name,
		dims:    make(map[string]int),
		vars:    make(map[string]*MemoryVariable),
		globals: make(map[string]Attribute),
	}
}

// AddDimension defines a named dimension.
func (m *Memory) AddDimension(name string, length int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dims[name] = length
	return m
}

// SetGlobal sets a global attribute.
func (m *Memory) SetGlobal(name string, a Attribute) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globals[name] = a
	return m
}

// AddVariable adds a variable. The data length must match the dimension lengths.
func (m *Memory) AddVariable(v MemoryVariable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vars[v.Name]; ok {
		return fmt.Errorf("dataset: duplicate variable %q", v.Name)
	}
	n := 1
	for _, d := range v.Dimensions {
		l, ok := m.dims[d]
		if !ok {
			return fmt.Errorf("dataset: variable %q uses undefined dimension %q", v.Name, d)
		}
		n *= l
	}
	got := len(v.Values)
	if v.Type == Char {
		got = len(v.Text)
	}
	if got != n {
		return &FormatError{Variable: v.Name, Msg: fmt.Sprintf("expected %d values, got %d", n, got)}
	}
	if v.Attributes == nil {
		v.Attributes = make(map[string]Attribute)
	}
	cp := v
	m.vars[v.Name] = &cp
	m.order = append(m.order, v.Name)
	return nil
}

// MustAddVariable is AddVariable for fixtures. It panics on error.
func (m *Memory) MustAddVariable(v MemoryVariable) *Memory {
	if err := m.AddVariable(v); err != nil {
		panic(err)
	}
	return m
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Variables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

func (m *Memory) Dimensions(variable string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[variable]
	if !ok {
		return nil
	}
	return append([]string(nil), v.Dimensions...)
}

func (m *Memory) Rank(variable string) int {
	return len(m.Dimensions(variable))
}

func (m *Memory) Lengths(variable string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[variable]
	if !ok {
		return nil
	}
	out := make([]int, len(v.Dimensions))
	for i, d := range v.Dimensions {
		out[i] = m.dims[d]
	}
	return out
}

func (m *Memory) StorageType(variable string) StorageType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vars[variable]; ok {
		return v.Type
	}
	return 0
}

func (m *Memory) Attribute(variable, name string) (Attribute, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if variable == "" {
		a, ok := m.globals[name]
		return a, ok
	}
	v, ok := m.vars[variable]
	if !ok {
		return Attribute{}, false
	}
	a, ok := v.Attributes[name]
	return a, ok
}

// AttributeNames returns the sorted attribute names of a variable, or of the
// global attributes for an empty name.
func (m *Memory) AttributeNames(variable string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attrs := m.globals
	if variable != "" {
		v, ok := m.vars[variable]
		if !ok {
			return nil
		}
		attrs = v.Attributes
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Memory) ReadBlock(ctx context.Context, variable string, origin, shape []int) (Block, error) {
	if err := ctx.Err(); err != nil {
		return Block{}, err
	}
	lengths := m.Lengths(variable)

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[variable]
	if !ok {
		return Block{}, fmt.Errorf("%w: %q", ErrNotFound, variable)
	}
	if err := CheckSlab(lengths, origin, shape); err != nil {
		return Block{}, err
	}

	n := Volume(shape)
	if v.Type == Char {
		out := make([]byte, n)
		err := Runs(lengths, origin, shape, func(src, dst, k int) error {
			copy(out[dst:dst+k], v.Text[src:src+k])
			return nil
		})
		return NewTextBlock(append([]int(nil), shape...), out), err
	}
	out := make([]float64, n)
	err := Runs(lengths, origin, shape, func(src, dst, k int) error {
		copy(out[dst:dst+k], v.Values[src:src+k])
		return nil
	})
	return NewBlock(v.Type, append([]int(nil), shape...), out), err
}
