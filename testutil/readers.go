package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/lazycdf/dataset"
)

// ErrInjected is the default error returned by FaultyReader.
var ErrInjected = errors.New("injected fault error")

// CountingReader counts ReadBlock calls per variable.
type CountingReader struct {
	dataset.Reader

	mu    sync.Mutex
	reads map[string]int
}

// NewCountingReader wraps r.
func NewCountingReader(r dataset.Reader) *CountingReader {
	return &CountingReader{Reader: r, reads: make(map[string]int)}
}

func (c *CountingReader) ReadBlock(ctx context.Context, variable string, origin, shape []int) (dataset.Block, error) {
	c.mu.Lock()
	c.reads[variable]++
	c.mu.Unlock()
	return c.Reader.ReadBlock(ctx, variable, origin, shape)
}

// Reads returns the number of ReadBlock calls for variable.
func (c *CountingReader) Reads(variable string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[variable]
}

// Total returns the number of ReadBlock calls across all variables.
func (c *CountingReader) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.reads {
		n += v
	}
	return n
}

// Reset clears all counters.
func (c *CountingReader) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = make(map[string]int)
}

// FaultyReader fails ReadBlock for selected variables.
type FaultyReader struct {
	dataset.Reader

	mu    sync.Mutex
	rules map[string]int // variable -> remaining failures, -1 for always
	Err   error
}

// NewFaultyReader wraps r without any rules.
func NewFaultyReader(r dataset.Reader) *FaultyReader {
	return &FaultyReader{Reader: r, rules: make(map[string]int), Err: ErrInjected}
}

// FailTimes makes the next n reads of variable fail. n < 0 fails forever.
func (f *FaultyReader) FailTimes(variable string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[variable] = n
}

func (f *FaultyReader) ReadBlock(ctx context.Context, variable string, origin, shape []int) (dataset.Block, error) {
	f.mu.Lock()
	n, ok := f.rules[variable]
	fail := ok && n != 0
	if ok && n > 0 {
		f.rules[variable] = n - 1
	}
	f.mu.Unlock()

	if fail {
		return dataset.Block{}, &dataset.IOError{Variable: variable, Err: f.Err}
	}
	return f.Reader.ReadBlock(ctx, variable, origin, shape)
}
