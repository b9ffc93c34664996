// Package resource governs the memory budget and IO throughput of an import.
//
// All Controller methods are safe on a nil receiver, which means "unlimited".
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes bounds materialized data and cached sample blocks.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxBackgroundWorkers bounds concurrent background jobs such as
	// asynchronous spill writes. If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec bounds dataset read throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller accounts memory, background slots and dataset reads.
//
// Memory reservations never block: an import that does not fit must fail
// fast so the next strategy can be tried.
type Controller struct {
	limit int64
	used  atomic.Int64
	peak  atomic.Int64

	background *semaphore.Weighted
	reads      *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	workers := cfg.MaxBackgroundWorkers
	if workers <= 0 {
		workers = 1
	}
	c := &Controller{
		limit:      max(cfg.MemoryLimitBytes, 0),
		background: semaphore.NewWeighted(workers),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.reads = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// ReserveMemory is TryAcquireMemory reporting ErrMemoryLimitExceeded.
func (c *Controller) ReserveMemory(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// TryAcquireMemory reserves bytes if they fit in the remaining budget.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	for {
		used := c.used.Load()
		next := used + bytes
		if c.limit > 0 && next > c.limit {
			return false
		}
		if c.used.CompareAndSwap(used, next) {
			c.raisePeak(next)
			return true
		}
	}
}

func (c *Controller) raisePeak(v int64) {
	for {
		p := c.peak.Load()
		if v <= p || c.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// ReleaseMemory returns bytes to the budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	c.used.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// PeakMemoryUsage returns the highest reservation seen.
func (c *Controller) PeakMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// MemoryLimit returns the memory limit in bytes, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// AcquireBackground waits for a background slot.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.background.Acquire(ctx, 1)
}

// TryAcquireBackground takes a background slot if one is free.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.background.TryAcquire(1)
}

// ReleaseBackground frees a background slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.background.Release(1)
}

// AcquireIO waits until n bytes may be read from a dataset.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.reads == nil {
		return nil
	}
	// WaitN rejects requests larger than the burst.
	for burst := c.reads.Burst(); n > burst; n -= burst {
		if err := c.reads.WaitN(ctx, burst); err != nil {
			return err
		}
	}
	return c.reads.WaitN(ctx, n)
}
