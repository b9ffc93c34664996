package materialize

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/resource"
)

var sessionSeq atomic.Uint64

// Session carries the services of one materialization attempt.
type Session struct {
	id     uint64
	rc     *resource.Controller
	cache  *cache.Samples
	logger *slog.Logger

	mu       sync.Mutex
	reserved int64
}

// NewSession creates a session. rc may be nil for an unlimited budget, c may
// be nil to read lazy data on every access.
func NewSession(rc *resource.Controller, c *cache.Samples, logger *slog.Logger) *Session {
	return &Session{id: sessionSeq.Add(1), rc: rc, cache: c, logger: logger}
}

// Source scopes a dataset name to this session. Cache keys built from it
// never collide with another session's, even for datasets of the same name.
func (s *Session) Source(dataset string) string {
	return dataset + "#" + strconv.FormatUint(s.id, 10)
}

// Cache returns the shared sample cache.
func (s *Session) Cache() *cache.Samples { return s.cache }

// Controller returns the resource controller.
func (s *Session) Controller() *resource.Controller { return s.rc }

// Reserve reserves bytes for materialized data.
func (s *Session) Reserve(bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	if err := s.rc.ReserveMemory(bytes); err != nil {
		if s.logger != nil {
			s.logger.Debug("memory reservation denied",
				"requested", bytes,
				"used", s.rc.MemoryUsage(),
				"limit", s.rc.MemoryLimit(),
			)
		}
		return &MemoryError{Requested: bytes, Used: s.rc.MemoryUsage(), Limit: s.rc.MemoryLimit(), Cause: err}
	}
	s.mu.Lock()
	s.reserved += bytes
	s.mu.Unlock()
	return nil
}

// Reserved returns the bytes currently reserved by the session.
func (s *Session) Reserved() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserved
}

// Release returns every reservation to the controller.
func (s *Session) Release() {
	s.mu.Lock()
	n := s.reserved
	s.reserved = 0
	s.mu.Unlock()
	s.rc.ReleaseMemory(n)
}
