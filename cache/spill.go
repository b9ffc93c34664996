package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/lazycdf/internal/compress"
	"github.com/hupe1980/lazycdf/internal/fs"
	"github.com/hupe1980/lazycdf/internal/hash"
	"github.com/hupe1980/lazycdf/resource"
)

// SpillConfig holds configuration for the disk spill.
type SpillConfig struct {
	// Dir is the directory spill files are written to. It is created if missing.
	Dir string
	// MaxBytes bounds the total size of spill files. 0 means unbounded.
	MaxBytes int64
	// Compression defaults to lz4.
	Compression compress.Type
	// Controller limits concurrent background writes. Writes that find no free
	// slot are dropped.
	Controller *resource.Controller
	// FS defaults to the local file system.
	FS     fs.FileSystem
	Logger *slog.Logger
}

var (
	errSpillCorrupt     = errors.New("cache: corrupt spill file")
	errSpillKeyMismatch = errors.New("cache: spill file holds another key")
)

// spill file: [magic 4][crc32c of the rest uint32][key length uint32][key][frame]
var spillMagic = [4]byte{'L', 'C', 'S', 'P'}

const spillHeaderSize = 12

// DiskSpill keeps evicted sample blocks in compressed files.
type DiskSpill struct {
	cfg SpillConfig
	// id prefixes file names so spills can share a directory.
	id string

	mu    sync.Mutex
	items map[Key]*spillEntry
	// pending maps keys being written to whether they were invalidated meanwhile.
	pending map[Key]bool
	size    int64
	clock   uint64
	closed  bool

	wg sync.WaitGroup
}

type spillEntry struct {
	path string
	size int64
	used uint64
}

var _ Spill[[]float64] = (*DiskSpill)(nil)

// NewDiskSpill creates a disk spill in cfg.Dir.
func NewDiskSpill(cfg SpillConfig) (*DiskSpill, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache: spill directory required")
	}
	if cfg.FS == nil {
		cfg.FS = fs.Default
	}
	if cfg.Compression == compress.None {
		cfg.Compression = compress.LZ4
	}
	if err := cfg.FS.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create spill dir: %w", err)
	}
	return &DiskSpill{
		cfg:     cfg,
		id:      uuid.NewString(),
		items:   make(map[Key]*spillEntry),
		pending: make(map[Key]bool),
	}, nil
}

// Put writes v in the background. The value is dropped when no background slot
// is free or the write fails.
func (s *DiskSpill) Put(ctx context.Context, key Key, v []float64) {
	s.mu.Lock()
	_, exists := s.items[key]
	_, inFlight := s.pending[key]
	if s.closed || exists || inFlight {
		s.mu.Unlock()
		return
	}
	if !s.cfg.Controller.TryAcquireBackground() {
		s.mu.Unlock()
		return
	}
	s.pending[key] = false
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.cfg.Controller.ReleaseBackground()

		path, size, err := s.write(key, v)

		s.mu.Lock()
		defer s.mu.Unlock()
		invalidated := s.pending[key]
		delete(s.pending, key)
		if err != nil {
			s.logDebug("spill write failed", key, err)
			return
		}
		if s.closed || invalidated {
			_ = s.cfg.FS.Remove(path)
			return
		}
		s.clock++
		s.items[key] = &spillEntry{path: path, size: size, used: s.clock}
		s.size += size
		s.evictLocked()
	}()
}

func (s *DiskSpill) write(key Key, v []float64) (string, int64, error) {
	raw := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(x))
	}
	frame, err := compress.Encode(raw, s.cfg.Compression)
	if err != nil {
		return "", 0, err
	}
	id := key.String()
	buf := make([]byte, spillHeaderSize+len(id)+len(frame))
	copy(buf, spillMagic[:])
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(id)))
	copy(buf[spillHeaderSize:], id)
	copy(buf[spillHeaderSize+len(id):], frame)
	binary.LittleEndian.PutUint32(buf[4:], hash.CRC32C(buf[8:]))

	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("%s-%016x.spill", s.id, hash.Name64(id)))
	if err := fs.WriteFileAtomic(s.cfg.FS, path, buf); err != nil {
		return "", 0, err
	}
	return path, int64(len(buf)), nil
}

// Get restores a spilled value. Unreadable or corrupt files are dropped.
func (s *DiskSpill) Get(_ context.Context, key Key) ([]float64, bool) {
	s.mu.Lock()
	ent, ok := s.items[key]
	if ok {
		s.clock++
		ent.used = s.clock
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	v, err := s.read(ent.path, key)
	if err != nil {
		s.logDebug("spill read failed", key, err)
		s.mu.Lock()
		if cur, ok := s.items[key]; ok && cur == ent {
			s.removeLocked(key, ent)
		}
		s.mu.Unlock()
		return nil, false
	}
	return v, true
}

func (s *DiskSpill) read(path string, key Key) ([]float64, error) {
	buf, err := fs.ReadFile(s.cfg.FS, path)
	if err != nil {
		return nil, err
	}
	if len(buf) < spillHeaderSize || [4]byte(buf[:4]) != spillMagic {
		return nil, errSpillCorrupt
	}
	if hash.CRC32C(buf[8:]) != binary.LittleEndian.Uint32(buf[4:]) {
		return nil, errSpillCorrupt
	}
	n := int(binary.LittleEndian.Uint32(buf[8:]))
	if n > len(buf)-spillHeaderSize {
		return nil, errSpillCorrupt
	}
	if string(buf[spillHeaderSize:spillHeaderSize+n]) != key.String() {
		return nil, errSpillKeyMismatch
	}
	frame := buf[spillHeaderSize+n:]
	raw, err := compress.Decode(frame)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, errSpillCorrupt
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// Invalidate removes spilled entries matching the predicate. Matching writes
// still in flight are discarded when they complete.
func (s *DiskSpill) Invalidate(predicate func(Key) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.items {
		if predicate(k) {
			s.removeLocked(k, ent)
		}
	}
	for k := range s.pending {
		if predicate(k) {
			s.pending[k] = true
		}
	}
}

// Flush waits for background writes to finish.
func (s *DiskSpill) Flush() {
	s.wg.Wait()
}

// Len returns the number of spilled entries.
func (s *DiskSpill) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close waits for background writes and removes all spill files.
func (s *DiskSpill) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for k, ent := range s.items {
		if err := s.cfg.FS.Remove(ent.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
		delete(s.items, k)
	}
	s.size = 0
	return errors.Join(errs...)
}

func (s *DiskSpill) evictLocked() {
	for s.cfg.MaxBytes > 0 && s.size > s.cfg.MaxBytes && len(s.items) > 0 {
		var (
			oldestKey Key
			oldest    *spillEntry
		)
		for k, ent := range s.items {
			if oldest == nil || ent.used < oldest.used {
				oldestKey, oldest = k, ent
			}
		}
		s.removeLocked(oldestKey, oldest)
	}
}

func (s *DiskSpill) removeLocked(k Key, ent *spillEntry) {
	_ = s.cfg.FS.Remove(ent.path)
	delete(s.items, k)
	s.size -= ent.size
}

func (s *DiskSpill) logDebug(msg string, key Key, err error) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(msg, "key", key.String(), "error", err)
	}
}
