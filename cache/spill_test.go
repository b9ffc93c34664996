package cache

import (
	"context"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/hupe1980/lazycdf/internal/compress"
	"github.com/hupe1980/lazycdf/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSpill_RoundTrip(t *testing.T) {
	for _, typ := range []compress.Type{compress.LZ4, compress.ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			s, err := NewDiskSpill(SpillConfig{Dir: t.TempDir(), Compression: typ})
			require.NoError(t, err)
			defer s.Close()

			key := SampleKey("ds", "temp", []int{0}, []int{4})
			in := []float64{1.5, math.NaN(), -999, 1e300}
			s.Put(context.Background(), key, in)
			s.Flush()
			require.Equal(t, 1, s.Len())

			out, ok := s.Get(context.Background(), key)
			require.True(t, ok)
			require.Len(t, out, 4)
			assert.Equal(t, 1.5, out[0])
			assert.True(t, math.IsNaN(out[1]))
			assert.Equal(t, -999.0, out[2])
			assert.Equal(t, 1e300, out[3])
		})
	}
}

func TestDiskSpill_CorruptFileIsDropped(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskSpill(SpillConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	key := SampleKey("ds", "temp", nil, nil)
	s.Put(context.Background(), key, []float64{1, 2, 3})
	s.Flush()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := dir + "/" + entries[0].Name()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, ok := s.Get(context.Background(), key)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestDiskSpill_FailedWriteIsDropped(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".spill", fs.Fault{Ops: fs.OpWrite})

	s, err := NewDiskSpill(SpillConfig{Dir: t.TempDir(), FS: ffs})
	require.NoError(t, err)
	defer s.Close()

	key := SampleKey("ds", "temp", nil, nil)
	s.Put(context.Background(), key, []float64{1})
	s.Flush()

	_, ok := s.Get(context.Background(), key)
	assert.False(t, ok)
}

func TestDiskSpill_MaxBytes(t *testing.T) {
	s, err := NewDiskSpill(SpillConfig{Dir: t.TempDir(), MaxBytes: 1, Compression: compress.ZSTD})
	require.NoError(t, err)

	s.Put(context.Background(), SampleKey("ds", "a", nil, nil), []float64{1})
	s.Flush()
	assert.Equal(t, 0, s.Len(), "entries larger than the budget are evicted")
	require.NoError(t, s.Close())
}

func TestLRU_EvictionSpillsAndRestores(t *testing.T) {
	s, err := NewDiskSpill(SpillConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	c := NewSamples(1, nil, s)
	ctx := context.Background()
	defer c.Close()

	k1 := SampleKey("ds", "temp", []int{0}, []int{2})
	k2 := SampleKey("ds", "temp", []int{1}, []int{2})

	loads := 0
	load := func(v []float64) func(context.Context) ([]float64, error) {
		return func(context.Context) ([]float64, error) {
			loads++
			return v, nil
		}
	}

	_, err = c.GetOrLoad(ctx, k1, load([]float64{1, 2}))
	require.NoError(t, err)
	_, err = c.GetOrLoad(ctx, k2, load([]float64{3, 4})) // evicts k1 into the spill
	require.NoError(t, err)
	s.Flush()

	v, err := c.GetOrLoad(ctx, k1, load([]float64{9, 9}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v)
	assert.Equal(t, 2, loads)
	assert.Equal(t, int64(1), c.Stats().SpillHits)
}

// gatedFS holds spill writes until the gate is closed.
type gatedFS struct {
	fs.LocalFS
	gate chan struct{}
}

func (g gatedFS) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	if flag&os.O_CREATE != 0 {
		<-g.gate
	}
	return g.LocalFS.OpenFile(name, flag, perm)
}

func TestDiskSpill_InvalidateDiscardsPendingWrite(t *testing.T) {
	dir := t.TempDir()
	gfs := gatedFS{gate: make(chan struct{})}
	s, err := NewDiskSpill(SpillConfig{Dir: dir, FS: gfs})
	require.NoError(t, err)
	defer s.Close()

	key := SampleKey("ds", "temp", nil, nil)
	s.Put(t.Context(), key, []float64{1, 2})
	s.Invalidate(func(k Key) bool { return k.Name == "temp" })
	close(gfs.gate)
	s.Flush()

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get(t.Context(), key)
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskSpill_SharedDirectory(t *testing.T) {
	dir := t.TempDir()
	a, err := NewDiskSpill(SpillConfig{Dir: dir})
	require.NoError(t, err)
	defer a.Close()
	b, err := NewDiskSpill(SpillConfig{Dir: dir})
	require.NoError(t, err)
	defer b.Close()

	key := SampleKey("obs.nc", "temp", []int{0}, []int{2})
	a.Put(t.Context(), key, []float64{1, 2})
	b.Put(t.Context(), key, []float64{7, 8})
	a.Flush()
	b.Flush()

	va, ok := a.Get(t.Context(), key)
	require.True(t, ok)
	vb, ok := b.Get(t.Context(), key)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, va)
	assert.Equal(t, []float64{7, 8}, vb)
}

func TestDiskSpill_ReadChecksKey(t *testing.T) {
	s, err := NewDiskSpill(SpillConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	key := SampleKey("ds", "temp", nil, nil)
	path, _, err := s.write(key, []float64{1})
	require.NoError(t, err)

	v, err := s.read(path, key)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, v)

	_, err = s.read(path, SampleKey("ds", "humidity", nil, nil))
	assert.ErrorIs(t, err, errSpillKeyMismatch)
	assert.True(t, strings.HasSuffix(path, ".spill"))
}
