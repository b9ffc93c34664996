package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/lazycdf/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_BytesAndController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewBlocks(50, rc) // Cache limit 50, Global limit 100
	ctx := context.Background()

	k1 := BlobKey("f", 1)
	k2 := BlobKey("f", 2)
	k3 := BlobKey("f", 3)

	c.Set(ctx, k1, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set(ctx, k2, make([]byte, 20))
	assert.Equal(t, int64(40), rc.MemoryUsage())

	// 60 > 50 evicts k1
	c.Set(ctx, k3, make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())
	assert.Equal(t, int64(40), rc.MemoryUsage())

	_, ok := c.Get(k1)
	assert.False(t, ok, "k1 should be evicted")
	_, ok = c.Get(k2)
	assert.True(t, ok)
	_, ok = c.Get(k3)
	assert.True(t, ok)
}

func TestLRU_GlobalLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 30})
	c := NewBlocks(100, rc)
	ctx := context.Background()

	c.Set(ctx, BlobKey("f", 1), make([]byte, 20))
	c.Set(ctx, BlobKey("f", 2), make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	_, ok := c.Get(BlobKey("f", 2))
	assert.False(t, ok, "denied reservations are not cached")
}

func TestLRU_EntryCapacity(t *testing.T) {
	c := NewSamples(2, nil, nil)
	ctx := context.Background()

	for i := range 3 {
		c.Set(ctx, SampleKey("ds", "v", []int{i}, []int{1}), []float64{float64(i)})
	}
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains(SampleKey("ds", "v", []int{0}, []int{1})))
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.Equal(t, int64(16), c.Size())
}

func TestLRU_GetOrLoad(t *testing.T) {
	c := NewSamples(4, nil, nil)
	key := SampleKey("ds", "temp", []int{0, 0}, []int{2, 3})
	ctx := context.Background()

	var calls int
	load := func(context.Context) ([]float64, error) {
		calls++
		return []float64{1, 2, 3}, nil
	}

	v, err := c.GetOrLoad(ctx, key, load)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)

	v, err = c.GetOrLoad(ctx, key, load)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)
	assert.Equal(t, 1, calls)

	st := c.Stats()
	assert.Equal(t, int64(1), st.Loads)
	assert.Equal(t, int64(1), st.Hits)
}

func TestLRU_FailedLoadLeavesNoEntry(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewSamples(4, rc, nil)
	key := SampleKey("ds", "temp", nil, nil)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), key, func(context.Context) ([]float64, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Contains(key))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(1), c.Stats().LoadErrors)

	v, err := c.GetOrLoad(context.Background(), key, func(context.Context) ([]float64, error) {
		return []float64{7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, v)
}

func TestLRU_ConcurrentMissesLoadOnce(t *testing.T) {
	c := NewSamples(4, nil, nil)
	key := SampleKey("ds", "temp", []int{0}, []int{8})

	var calls atomic.Int64
	release := make(chan struct{})
	load := func(context.Context) ([]float64, error) {
		calls.Add(1)
		<-release
		return make([]float64, 8), nil
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), key, load)
			assert.NoError(t, err)
			assert.Len(t, v, 8)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestLRU_Invalidate(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	c := NewSamples(8, rc, nil)
	ctx := context.Background()
	c.Set(ctx, SampleKey("a", "v", nil, nil), []float64{1})
	c.Set(ctx, SampleKey("b", "v", nil, nil), []float64{1})

	c.Invalidate(func(k Key) bool { return k.Source == "a" })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(8), rc.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestSampleKey(t *testing.T) {
	a := SampleKey("ds", "v", []int{1, 0}, []int{1, 4})
	b := SampleKey("ds", "v", []int{1, 0}, []int{1, 4})
	c := SampleKey("ds", "v", []int{10}, []int{4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "1,0/1,4", a.Block)

	// Separators inside fields must not merge distinct keys.
	x := Key{Kind: KindSamples, Source: "a|b", Name: "c"}
	y := Key{Kind: KindSamples, Source: "a", Name: "b|c"}
	assert.NotEqual(t, x.String(), y.String())
	x = Key{Kind: KindSamples, Source: `a":"b`, Name: "c"}
	y = Key{Kind: KindSamples, Source: "a", Name: `b":"c`}
	assert.NotEqual(t, x.String(), y.String())
}
