package testutil

import (
	"context"
	"testing"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillUniformRange(t *testing.T) {
	rng := NewRNG(4711)
	v := make([]float64, 64)
	rng.FillUniformRange(v, 250, 310)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, 250.0)
		assert.Less(t, x, 310.0)
	}

	idx := rng.Punch(v, 1, Fill)
	assert.Len(t, idx, 64)
	assert.Equal(t, float64(Fill), v[0])
}

func TestTempHumidity(t *testing.T) {
	ds := TempHumidity(10)
	assert.Equal(t, []int{10, Lat, Lon}, ds.Lengths("temp"))

	b, err := ds.ReadBlock(context.Background(), "temp", []int{1, 0, 0}, []int{1, Lat, Lon})
	require.NoError(t, err)
	assert.Equal(t, float64(Fill), b.Float64s()[0])
	assert.Equal(t, TempAt(Lat*Lon+1), b.Float64s()[1])
}

func TestCountingAndFaultyReaders(t *testing.T) {
	ctx := context.Background()
	cr := NewCountingReader(Grid2D(2, 3))
	fr := NewFaultyReader(cr)
	fr.FailTimes("a", 1)

	_, err := fr.ReadBlock(ctx, "a", []int{0, 0}, []int{2, 3})
	assert.ErrorIs(t, err, dataset.ErrIO)
	assert.ErrorIs(t, err, ErrInjected)

	_, err = fr.ReadBlock(ctx, "a", []int{0, 0}, []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1, cr.Reads("a"))
	assert.Equal(t, 1, cr.Total())
}
