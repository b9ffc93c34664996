package indicial

import (
	"context"
	"testing"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Immutable(t *testing.T) {
	in := []int{1, 2}
	c := New(in...)
	in[0] = 9
	assert.Equal(t, []int{1, 2}, c.Indices())

	d := c.Append(3)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []int{1, 2, 3}, d.Indices())

	idx := d.Indices()
	idx[0] = 7
	assert.Equal(t, 1, d.Index(0))
	assert.True(t, d.Clone().Equal(d))
	assert.Equal(t, "[1,2,3]", d.String())
}

func TestContext_Validate(t *testing.T) {
	assert.NoError(t, New().Validate(0))
	assert.NoError(t, New(1, 2).Validate(2))

	err := New(1, 2, 3).Validate(2)
	require.ErrorIs(t, err, ErrContextMismatch)
	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 2, me.Rank)

	assert.ErrorIs(t, New(-1).Validate(1), ErrContextMismatch)
}

func TestContext_Block(t *testing.T) {
	origin, shape, err := New(1).Block([]int{10, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, origin)
	assert.Equal(t, []int{1, 4, 5}, shape)

	_, _, err = New(10).Block([]int{10})
	assert.ErrorIs(t, err, ErrContextMismatch)
}

func TestRead(t *testing.T) {
	m := dataset.NewMemory("ds").AddDimension("time", 3).AddDimension("x", 2)
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "v",
		Type:       dataset.Int,
		Dimensions: []string{"time", "x"},
		Values:     []float64{1, 2, 3, 4, 5, 6},
	})
	ctx := context.Background()

	b, err := Read(ctx, m, "v", New())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, b.Float64s())

	b, err = Read(ctx, m, "v", New(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, b.Float64s())

	b, err = Read(ctx, m, "v", New(1, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, b.Float64s())

	again, err := Read(ctx, m, "v", New(1, 0))
	require.NoError(t, err)
	assert.Equal(t, b.Float64s(), again.Float64s())

	_, err = Read(ctx, m, "v", New(0, 0, 0))
	assert.ErrorIs(t, err, ErrContextMismatch)

	assert.Equal(t, 2, Size(New(1), []int{3, 2}))
}

type shortReader struct{ dataset.Reader }

func (s shortReader) ReadBlock(ctx context.Context, v string, origin, shape []int) (dataset.Block, error) {
	return dataset.NewBlock(dataset.Int, shape, []float64{1}), nil
}

func TestRead_ShortBlockIsBadFormat(t *testing.T) {
	m := dataset.NewMemory("ds").AddDimension("x", 2)
	m.MustAddVariable(dataset.MemoryVariable{Name: "v", Type: dataset.Int, Dimensions: []string{"x"}, Values: []float64{1, 2}})

	_, err := Read(context.Background(), shortReader{m}, "v", New())
	assert.ErrorIs(t, err, dataset.ErrBadFormat)
}
