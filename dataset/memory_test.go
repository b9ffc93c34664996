package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid() *Memory {
	m := NewMemory("grid").
		AddDimension("time", 2).
		AddDimension("y", 2).
		AddDimension("x", 3)
	m.MustAddVariable(MemoryVariable{
		Name:       "t",
		Type:       Float,
		Dimensions: []string{"time", "y", "x"},
		Values:     []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	})
	m.MustAddVariable(MemoryVariable{Name: "scalar", Type: Double, Values: []float64{42}})
	return m
}

func TestMemory_ReadBlock(t *testing.T) {
	m := grid()

	tests := []struct {
		name   string
		origin []int
		shape  []int
		want   []float64
	}{
		{"full", []int{0, 0, 0}, []int{2, 2, 3}, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"second time step", []int{1, 0, 0}, []int{1, 2, 3}, []float64{6, 7, 8, 9, 10, 11}},
		{"single row", []int{1, 1, 0}, []int{1, 1, 3}, []float64{9, 10, 11}},
		{"inner column", []int{0, 0, 1}, []int{2, 2, 1}, []float64{1, 4, 7, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := m.ReadBlock(context.Background(), "t", tt.origin, tt.shape)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Float64s())
			assert.Equal(t, Float, b.Type)
		})
	}
}

func TestMemory_ReadScalar(t *testing.T) {
	m := grid()
	assert.Equal(t, 0, m.Rank("scalar"))

	b, err := m.ReadBlock(context.Background(), "scalar", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{42}, b.Float64s())
}

func TestMemory_Errors(t *testing.T) {
	m := grid()

	_, err := m.ReadBlock(context.Background(), "missing", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.ReadBlock(context.Background(), "t", []int{0, 0, 2}, []int{1, 1, 2})
	assert.ErrorIs(t, err, ErrBadFormat)

	err = m.AddVariable(MemoryVariable{Name: "bad", Type: Int, Dimensions: []string{"x"}, Values: []float64{1}})
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestBlock_Strings(t *testing.T) {
	b := NewTextBlock([]int{2, 4}, []byte("ab\x00\x00wxyz"))
	assert.Equal(t, []string{"ab", "wxyz"}, b.Strings())
}

func TestStorageType_DefaultFill(t *testing.T) {
	_, ok := Byte.DefaultFill()
	assert.False(t, ok)

	fill, ok := Short.DefaultFill()
	require.True(t, ok)
	assert.Equal(t, float64(-32767), fill)

	lo, hi := Short.Range()
	assert.Equal(t, float64(-32768), lo)
	assert.Equal(t, float64(32767), hi)
}

func TestIOError(t *testing.T) {
	err := &IOError{Variable: "t", Err: assert.AnError}
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, assert.AnError)
}
