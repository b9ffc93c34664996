package indicial

import (
	"context"
	"fmt"

	"github.com/hupe1980/lazycdf/dataset"
)

// Read returns the sub-array of variable addressed by c, in row-major order over the
// remaining dimensions. The result is a pure function of (variable, c) for an unchanged
// store.
func Read(ctx context.Context, r dataset.Reader, variable string, c Context) (dataset.Block, error) {
	lengths := r.Lengths(variable)
	origin, shape, err := c.Block(lengths)
	if err != nil {
		return dataset.Block{}, fmt.Errorf("%s: %w", variable, err)
	}

	b, err := r.ReadBlock(ctx, variable, origin, shape)
	if err != nil {
		return dataset.Block{}, err
	}

	if want := dataset.Volume(shape); b.Len() != want {
		return dataset.Block{}, &dataset.FormatError{
			Variable: variable,
			Msg:      fmt.Sprintf("read returned %d values, expected %d", b.Len(), want),
		}
	}
	return b, nil
}

// Size returns the number of elements c addresses in a variable with the given lengths.
func Size(c Context, lengths []int) int {
	n := 1
	for i := c.Len(); i < len(lengths); i++ {
		n *= lengths[i]
	}
	return n
}
