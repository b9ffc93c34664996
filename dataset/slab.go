package dataset

// Runs visits the contiguous innermost runs of a hyperslab in row-major order.
// fn receives the flat offset of the run in the full variable, the offset in the
// destination block, and the run length. A hyperslab with a zero extent has no runs.
func Runs(lengths, origin, shape []int, fn func(src, dst, n int) error) error {
	rank := len(lengths)
	if rank == 0 {
		return fn(0, 0, 1)
	}
	if Volume(shape) == 0 {
		return nil
	}

	strides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= lengths[i]
	}

	run := shape[rank-1]
	idx := make([]int, rank-1)
	dst := 0
	for {
		src := origin[rank-1]
		for i := 0; i < rank-1; i++ {
			src += (origin[i] + idx[i]) * strides[i]
		}
		if err := fn(src, dst, run); err != nil {
			return err
		}
		dst += run

		// odometer over the outer dimensions
		d := rank - 2
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return nil
		}
	}
}
