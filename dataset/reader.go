package dataset

import "context"

// Reader is a read-only, self-describing multidimensional dataset.
//
// Implementations must be safe for concurrent ReadBlock calls; lazily materialized
// fields read from the store long after the import returned.
type Reader interface {
	// Name identifies the dataset. It participates in cache keys.
	Name() string

	// Variables lists variable names in definition order.
	Variables() []string

	// Dimensions returns the dimension names of a variable, outermost first.
	Dimensions(variable string) []string

	// Rank returns the number of dimensions of a variable.
	Rank(variable string) int

	// Lengths returns the dimension lengths of a variable, outermost first.
	Lengths(variable string) []int

	// StorageType returns the element type of a variable.
	StorageType(variable string) StorageType

	// Attribute looks up an attribute. An empty variable name addresses
	// global attributes.
	Attribute(variable, name string) (Attribute, bool)

	// ReadBlock reads the hyperslab starting at origin with the given shape.
	ReadBlock(ctx context.Context, variable string, origin, shape []int) (Block, error)
}

// CheckSlab validates origin and shape against the dimension lengths.
func CheckSlab(lengths, origin, shape []int) error {
	if len(origin) != len(lengths) || len(shape) != len(lengths) {
		return &FormatError{Msg: "hyperslab rank does not match variable rank"}
	}
	for i := range lengths {
		if origin[i] < 0 || shape[i] < 0 || origin[i]+shape[i] > lengths[i] {
			return &FormatError{Msg: "hyperslab exceeds dimension bounds"}
		}
	}
	return nil
}
