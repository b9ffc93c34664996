// Package dataset defines the backing-store contract the import pipeline reads from.
//
// A Reader exposes named variables with a storage type, an ordered list of named
// dimensions, and key/value attributes. Values are read in hyperslab blocks addressed by
// an origin and a shape, always returned widened to float64 (or as raw bytes for
// character data) in row-major order.
//
// Two implementations ship with the module: Memory, an in-memory dataset used by tests
// and by callers that synthesize data, and the netCDF classic reader in the netcdf
// sub-package.
package dataset
