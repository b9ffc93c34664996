// Package vet replaces fill, missing and out-of-range samples with NaN.
//
// Comparisons are exact. Every storage type widens to float64 without rounding, so
// equality in float64 is equality in the storage type.
package vet

import (
	"math"

	"github.com/hupe1980/lazycdf/dataset"
)

// Params describe which raw values of a variable are invalid.
type Params struct {
	Storage dataset.StorageType

	// Fill and Missing are nil when the variable declares no such sentinel.
	Fill    *float64
	Missing *float64

	ValidMin float64
	ValidMax float64
}

// DefaultParams returns params without sentinels and the full storage range.
func DefaultParams(t dataset.StorageType) Params {
	lo, hi := t.Range()
	return Params{Storage: t, ValidMin: lo, ValidMax: hi}
}

// Value returns a pointer to v for use in Params.
func Value(v float64) *float64 { return &v }

// Vetter is bound to one variable. It is immutable and safe for concurrent use.
type Vetter struct {
	p      Params
	needed bool

	hasFill, hasMissing bool
	checkMin, checkMax  bool
}

// New creates a vetter. Whether any vetting is needed is decided once here.
func New(p Params) *Vetter {
	lo, hi := p.Storage.Range()
	v := &Vetter{p: p}
	v.hasFill = p.Fill != nil && !math.IsNaN(*p.Fill)
	v.hasMissing = p.Missing != nil && !math.IsNaN(*p.Missing)
	v.checkMin = p.ValidMin > lo
	v.checkMax = p.ValidMax < hi
	v.needed = v.hasFill || v.hasMissing || v.checkMin || v.checkMax
	return v
}

// Params returns the parameters the vetter was built from.
func (v *Vetter) Params() Params { return v.p }

// Needed reports whether Vet can change any value.
func (v *Vetter) Needed() bool { return v != nil && v.needed }

// Invalid reports whether a single raw value would be replaced.
func (v *Vetter) Invalid(x float64) bool {
	if !v.Needed() {
		return false
	}
	switch {
	case v.hasFill && x == *v.p.Fill:
		return true
	case v.hasMissing && x == *v.p.Missing:
		return true
	case v.checkMin && x < v.p.ValidMin:
		return true
	case v.checkMax && x > v.p.ValidMax:
		return true
	}
	return false
}

// Vet replaces invalid values with NaN in place and returns values.
func (v *Vetter) Vet(values []float64) []float64 {
	if !v.Needed() {
		return values
	}
	nan := math.NaN()
	for i, x := range values {
		if v.Invalid(x) {
			values[i] = nan
		}
	}
	return values
}
