package mathtype

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// AxisKind describes how an axis is sampled.
type AxisKind uint8

const (
	// Integer axes sample 0..Length-1.
	Integer AxisKind = iota + 1
	// Linear axes sample an arithmetic progression from First to Last.
	Linear
	// Gridded axes list every sample explicitly.
	Gridded
)

func (k AxisKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Linear:
		return "linear"
	case Gridded:
		return "gridded"
	default:
		return "unknown"
	}
}

// Axis is one sampled dimension of a domain.
type Axis struct {
	Type   RealType
	Kind   AxisKind
	Length int
	First  float64
	Last   float64
	Values []float64 // only for Gridded
}

// IntegerAxis samples 0..n-1.
func IntegerAxis(t RealType, n int) Axis {
	last := 0.0
	if n > 0 {
		last = float64(n - 1)
	}
	return Axis{Type: t, Kind: Integer, Length: n, First: 0, Last: last}
}

// NewAxis builds an axis from coordinate values. A consistent arithmetic
// progression becomes a Linear axis, anything else is Gridded.
func NewAxis(t RealType, values []float64) Axis {
	n := len(values)
	if n == 0 {
		return Axis{Type: t, Kind: Linear}
	}
	if IsArithmeticProgression(values) {
		return Axis{Type: t, Kind: Linear, Length: n, First: values[0], Last: values[n-1]}
	}
	return Axis{
		Type:   t,
		Kind:   Gridded,
		Length: n,
		First:  values[0],
		Last:   values[n-1],
		Values: slices.Clone(values),
	}
}

// IsArithmeticProgression reports whether values have a constant step, allowing
// for the rounding of single precision coordinates.
func IsArithmeticProgression(values []float64) bool {
	n := len(values)
	if n < 3 {
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	step := (values[n-1] - values[0]) / float64(n-1)
	if math.IsNaN(step) || math.IsInf(step, 0) {
		return false
	}
	tol := math.Abs(step) * 1e-5
	if tol == 0 {
		tol = 1e-12
	}
	for i := 1; i < n; i++ {
		if math.Abs(values[i]-values[i-1]-step) > tol {
			return false
		}
	}
	return true
}

// Value returns the i-th sample of the axis.
func (a Axis) Value(i int) float64 {
	switch a.Kind {
	case Integer:
		return float64(i)
	case Gridded:
		return a.Values[i]
	default:
		if a.Length <= 1 {
			return a.First
		}
		return a.First + float64(i)*(a.Last-a.First)/float64(a.Length-1)
	}
}

// Equal compares the axis type and sampling.
func (a Axis) Equal(o Axis) bool {
	if a.Type != o.Type || a.Kind != o.Kind || a.Length != o.Length {
		return false
	}
	switch a.Kind {
	case Gridded:
		return slices.Equal(a.Values, o.Values)
	case Linear:
		return a.First == o.First && a.Last == o.Last
	default:
		return true
	}
}

func (a Axis) String() string {
	switch a.Kind {
	case Gridded:
		return fmt.Sprintf("%s[gridded %d]", a.Type.Name, a.Length)
	case Linear:
		return fmt.Sprintf("%s[linear %g..%g/%d]", a.Type.Name, a.First, a.Last, a.Length)
	default:
		return fmt.Sprintf("%s[%d]", a.Type.Name, a.Length)
	}
}

// Set is a product of axes, innermost (fastest varying) axis first.
type Set struct {
	Axes []Axis
}

// NewSet creates a domain from axes listed innermost first.
func NewSet(axes ...Axis) Set {
	return Set{Axes: slices.Clone(axes)}
}

// Rank returns the number of axes.
func (s Set) Rank() int { return len(s.Axes) }

// Len returns the number of samples.
func (s Set) Len() int {
	if len(s.Axes) == 0 {
		return 0
	}
	n := 1
	for _, a := range s.Axes {
		n *= a.Length
	}
	return n
}

// Lengths returns the axis lengths, innermost first.
func (s Set) Lengths() []int {
	out := make([]int, len(s.Axes))
	for i, a := range s.Axes {
		out[i] = a.Length
	}
	return out
}

// Type returns the domain type.
func (s Set) Type() RealTupleType {
	c := make([]RealType, len(s.Axes))
	for i, a := range s.Axes {
		c[i] = a.Type
	}
	return RealTupleType{Components: c}
}

// Sample returns the coordinates of flat sample index i, innermost first.
func (s Set) Sample(i int) []float64 {
	out := make([]float64, len(s.Axes))
	for k, a := range s.Axes {
		if a.Length == 0 {
			continue
		}
		out[k] = a.Value(i % a.Length)
		i /= a.Length
	}
	return out
}

// Equal compares sets structurally.
func (s Set) Equal(o Set) bool {
	return slices.EqualFunc(s.Axes, o.Axes, Axis.Equal)
}

func (s Set) String() string {
	parts := make([]string, len(s.Axes))
	for i, a := range s.Axes {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, " x ") + "}"
}
