package dataset

import (
	"fmt"
	"math"
)

// StorageType is the on-disk element type of a variable.
type StorageType uint8

const (
	Byte StorageType = iota + 1
	Char
	Short
	Int
	Float
	Double
)

// String returns the netCDF type name.
func (t StorageType) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("StorageType(%d)", uint8(t))
	}
}

// Size returns the element width in bytes.
func (t StorageType) Size() int {
	switch t {
	case Byte, Char:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

// Numeric reports whether values of this type are read as numbers.
func (t StorageType) Numeric() bool {
	return t != Char && t.Size() > 0
}

// Floating reports whether the type is a floating point type.
func (t StorageType) Floating() bool {
	return t == Float || t == Double
}

// Range returns the representable value range widened to float64.
// Floating types report the infinite range.
func (t StorageType) Range() (lo, hi float64) {
	switch t {
	case Byte:
		return math.MinInt8, math.MaxInt8
	case Char:
		return 0, math.MaxUint8
	case Short:
		return math.MinInt16, math.MaxInt16
	case Int:
		return math.MinInt32, math.MaxInt32
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// DefaultFill returns the netCDF default fill value for the type.
// Byte and char variables have no default fill: every bit pattern is a valid value.
func (t StorageType) DefaultFill() (float64, bool) {
	switch t {
	case Short:
		return -32767, true
	case Int:
		return -2147483647, true
	case Float:
		return float64(float32(9.9692099683868690e+36)), true
	case Double:
		return 9.9692099683868690e+36, true
	default:
		return 0, false
	}
}

// Attribute is a variable or global attribute. Numeric attributes carry
// Values, character attributes carry Text.
type Attribute struct {
	Type   StorageType
	Values []float64
	Text   string
}

// IsText reports whether the attribute holds character data.
func (a Attribute) IsText() bool { return a.Type == Char }

// Float returns the first numeric value.
func (a Attribute) Float() (float64, bool) {
	if a.IsText() || len(a.Values) == 0 {
		return 0, false
	}
	return a.Values[0], true
}

// TextAttribute returns a character attribute.
func TextAttribute(s string) Attribute {
	return Attribute{Type: Char, Text: s}
}

// NumericAttribute returns a numeric attribute of the given type.
func NumericAttribute(t StorageType, values ...float64) Attribute {
	return Attribute{Type: t, Values: append([]float64(nil), values...)}
}

// Block is the result of a hyperslab read.
type Block struct {
	Type  StorageType
	Shape []int

	values []float64
	text   []byte
}

// NewBlock returns a numeric block. The block takes ownership of values.
func NewBlock(t StorageType, shape []int, values []float64) Block {
	return Block{Type: t, Shape: shape, values: values}
}

// NewTextBlock returns a character block. The block takes ownership of text.
func NewTextBlock(shape []int, text []byte) Block {
	return Block{Type: Char, Shape: shape, text: text}
}

// Len returns the number of elements in the block.
func (b Block) Len() int {
	if b.Type == Char {
		return len(b.text)
	}
	return len(b.values)
}

// Float64s returns the widened numeric values. The slice is owned by the block.
func (b Block) Float64s() []float64 { return b.values }

// Bytes returns raw character data.
func (b Block) Bytes() []byte { return b.text }

// Strings splits character data into rows of the innermost dimension and
// trims trailing NUL padding.
func (b Block) Strings() []string {
	if len(b.text) == 0 {
		return nil
	}
	width := len(b.text)
	if len(b.Shape) > 0 && b.Shape[len(b.Shape)-1] > 0 {
		width = b.Shape[len(b.Shape)-1]
	}
	out := make([]string, 0, len(b.text)/width)
	for off := 0; off+width <= len(b.text); off += width {
		row := b.text[off : off+width]
		end := len(row)
		for end > 0 && row[end-1] == 0 {
			end--
		}
		out = append(out, string(row[:end]))
	}
	return out
}

// Volume returns the number of elements described by shape.
func Volume(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
