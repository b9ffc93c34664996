package testutil

import (
	"context"
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/hupe1980/lazycdf/dataset"
)

// WriteNetCDF writes the numeric variables of m to a netCDF classic file at path.
// Char variables are not written.
func WriteNetCDF(path string, m *dataset.Memory) error {
	var (
		dims    []string
		lengths []int
		seen    = make(map[string]bool)
		vars    []string
	)
	for _, v := range m.Variables() {
		if !m.StorageType(v).Numeric() {
			continue
		}
		vars = append(vars, v)
		for i, d := range m.Dimensions(v) {
			if !seen[d] {
				seen[d] = true
				dims = append(dims, d)
				lengths = append(lengths, m.Lengths(v)[i])
			}
		}
	}

	h := cdf.NewHeader(dims, lengths)
	for _, name := range m.AttributeNames("") {
		a, _ := m.Attribute("", name)
		h.AddAttribute("", name, attrValue(a))
	}
	for _, v := range vars {
		h.AddVariable(v, m.Dimensions(v), typed(m.StorageType(v), []float64{0}))
		for _, name := range m.AttributeNames(v) {
			a, _ := m.Attribute(v, name)
			h.AddAttribute(v, name, attrValue(a))
		}
	}
	h.Define()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	f, err := cdf.Create(out, h)
	if err != nil {
		return err
	}
	for _, v := range vars {
		end := m.Lengths(v)
		start := make([]int, len(end))
		b, err := m.ReadBlock(context.Background(), v, start, end)
		if err != nil {
			return err
		}
		w := f.Writer(v, start, end)
		if _, err := w.Write(typed(m.StorageType(v), b.Float64s())); err != nil {
			return fmt.Errorf("write %s: %w", v, err)
		}
	}
	return out.Sync()
}

func attrValue(a dataset.Attribute) any {
	if a.IsText() {
		return a.Text
	}
	return typed(a.Type, a.Values)
}

func typed(t dataset.StorageType, vals []float64) any {
	switch t {
	case dataset.Byte:
		out := make([]int8, len(vals))
		for i, v := range vals {
			out[i] = int8(v)
		}
		return out
	case dataset.Short:
		out := make([]int16, len(vals))
		for i, v := range vals {
			out[i] = int16(v)
		}
		return out
	case dataset.Int:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out
	case dataset.Float:
		out := make([]float32, len(vals))
		for i, v := range vals {
			out[i] = float32(v)
		}
		return out
	default:
		return append([]float64(nil), vals...)
	}
}
