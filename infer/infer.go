// Package infer resolves the structural type and vetting parameters of a variable
// from its attributes.
package infer

import (
	"fmt"
	"strings"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/vet"
)

// RealInfo is the inferred description of a numeric variable.
type RealInfo struct {
	Type mathtype.RealType
	Vet  vet.Params
}

// Inferrer resolves types for the variables of a dataset.
type Inferrer interface {
	Real(r dataset.Reader, variable string) (RealInfo, error)
	Text(r dataset.Reader, variable string) (mathtype.TextType, error)
}

// Conventions infers types from the attribute conventions of netCDF user guides:
// units (or unit), _FillValue, missing_value, valid_range, valid_min and valid_max.
type Conventions struct {
	// NoDefaultFill disables the per-type default fill value when a variable has
	// no _FillValue attribute.
	NoDefaultFill bool
}

var _ Inferrer = Conventions{}

// Real implements Inferrer.
func (c Conventions) Real(r dataset.Reader, variable string) (RealInfo, error) {
	st := r.StorageType(variable)
	if !st.Numeric() {
		return RealInfo{}, &dataset.FormatError{Variable: variable, Msg: fmt.Sprintf("%s variable is not numeric", st)}
	}

	info := RealInfo{
		Type: mathtype.RealType{Name: variable, Unit: Unit(r, variable)},
		Vet:  vet.DefaultParams(st),
	}

	if a, ok := r.Attribute(variable, "_FillValue"); ok {
		v, err := number(variable, "_FillValue", a)
		if err != nil {
			return RealInfo{}, err
		}
		info.Vet.Fill = vet.Value(v)
	} else if fill, ok := st.DefaultFill(); ok && !c.NoDefaultFill {
		info.Vet.Fill = vet.Value(fill)
	}

	if a, ok := r.Attribute(variable, "missing_value"); ok {
		v, err := number(variable, "missing_value", a)
		if err != nil {
			return RealInfo{}, err
		}
		info.Vet.Missing = vet.Value(v)
	}

	if a, ok := r.Attribute(variable, "valid_range"); ok {
		if a.IsText() || len(a.Values) != 2 {
			return RealInfo{}, &dataset.FormatError{Variable: variable, Msg: "valid_range must hold exactly two numbers"}
		}
		info.Vet.ValidMin, info.Vet.ValidMax = a.Values[0], a.Values[1]
		return info, nil
	}
	if a, ok := r.Attribute(variable, "valid_min"); ok {
		v, err := number(variable, "valid_min", a)
		if err != nil {
			return RealInfo{}, err
		}
		info.Vet.ValidMin = v
	}
	if a, ok := r.Attribute(variable, "valid_max"); ok {
		v, err := number(variable, "valid_max", a)
		if err != nil {
			return RealInfo{}, err
		}
		info.Vet.ValidMax = v
	}
	return info, nil
}

// Text implements Inferrer.
func (Conventions) Text(r dataset.Reader, variable string) (mathtype.TextType, error) {
	if st := r.StorageType(variable); st != dataset.Char {
		return mathtype.TextType{}, &dataset.FormatError{Variable: variable, Msg: fmt.Sprintf("%s variable is not text", st)}
	}
	return mathtype.TextType{Name: variable}, nil
}

// Unit returns the "units" attribute of a variable, falling back to "unit".
func Unit(r dataset.Reader, variable string) string {
	for _, name := range []string{"units", "unit"} {
		if a, ok := r.Attribute(variable, name); ok && a.IsText() {
			return strings.TrimSpace(a.Text)
		}
	}
	return ""
}

func number(variable, name string, a dataset.Attribute) (float64, error) {
	v, ok := a.Float()
	if !ok {
		return 0, &dataset.FormatError{Variable: variable, Msg: name + " must be numeric"}
	}
	return v, nil
}
