package mathtype

// Description is a serializable view of a Type.
type Description struct {
	Kind       string        `json:"kind"`
	Name       string        `json:"name,omitempty"`
	Unit       string        `json:"unit,omitempty"`
	Domain     []Description `json:"domain,omitempty"`
	Range      *Description  `json:"range,omitempty"`
	Components []Description `json:"components,omitempty"`
}

// Describe converts a type into its Description.
func Describe(t Type) Description {
	switch v := t.(type) {
	case RealType:
		return Description{Kind: "real", Name: v.Name, Unit: v.Unit}
	case TextType:
		return Description{Kind: "text", Name: v.Name}
	case RealTupleType:
		d := Description{Kind: "realtuple"}
		for _, c := range v.Components {
			d.Components = append(d.Components, Describe(c))
		}
		return d
	case TupleType:
		d := Description{Kind: "tuple"}
		for _, c := range v.Components {
			d.Components = append(d.Components, Describe(c))
		}
		return d
	case FunctionType:
		r := Describe(v.Range)
		d := Description{Kind: "function", Range: &r}
		for _, c := range v.Domain.Components {
			d.Domain = append(d.Domain, Describe(c))
		}
		return d
	default:
		return Description{Kind: "unknown"}
	}
}
