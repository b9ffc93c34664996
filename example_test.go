package lazycdf_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/lazycdf"
	"github.com/hupe1980/lazycdf/data"
	"github.com/hupe1980/lazycdf/dataset"
)

// Example imports an in-memory dataset with one coordinate variable.
func Example() {
	ds := dataset.NewMemory("profile").AddDimension("depth", 3)
	ds.MustAddVariable(dataset.MemoryVariable{
		Name:       "depth",
		Type:       dataset.Float,
		Dimensions: []string{"depth"},
		Attributes: map[string]dataset.Attribute{"units": dataset.TextAttribute("m")},
		Values:     []float64{0, 10, 20},
	})
	ds.MustAddVariable(dataset.MemoryVariable{
		Name:       "salinity",
		Type:       dataset.Float,
		Dimensions: []string{"depth"},
		Attributes: map[string]dataset.Attribute{"_FillValue": dataset.NumericAttribute(dataset.Float, -1)},
		Values:     []float64{35.1, -1, 35.4},
	})

	im, err := lazycdf.New(lazycdf.WithMemoryLimit(64 << 20))
	if err != nil {
		log.Fatal(err)
	}
	defer im.Close()

	res, err := im.Import(context.Background(), ds)
	if err != nil {
		log.Fatal(err)
	}
	defer res.Close()

	ff := res.Data.(data.FlatField)
	values, err := ff.Component(context.Background(), 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Type())
	fmt.Println(res.Strategy)
	fmt.Println(ff.DomainSet().Axes[0].Kind)
	fmt.Println(values)
	// Output:
	// (depth -> salinity)
	// default/in-memory
	// linear
	// [35.1 NaN 35.4]
}
