package testutil

import (
	"math"

	"github.com/hupe1980/lazycdf/dataset"
)

// Fill is the _FillValue used by fixture variables.
const Fill = -999

// Grid sizes of the TempHumidity fixture.
const (
	Lat = 4
	Lon = 5
)

// TempHumidity returns a dataset with dimensions time(nt), lat(4), lon(5), coordinate
// variables for all three, and float variables temp and humidity over
// (time, lat, lon) with _FillValue -999. temp[t][y][x] = 250 + t + y/10 + x/100,
// humidity is 100 minus temp. The first temp sample of every time step is the fill value.
func TempHumidity(nt int) *dataset.Memory {
	m := dataset.NewMemory("temp_humidity").
		AddDimension("time", nt).
		AddDimension("lat", Lat).
		AddDimension("lon", Lon)

	times := make([]float64, nt)
	for i := range times {
		times[i] = float64(i) * 6
	}
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "time",
		Type:       dataset.Double,
		Dimensions: []string{"time"},
		Attributes: map[string]dataset.Attribute{"units": dataset.TextAttribute("hours since 2000-01-01 00:00:00")},
		Values:     times,
	})
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "lat",
		Type:       dataset.Float,
		Dimensions: []string{"lat"},
		Attributes: map[string]dataset.Attribute{"units": dataset.TextAttribute("degrees_north")},
		Values:     []float64{-45, -15, 15, 45},
	})
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "lon",
		Type:       dataset.Float,
		Dimensions: []string{"lon"},
		Attributes: map[string]dataset.Attribute{"units": dataset.TextAttribute("degrees_east")},
		Values:     []float64{0, 10, 30, 60, 100},
	})

	n := nt * Lat * Lon
	temp := make([]float64, n)
	hum := make([]float64, n)
	for i := range temp {
		temp[i] = TempAt(i)
		hum[i] = 100 - temp[i]
	}
	for t := 0; t < nt; t++ {
		temp[t*Lat*Lon] = Fill
	}

	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "temp",
		Type:       dataset.Float,
		Dimensions: []string{"time", "lat", "lon"},
		Attributes: map[string]dataset.Attribute{
			"units":      dataset.TextAttribute("K"),
			"_FillValue": dataset.NumericAttribute(dataset.Float, Fill),
		},
		Values: temp,
	})
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "humidity",
		Type:       dataset.Float,
		Dimensions: []string{"time", "lat", "lon"},
		Attributes: map[string]dataset.Attribute{
			"units":      dataset.TextAttribute("percent"),
			"_FillValue": dataset.NumericAttribute(dataset.Float, Fill),
		},
		Values: hum,
	})
	return m
}

// TempAt returns the unvetted temp value at flat index i of TempHumidity.
func TempAt(i int) float64 {
	x := i % Lon
	y := (i / Lon) % Lat
	t := i / (Lon * Lat)
	return float64(float32(250 + float64(t) + float64(y)/10 + float64(x)/100))
}

// Grid2D returns a dataset with two float variables a and b over (y, x) without
// coordinate variables, plus a rank-0 variable "level".
func Grid2D(ny, nx int) *dataset.Memory {
	m := dataset.NewMemory("grid2d").AddDimension("y", ny).AddDimension("x", nx)
	for k, name := range []string{"a", "b"} {
		vals := make([]float64, ny*nx)
		for i := range vals {
			vals[i] = float64(k*1000 + i)
		}
		m.MustAddVariable(dataset.MemoryVariable{Name: name, Type: dataset.Double, Dimensions: []string{"y", "x"}, Values: vals})
	}
	m.MustAddVariable(dataset.MemoryVariable{Name: "level", Type: dataset.Int, Values: []float64{850}})
	return m
}

// Labels returns a dataset with a char variable "station" over (station, strlen)
// and a char variable "title" over (strlen).
func Labels() *dataset.Memory {
	m := dataset.NewMemory("labels").AddDimension("station", 3).AddDimension("strlen", 4)
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "station",
		Type:       dataset.Char,
		Dimensions: []string{"station", "strlen"},
		Text:       []byte("KBOSKSEAPDX\x00"),
	})
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "title",
		Type:       dataset.Char,
		Dimensions: []string{"strlen"},
		Text:       []byte("obs\x00"),
	})
	return m
}

// TimeSeries returns a dataset named name with a time coordinate and float
// variables temp and humidity over (time). temp[i] = 280 + i and
// humidity[i] = 50 + i.
func TimeSeries(name string, nt int) *dataset.Memory {
	times := make([]float64, nt)
	temp := make([]float64, nt)
	hum := make([]float64, nt)
	for i := range nt {
		times[i] = float64(i)
		temp[i] = 280 + float64(i)
		hum[i] = 50 + float64(i)
	}
	return Series(name, times, temp, hum)
}

// Series is TimeSeries with explicit values. All slices must have the same length.
func Series(name string, times, temp, humidity []float64) *dataset.Memory {
	m := dataset.NewMemory(name).AddDimension("time", len(times))
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "time",
		Type:       dataset.Double,
		Dimensions: []string{"time"},
		Attributes: map[string]dataset.Attribute{"units": dataset.TextAttribute("days since 2000-01-01")},
		Values:     times,
	})
	m.MustAddVariable(dataset.MemoryVariable{Name: "temp", Type: dataset.Float, Dimensions: []string{"time"}, Values: temp})
	m.MustAddVariable(dataset.MemoryVariable{Name: "humidity", Type: dataset.Float, Dimensions: []string{"time"}, Values: humidity})
	return m
}

// NaNCount returns the number of NaN values.
func NaNCount(vals []float64) int {
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
