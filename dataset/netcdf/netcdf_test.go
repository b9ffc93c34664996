package netcdf

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hupe1980/lazycdf/blobstore"
	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/resource"
	"github.com/hupe1980/lazycdf/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempHumidity(t *testing.T, nt int) string {
	t.Helper()
	m := testutil.TempHumidity(nt)
	m.SetGlobal("title", dataset.TextAttribute("synthetic"))
	m.MustAddVariable(dataset.MemoryVariable{
		Name:       "flag",
		Type:       dataset.Byte,
		Dimensions: []string{"lat"},
		Values:     []float64{-1, 0, 1, 127},
	})
	path := filepath.Join(t.TempDir(), "temp_humidity.nc")
	require.NoError(t, testutil.WriteNetCDF(path, m))
	return path
}

func TestOpenFile_Header(t *testing.T) {
	f, err := OpenFile(writeTempHumidity(t, 3))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"time", "lat", "lon", "temp", "humidity", "flag"}, f.Variables())
	assert.Equal(t, []string{"time", "lat", "lon"}, f.Dimensions("temp"))
	assert.Equal(t, []int{3, testutil.Lat, testutil.Lon}, f.Lengths("temp"))
	assert.Equal(t, 3, f.Rank("temp"))
	assert.Equal(t, dataset.Float, f.StorageType("temp"))
	assert.Equal(t, dataset.Double, f.StorageType("time"))
	assert.Equal(t, dataset.Byte, f.StorageType("flag"))

	fill, ok := f.Attribute("temp", "_FillValue")
	require.True(t, ok)
	assert.Equal(t, dataset.Float, fill.Type)
	assert.Equal(t, []float64{testutil.Fill}, fill.Values)

	units, ok := f.Attribute("time", "units")
	require.True(t, ok)
	assert.Equal(t, "hours since 2000-01-01 00:00:00", units.Text)

	title, ok := f.Attribute("", "title")
	require.True(t, ok)
	assert.Equal(t, "synthetic", title.Text)

	_, ok = f.Attribute("temp", "missing_value")
	assert.False(t, ok)
	assert.Nil(t, f.Dimensions("nope"))
}

func TestFile_ReadBlock(t *testing.T) {
	f, err := OpenFile(writeTempHumidity(t, 3))
	require.NoError(t, err)
	defer f.Close()

	b, err := f.ReadBlock(t.Context(), "temp", []int{1, 2, 1}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, b.Shape)

	var want []float64
	for y := 2; y < 4; y++ {
		for x := 1; x < 4; x++ {
			want = append(want, testutil.TempAt(1*testutil.Lat*testutil.Lon+y*testutil.Lon+x))
		}
	}
	assert.Equal(t, want, b.Float64s())

	whole, err := f.ReadBlock(t.Context(), "temp", []int{0, 0, 0}, []int{3, testutil.Lat, testutil.Lon})
	require.NoError(t, err)
	assert.Equal(t, float64(testutil.Fill), whole.Float64s()[0])

	flags, err := f.ReadBlock(t.Context(), "flag", []int{0}, []int{4})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1, 127}, flags.Float64s(), "bytes are signed")

	empty, err := f.ReadBlock(t.Context(), "time", []int{1}, []int{0})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestFile_ReadBlockErrors(t *testing.T) {
	f, err := OpenFile(writeTempHumidity(t, 2))
	require.NoError(t, err)

	_, err = f.ReadBlock(t.Context(), "nope", nil, nil)
	assert.ErrorIs(t, err, dataset.ErrNotFound)

	_, err = f.ReadBlock(t.Context(), "temp", []int{0, 0, 0}, []int{3, 1, 1})
	assert.ErrorIs(t, err, dataset.ErrBadFormat)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = f.ReadBlock(ctx, "temp", []int{0, 0, 0}, []int{1, 1, 1})
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, f.Close())
	_, err = f.ReadBlock(t.Context(), "temp", []int{0, 0, 0}, []int{1, 1, 1})
	assert.ErrorIs(t, err, dataset.ErrIO)
}

func TestOpen_BadFormat(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("definitely not a netCDF header")), "bad")
	require.ErrorIs(t, err, dataset.ErrBadFormat)

	_, err = Open(bytes.NewReader(nil), "empty")
	require.ErrorIs(t, err, dataset.ErrBadFormat)
}

// flakyReaderAt fails every read while broken is set.
type flakyReaderAt struct {
	mu     sync.Mutex
	data   []byte
	broken bool
}

func (r *flakyReaderAt) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.broken {
		return 0, errors.New("connection reset")
	}
	return bytes.NewReader(r.data).ReadAt(p, off)
}

func TestOpen_IOFailure(t *testing.T) {
	raw, err := os.ReadFile(writeTempHumidity(t, 2))
	require.NoError(t, err)

	src := &flakyReaderAt{data: raw, broken: true}
	_, err = Open(src, "flaky")
	require.ErrorIs(t, err, dataset.ErrIO)

	src.broken = false
	f, err := Open(src, "flaky")
	require.NoError(t, err)

	src.broken = true
	_, err = f.ReadBlock(t.Context(), "lat", []int{0}, []int{testutil.Lat})
	require.ErrorIs(t, err, dataset.ErrIO)

	src.broken = false
	lat, err := f.ReadBlock(t.Context(), "lat", []int{0}, []int{testutil.Lat})
	require.NoError(t, err)
	assert.Equal(t, []float64{-45, -15, 15, 45}, lat.Float64s())
}

func TestOpenStore_RateLimited(t *testing.T) {
	raw, err := os.ReadFile(writeTempHumidity(t, 2))
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	store.Put("climate/th.nc", raw)

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	f, err := OpenStore(t.Context(), store, "climate/th.nc", WithController(rc))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "climate/th.nc", f.Name())

	b, err := f.ReadBlock(t.Context(), "lon", []int{0}, []int{testutil.Lon})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 30, 60, 100}, b.Float64s())

	_, err = OpenStore(t.Context(), store, "climate/missing.nc")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.ErrorIs(t, err, dataset.ErrIO)
}

func TestFile_ConcurrentReads(t *testing.T) {
	f, err := OpenFile(writeTempHumidity(t, 4))
	require.NoError(t, err)
	defer f.Close()

	var wg sync.WaitGroup
	for ti := 0; ti < 4; ti++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := f.ReadBlock(t.Context(), "temp", []int{ti, 0, 0}, []int{1, testutil.Lat, testutil.Lon})
			assert.NoError(t, err)
			assert.Equal(t, testutil.TempAt(ti*testutil.Lat*testutil.Lon+1), b.Float64s()[1])
		}()
	}
	wg.Wait()
}
