package netcdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ctessum/cdf"
	"github.com/hupe1980/lazycdf/blobstore"
	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/resource"
)

var errReadOnly = errors.New("netcdf: file is read-only")

type options struct {
	controller *resource.Controller
	logger     *slog.Logger
}

// Option configures how a file is opened.
type Option func(*options)

// WithController throttles reads with the controller's IO limit.
func WithController(rc *resource.Controller) Option {
	return func(o *options) { o.controller = rc }
}

// WithLogger sets the logger for header diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type variable struct {
	typ   dataset.StorageType
	dims  []string
	shape []int
	attrs map[string]dataset.Attribute
}

// File is an open netCDF file. It implements dataset.Reader.
type File struct {
	name    string
	order   []string
	vars    map[string]*variable
	globals map[string]dataset.Attribute

	mu  sync.Mutex // guards f and src.ctx
	f   *cdf.File
	src *source

	closer io.Closer
}

var _ dataset.Reader = (*File)(nil)

// source adapts a context-aware reader to the io.ReaderAt/io.WriterAt pair
// the decoder expects. The context of the read in progress is set under File.mu.
type source struct {
	ctx    context.Context
	readAt func(ctx context.Context, p []byte, off int64) (int, error)
	rc     *resource.Controller
	// err is the last failure of the byte source other than EOF.
	err error
}

func (s *source) ReadAt(p []byte, off int64) (int, error) {
	r := resource.NewRateLimitedReaderAt(s.ctx, readerAtFunc(func(p []byte, off int64) (int, error) {
		return s.readAt(s.ctx, p, off)
	}), s.rc)
	n, err := r.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}

func (s *source) WriteAt([]byte, int64) (int, error) { return 0, errReadOnly }

type readerAtFunc func(p []byte, off int64) (int, error)

func (f readerAtFunc) ReadAt(p []byte, off int64) (int, error) { return f(p, off) }

// Open decodes the header of the file read through r. name identifies the
// dataset in cache keys.
func Open(r io.ReaderAt, name string, opts ...Option) (*File, error) {
	return open(context.Background(), func(_ context.Context, p []byte, off int64) (int, error) {
		return r.ReadAt(p, off)
	}, name, nil, opts)
}

// OpenFile memory-maps the file at path.
func OpenFile(path string, opts ...Option) (*File, error) {
	b, err := blobstore.OpenFile(path)
	if err != nil {
		return nil, &dataset.IOError{Err: err}
	}
	f, err := open(context.Background(), b.ReadAt, path, b, opts)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return f, nil
}

// OpenStore opens the blob name of store. Reads after OpenStore returns use
// the context of the ReadBlock call.
func OpenStore(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*File, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, &dataset.IOError{Err: err}
	}
	f, err := open(ctx, b.ReadAt, name, b, opts)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return f, nil
}

func open(ctx context.Context, readAt func(context.Context, []byte, int64) (int, error), name string, closer io.Closer, optFns []Option) (f *File, err error) {
	var opts options
	for _, fn := range optFns {
		fn(&opts)
	}

	src := &source{ctx: ctx, readAt: readAt, rc: opts.controller}

	defer func() {
		if r := recover(); r != nil {
			f, err = nil, &dataset.FormatError{Msg: fmt.Sprintf("corrupt header: %v", r)}
		}
	}()

	cf, err := cdf.Open(src)
	if err != nil {
		if src.err != nil {
			return nil, &dataset.IOError{Err: src.err}
		}
		return nil, &dataset.FormatError{Msg: err.Error()}
	}
	src.ctx = context.Background()

	f = &File{
		name:    name,
		vars:    make(map[string]*variable),
		globals: attributes(cf.Header, ""),
		f:       cf,
		src:     src,
		closer:  closer,
	}
	for _, v := range cf.Header.Variables() {
		typ, ok := storageType(cf.Header.ZeroValue(v, 0))
		if !ok {
			if opts.logger != nil {
				opts.logger.Debug("skipping variable of unsupported type", "dataset", name, "variable", v)
			}
			continue
		}
		f.order = append(f.order, v)
		f.vars[v] = &variable{
			typ:   typ,
			dims:  cf.Header.Dimensions(v),
			shape: cf.Header.Lengths(v),
			attrs: attributes(cf.Header, v),
		}
	}
	return f, nil
}

func storageType(zero any) (dataset.StorageType, bool) {
	switch zero.(type) {
	case []int8:
		return dataset.Byte, true
	case []uint8:
		return dataset.Char, true
	case []int16:
		return dataset.Short, true
	case []int32:
		return dataset.Int, true
	case []float32:
		return dataset.Float, true
	case []float64:
		return dataset.Double, true
	default:
		return 0, false
	}
}

func attributes(h *cdf.Header, v string) map[string]dataset.Attribute {
	out := make(map[string]dataset.Attribute)
	for _, name := range h.Attributes(v) {
		if a, ok := attribute(h.GetAttribute(v, name)); ok {
			out[name] = a
		}
	}
	return out
}

func attribute(val any) (dataset.Attribute, bool) {
	switch x := val.(type) {
	case string:
		return dataset.TextAttribute(trimNUL(x)), true
	case []uint8:
		return dataset.TextAttribute(trimNUL(string(x))), true
	case []int8:
		return dataset.NumericAttribute(dataset.Byte, widen(x)...), true
	case []int16:
		return dataset.NumericAttribute(dataset.Short, widen(x)...), true
	case []int32:
		return dataset.NumericAttribute(dataset.Int, widen(x)...), true
	case []float32:
		return dataset.NumericAttribute(dataset.Float, widen(x)...), true
	case []float64:
		return dataset.NumericAttribute(dataset.Double, x...), true
	default:
		return dataset.Attribute{}, false
	}
}

func trimNUL(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

func widen[T int8 | int16 | int32 | float32](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Name returns the path or blob name the file was opened with.
func (f *File) Name() string { return f.name }

func (f *File) Variables() []string { return append([]string(nil), f.order...) }

func (f *File) Dimensions(name string) []string {
	if v, ok := f.vars[name]; ok {
		return append([]string(nil), v.dims...)
	}
	return nil
}

func (f *File) Rank(name string) int { return len(f.Dimensions(name)) }

func (f *File) Lengths(name string) []int {
	if v, ok := f.vars[name]; ok {
		return append([]int(nil), v.shape...)
	}
	return nil
}

func (f *File) StorageType(name string) dataset.StorageType {
	if v, ok := f.vars[name]; ok {
		return v.typ
	}
	return 0
}

func (f *File) Attribute(name, attr string) (dataset.Attribute, bool) {
	if name == "" {
		a, ok := f.globals[attr]
		return a, ok
	}
	v, ok := f.vars[name]
	if !ok {
		return dataset.Attribute{}, false
	}
	a, ok := v.attrs[attr]
	return a, ok
}

// ReadBlock reads the hyperslab (origin, shape) of a variable.
func (f *File) ReadBlock(ctx context.Context, name string, origin, shape []int) (dataset.Block, error) {
	v, ok := f.vars[name]
	if !ok {
		return dataset.Block{}, fmt.Errorf("%w: %q", dataset.ErrNotFound, name)
	}
	if err := dataset.CheckSlab(v.shape, origin, shape); err != nil {
		var fe *dataset.FormatError
		if errors.As(err, &fe) {
			fe.Variable = name
		}
		return dataset.Block{}, err
	}
	if err := ctx.Err(); err != nil {
		return dataset.Block{}, err
	}

	n := dataset.Volume(shape)
	if n == 0 {
		if v.typ == dataset.Char {
			return dataset.NewTextBlock(shape, nil), nil
		}
		return dataset.NewBlock(v.typ, shape, nil), nil
	}

	buf, err := f.read(ctx, name, origin, shape, n)
	if err != nil {
		return dataset.Block{}, err
	}
	return decode(name, v.typ, shape, buf, n)
}

func (f *File) read(ctx context.Context, name string, origin, shape []int, n int) (buf any, err error) {
	var begin, end []int
	if len(shape) > 0 {
		begin = append([]int(nil), origin...)
		end = make([]int, len(shape))
		for i := range shape {
			end[i] = origin[i] + shape[i]
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil, &dataset.IOError{Variable: name, Err: errors.New("netcdf: file is closed")}
	}

	f.src.ctx, f.src.err = ctx, nil
	defer func() { f.src.ctx = context.Background() }()
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, &dataset.FormatError{Variable: name, Msg: fmt.Sprintf("decoder failure: %v", r)}
		}
	}()

	r := f.f.Reader(name, begin, end)
	buf = r.Zero(n)
	got, err := r.Read(buf)
	if f.src.err != nil {
		return nil, &dataset.IOError{Variable: name, Err: f.src.err}
	}
	if err != nil && !(errors.Is(err, io.EOF) && got == n) {
		return nil, &dataset.FormatError{Variable: name, Msg: err.Error()}
	}
	if got != n {
		return nil, &dataset.FormatError{Variable: name, Msg: fmt.Sprintf("short read: %d of %d values", got, n)}
	}
	return buf, nil
}

func decode(name string, typ dataset.StorageType, shape []int, buf any, n int) (dataset.Block, error) {
	switch x := buf.(type) {
	case []uint8:
		if typ == dataset.Char {
			return dataset.NewTextBlock(shape, x[:n]), nil
		}
		out := make([]float64, n)
		for i, b := range x[:n] {
			out[i] = float64(int8(b))
		}
		return dataset.NewBlock(typ, shape, out), nil
	case []int8:
		return dataset.NewBlock(typ, shape, widen(x[:n])), nil
	case []int16:
		return dataset.NewBlock(typ, shape, widen(x[:n])), nil
	case []int32:
		return dataset.NewBlock(typ, shape, widen(x[:n])), nil
	case []float32:
		return dataset.NewBlock(typ, shape, widen(x[:n])), nil
	case []float64:
		return dataset.NewBlock(typ, shape, append([]float64(nil), x[:n]...)), nil
	default:
		return dataset.Block{}, &dataset.FormatError{Variable: name, Msg: fmt.Sprintf("unexpected buffer type %T", buf)}
	}
}

// Close releases the underlying blob. Blocks already read stay valid.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.f = nil
	if f.closer == nil {
		return nil
	}
	c := f.closer
	f.closer = nil
	return c.Close()
}
