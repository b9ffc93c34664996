package lazycdf

import (
	"context"
	"errors"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/data"
	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/dataset/netcdf"
	"github.com/hupe1980/lazycdf/materialize"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/resource"
	"github.com/hupe1980/lazycdf/view"
	"github.com/hupe1980/lazycdf/virtual"
)

// Importer turns datasets into data objects, degrading through its strategy
// chain when memory runs out. An Importer is safe for concurrent use.
type Importer struct {
	opts      options
	cache     *cache.Samples
	ownsCache bool

	closeOnce sync.Once
	closeErr  error
}

// New creates an Importer.
func New(optFns ...Option) (*Importer, error) {
	opts := options{
		chain:            materialize.DefaultChain(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		cacheCapacity:    DefaultCacheCapacity,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.chain.Validate(); err != nil {
		return nil, err
	}

	im := &Importer{opts: opts, cache: opts.cache}
	if im.cache == nil {
		var spill cache.Spill[[]float64]
		if opts.spill != nil {
			cfg := *opts.spill
			if cfg.Controller == nil {
				cfg.Controller = opts.controller
			}
			if cfg.Logger == nil {
				cfg.Logger = opts.logger.Logger
			}
			ds, err := cache.NewDiskSpill(cfg)
			if err != nil {
				return nil, err
			}
			spill = ds
		}
		im.cache = cache.NewSamples(opts.cacheCapacity, opts.controller, spill)
		im.ownsCache = true
	}
	return im, nil
}

// Result is the outcome of a successful import.
type Result struct {
	// Data is the single top-level item, or a tuple of all top-level items.
	Data data.Data
	// Strategy names the strategy that produced Data.
	Strategy string
	// Attempts lists every strategy tried, in order.
	Attempts []string

	session *materialize.Session
}

// Type returns the math type of the imported data.
func (r *Result) Type() mathtype.Type { return r.Data.Type() }

// Close returns the memory reserved for the data to the resource controller.
// Lazy data stays readable afterwards.
func (r *Result) Close() error {
	if r.session != nil {
		r.session.Release()
	}
	return nil
}

// Cache returns the sample cache backing lazy flat fields.
func (im *Importer) Cache() *cache.Samples { return im.cache }

// Controller returns the configured resource controller, nil if unlimited.
func (im *Importer) Controller() *resource.Controller { return im.opts.controller }

// Strategies returns the names of the strategy chain.
func (im *Importer) Strategies() []string { return im.opts.chain.Names() }

// Import materializes r with the first strategy that fits in memory.
//
// Only memory exhaustion moves the import to the next strategy; every other
// failure is returned immediately. When the last strategy also exhausts
// memory, an *ExhaustedError is returned.
func (im *Importer) Import(ctx context.Context, r dataset.Reader) (*Result, error) {
	start := time.Now()
	logger := im.opts.logger.WithDataset(r.Name())

	res, err := im.importChain(ctx, r, logger)

	strategy := ""
	if res != nil {
		strategy = res.Strategy
	}
	im.opts.metricsCollector.RecordImport(strategy, time.Since(start), err)
	logger.LogImport(ctx, strategy, time.Since(start), err)
	return res, err
}

// ImportFile opens a netCDF file and imports it. The file stays open while
// lazy data may still read from it; call the returned close function when
// the result is no longer used.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, func() error, error) {
	f, err := netcdf.OpenFile(path, netcdf.WithController(im.opts.controller), netcdf.WithLogger(im.opts.logger.Logger))
	if err != nil {
		return nil, nil, err
	}
	res, err := im.Import(ctx, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return res, func() error {
		return errors.Join(res.Close(), f.Close())
	}, nil
}

func (im *Importer) importChain(ctx context.Context, r dataset.Reader, logger *Logger) (*Result, error) {
	v := view.New(r, im.viewOptions(logger)...)
	chain := im.opts.chain

	var (
		attempts []string
		lastErr  error
	)
	for i, st := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := st.String()
		attempts = append(attempts, name)

		stageStart := time.Now()
		d, sess, err := im.attempt(ctx, v, st, logger)
		im.opts.metricsCollector.RecordStage(name, time.Since(stageStart), err)
		logger.LogStage(ctx, name, time.Since(stageStart), err)

		if err == nil {
			return &Result{Data: d, Strategy: name, Attempts: attempts, session: sess}, nil
		}
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		if !materialize.IsMemoryExhausted(err) {
			return nil, translateError(r.Name(), name, err)
		}

		lastErr = err
		// Give the discarded attempt's memory back before the next stage.
		runtime.GC()
		debug.FreeOSMemory()

		if i+1 < len(chain) {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			next := chain[i+1].String()
			im.opts.metricsCollector.RecordFallback(name, next)
			logger.LogFallback(ctx, name, next, ms.HeapAlloc)
		}
	}
	return nil, &ExhaustedError{Dataset: r.Name(), Strategies: attempts, cause: lastErr}
}

func (im *Importer) attempt(ctx context.Context, v *view.View, st materialize.Strategy, logger *Logger) (data.Data, *materialize.Session, error) {
	tup, err := v.Build(ctx, st.Merger)
	if err != nil {
		return nil, nil, err
	}
	if tup.Len() == 0 {
		return nil, nil, ErrNoData
	}

	var root virtual.Node = tup
	if tup.Len() == 1 {
		root = tup.Item(0)
	}

	sess := materialize.NewSession(im.opts.controller, im.cache, logger.Logger)
	d, err := st.Factory.Materialize(ctx, root, sess)
	if err != nil {
		sess.Release()
		return nil, nil, err
	}
	return d, sess, nil
}

func (im *Importer) viewOptions(logger *Logger) []view.Option {
	opts := []view.Option{
		view.WithCharToText(im.opts.charToText),
		view.WithLogger(logger.Logger),
	}
	if len(im.opts.outerDimensions) > 0 {
		opts = append(opts, view.WithOuterDimensions(im.opts.outerDimensions...))
	}
	if im.opts.inferrer != nil {
		opts = append(opts, view.WithInferrer(im.opts.inferrer))
	}
	return opts
}

// Close releases the sample cache and removes spill files.
// A cache passed with WithCache is left open.
func (im *Importer) Close() error {
	im.closeOnce.Do(func() {
		if im.ownsCache {
			im.closeErr = im.cache.Close()
		}
	})
	return im.closeErr
}
