package lazycdf

import (
	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/infer"
	"github.com/hupe1980/lazycdf/materialize"
	"github.com/hupe1980/lazycdf/resource"
)

// DefaultCacheCapacity is the number of sample blocks the shared cache keeps
// resident when no capacity is configured.
const DefaultCacheCapacity = 10

type options struct {
	chain            materialize.Chain
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller
	cacheCapacity    int
	cache            *cache.Samples
	spill            *cache.SpillConfig
	charToText       bool
	outerDimensions  []string
	inferrer         infer.Inferrer
}

// Option configures an Importer.
type Option func(*options)

// WithStrategies replaces the materialization chain. Strategies are tried in
// order; a later one is only used when an earlier one exhausted memory.
func WithStrategies(chain ...materialize.Strategy) Option {
	return func(o *options) {
		o.chain = append(materialize.Chain(nil), chain...)
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController sets the controller that bounds memory, background
// spill writes and read throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMemoryLimit is a shortcut for a controller with only a memory limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: bytes})
	}
}

// WithCacheCapacity sets the number of sample blocks kept resident for lazy
// flat fields.
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.cacheCapacity = n
	}
}

// WithCache shares an existing sample cache between importers.
// The importer does not close a shared cache.
func WithCache(c *cache.Samples) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithSpill keeps blocks evicted from the sample cache in compressed files.
func WithSpill(cfg cache.SpillConfig) Option {
	return func(o *options) {
		o.spill = &cfg
	}
}

// WithSpillDir is WithSpill with default settings.
func WithSpillDir(dir string) Option {
	return WithSpill(cache.SpillConfig{Dir: dir})
}

// WithCharToText imports char variables of rank <= 2 as text.
func WithCharToText(enabled bool) Option {
	return func(o *options) {
		o.charToText = enabled
	}
}

// WithOuterDimensions names dimensions that become the domain of an outer
// field in addition to dimensions with time units.
func WithOuterDimensions(names ...string) Option {
	return func(o *options) {
		o.outerDimensions = append(o.outerDimensions, names...)
	}
}

// WithInferrer replaces attribute-convention type inference.
func WithInferrer(inf infer.Inferrer) Option {
	return func(o *options) {
		o.inferrer = inf
	}
}
