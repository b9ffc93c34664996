package lazycdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/lazycdf/dataset"
	"github.com/hupe1980/lazycdf/indicial"
	"github.com/hupe1980/lazycdf/materialize"
	"github.com/hupe1980/lazycdf/virtual"
)

var (
	// ErrContextMismatch is returned when an indicial context has more indices
	// than the variable it addresses has dimensions.
	ErrContextMismatch = indicial.ErrContextMismatch

	// ErrTypeResolution is returned when the type of a variable cannot be inferred.
	ErrTypeResolution = virtual.ErrTypeResolution

	// ErrBadFormat is returned for malformed dataset content.
	ErrBadFormat = dataset.ErrBadFormat

	// ErrMemoryExhausted is returned when a strategy runs out of memory.
	ErrMemoryExhausted = materialize.ErrMemoryExhausted

	// ErrIO is returned when reading the underlying store fails.
	ErrIO = dataset.ErrIO

	// ErrStrategiesExhausted is returned when every strategy of the chain ran out of memory.
	ErrStrategiesExhausted = errors.New("lazycdf: all materialization strategies exhausted memory")

	// ErrNoData is returned for datasets without data variables.
	ErrNoData = errors.New("lazycdf: dataset has no data variables")
)

// ErrorKind classifies import failures.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindContextMismatch
	KindTypeResolution
	KindBadFormat
	KindMemoryExhausted
	KindIO
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindContextMismatch:
		return "context mismatch"
	case KindTypeResolution:
		return "type resolution"
	case KindBadFormat:
		return "bad format"
	case KindMemoryExhausted:
		return "memory exhausted"
	case KindIO:
		return "io failure"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify returns the kind of err. Type resolution wins over the cause it wraps.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrMemoryExhausted):
		return KindMemoryExhausted
	case errors.Is(err, ErrTypeResolution):
		return KindTypeResolution
	case errors.Is(err, ErrContextMismatch):
		return KindContextMismatch
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrBadFormat):
		return KindBadFormat
	default:
		return KindUnknown
	}
}

// ImportError reports the strategy an import failed under.
//
// The original underlying error can be accessed via errors.Unwrap.
type ImportError struct {
	Dataset  string
	Strategy string
	Kind     ErrorKind
	cause    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("lazycdf: import of %q failed under %s (%s): %v", e.Dataset, e.Strategy, e.Kind, e.cause)
}

func (e *ImportError) Unwrap() error { return e.cause }

// ExhaustedError is returned when the last strategy also ran out of memory.
// It matches both ErrStrategiesExhausted and ErrMemoryExhausted.
type ExhaustedError struct {
	Dataset    string
	Strategies []string
	cause      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("lazycdf: import of %q exhausted memory under every strategy [%s]: %v",
		e.Dataset, strings.Join(e.Strategies, ", "), e.cause)
}

func (e *ExhaustedError) Unwrap() []error { return []error{ErrStrategiesExhausted, e.cause} }

func translateError(dataset, strategy string, err error) error {
	if err == nil {
		return nil
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		return err
	}
	return &ImportError{Dataset: dataset, Strategy: strategy, Kind: Classify(err), cause: err}
}
