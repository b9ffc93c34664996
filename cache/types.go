// Package cache provides bounded block caches shared by lazily materialized data.
//
// An LRU holds immutable values under structured keys. Concurrent misses on the same
// key are collapsed into a single load, failed loads leave no entry behind, and
// memory held by entries is accounted against a resource.Controller. Evicted sample
// blocks can be spilled to local disk in compressed form and restored on the next miss.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Kind is used to separate key spaces.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSamples      // vetted float64 samples of a variable block
	KindBlob         // raw bytes of a blob store block
)

// Key identifies an immutable cached block.
type Key struct {
	Kind Kind
	// Source identifies the dataset or blob.
	Source string
	// Name is the variable name, empty for blob blocks.
	Name string
	// Block identifies the block within the source, e.g. origin and shape.
	Block string
}

// SampleKey keys the samples of variable in the hyperslab (origin, shape).
func SampleKey(source, variable string, origin, shape []int) Key {
	return Key{Kind: KindSamples, Source: source, Name: variable, Block: joinInts(origin) + "/" + joinInts(shape)}
}

// BlobKey keys the block at offset of a blob.
func BlobKey(path string, offset int64) Key {
	return Key{Kind: KindBlob, Source: path, Block: strconv.FormatInt(offset, 10)}
}

// String encodes every field, so distinct keys never share a string.
func (k Key) String() string {
	return fmt.Sprintf("%d:%q:%q:%q", k.Kind, k.Source, k.Name, k.Block)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// Spill is a second cache level that receives evicted values.
type Spill[V any] interface {
	Get(ctx context.Context, key Key) (V, bool)
	// Put may store asynchronously and may drop the value.
	Put(ctx context.Context, key Key, v V)
	Invalidate(predicate func(Key) bool)
	Close() error
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits       int64
	Misses     int64
	Loads      int64
	LoadErrors int64
	Evictions  int64
	SpillHits  int64
	Entries    int
	Bytes      int64
}
