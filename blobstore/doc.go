// Package blobstore provides read access to dataset files wherever they live.
//
// BlobStore opens immutable blobs by name. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system with mmap
//   - MemoryStore: in-memory blobs for tests
//   - s3.Store: Amazon S3 range reads
//   - minio.Store: MinIO and other S3-compatible services
//
// CachingStore wraps any BlobStore with a block cache, which keeps repeated
// header and slab reads of remote datasets off the network.
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Most dataset decoders expect an io.ReaderAt; NewReaderAt binds a Blob to a
// context for that purpose.
package blobstore
