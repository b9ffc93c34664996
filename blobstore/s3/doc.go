// Package s3 provides a read-only S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("climate/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	f, err := netcdf.OpenStore(ctx, store, "sst.nc")
//
// # Features
//
//   - Range reads, so hyperslab reads fetch only the bytes they need
//   - Automatic pagination for listing
//   - Configurable prefix
package s3
