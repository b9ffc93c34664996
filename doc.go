// Package lazycdf imports gridded scientific datasets into an abstract
// mathematical data model of scalars, tuples and functions.
//
// A dataset is read through the dataset.Reader interface; the netCDF classic
// format is provided by the dataset/netcdf package. Variables become typed
// leaves, coordinate variables become sampling domains, and leaves sharing a
// domain are merged into one function. The merged tree is then materialized
// by a strategy. Strategies are tried in order, and a later strategy is only
// used when an earlier one exhausted the memory budget:
//
//	default/in-memory  nested fields, all samples resident
//	default/disk       nested fields, flat parts read lazily
//	flat/disk          flat fields kept unmerged, read lazily
//
// # Quick Start
//
//	im, _ := lazycdf.New(lazycdf.WithMemoryLimit(512 << 20))
//	defer im.Close()
//
//	res, release, err := im.ImportFile(ctx, "ocean.nc")
//	if err != nil {
//	    return err
//	}
//	defer release()
//
//	fmt.Println(res.Type()) // (time -> ((lon, lat) -> (temp, salinity)))
//
// # Lazy Data
//
// Flat fields produced by the disk factories read their samples on access.
// Reads go through a shared LRU cache of sample blocks; blocks evicted from it
// can be kept in compressed spill files with WithSpillDir.
//
// # Errors
//
// Failures can be tested with errors.Is against ErrContextMismatch,
// ErrTypeResolution, ErrBadFormat, ErrMemoryExhausted, ErrIO,
// ErrStrategiesExhausted and ErrNoData. Classify maps an error to its kind.
//
// # Remote Datasets
//
// The blobstore package opens datasets from local files, S3 and MinIO:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("climate/"))
//	f, _ := netcdf.OpenStore(ctx, store, "sst.nc")
//	res, _ := im.Import(ctx, f)
package lazycdf
