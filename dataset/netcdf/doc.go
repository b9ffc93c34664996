// Package netcdf reads netCDF classic and 64-bit offset files as a dataset.Reader.
//
// Files can be opened from any io.ReaderAt, from the local file system
// (memory mapped) or from a blobstore.BlobStore such as S3 or MinIO:
//
//	f, err := netcdf.OpenFile("sst.nc")
//	if err != nil { ... }
//	defer f.Close()
//
// Reads are serialized per file and may be throttled by a resource.Controller.
// BYTE variables are signed, CHAR variables are returned as text blocks.
package netcdf
