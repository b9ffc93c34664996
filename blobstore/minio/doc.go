// Package minio reads netCDF datasets from MinIO and other S3-compatible
// object stores (Ceph, Garage, SeaweedFS) through the MinIO client.
//
// Every ReadAt is one ranged GET, so a hyperslab read only transfers the
// bytes it needs. Wrap the store in a [blobstore.CachingStore] when the same
// header or coordinate blocks are read repeatedly.
//
//	client, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minio.NewStore(client, "my-bucket", "climate/")
//	f, err := netcdf.OpenStore(ctx, store, "sst.nc")
package minio
