package minio

import (
	"bytes"
	"io"
	"testing"

	"github.com/hupe1980/lazycdf/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	const bucket = "test-lazycdf"

	client, err := Dial("localhost:9000", "minioadmin", "minioadmin", false)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := t.Context()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("CDF\x01 minio dataset blob")
	_, err = client.PutObject(ctx, bucket, "test-prefix/sst.nc", bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.RemoveObject(ctx, bucket, "test-prefix/sst.nc", minio.RemoveObjectOptions{})
	})

	store := NewStore(client, bucket, "test-prefix/")

	blob, err := store.Open(ctx, "sst.nc")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))

	n, err = blob.ReadAt(ctx, make([]byte, 10), int64(len(data)-4))
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "sst.nc")

	_, err = store.Open(ctx, "missing.nc")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
