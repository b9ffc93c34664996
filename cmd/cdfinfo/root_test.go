package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lazycdf/blobstore"
	"github.com/hupe1980/lazycdf/codec"
	"github.com/hupe1980/lazycdf/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "th.nc")
	require.NoError(t, testutil.WriteNetCDF(path, testutil.TempHumidity(4)))
	return path
}

func TestRoot_Text(t *testing.T) {
	out, err := execute(t, writeFixture(t))
	require.NoError(t, err)

	assert.Contains(t, out, "strategy: default/in-memory (attempts: default/in-memory)")
	assert.Contains(t, out, "type:     (time -> ((lon, lat) -> (temp, humidity)))")
}

func TestRoot_JSONWithMemoryLimit(t *testing.T) {
	out, err := execute(t, "--format", "json", "--memory-limit", "1KiB", "--spill-dir", t.TempDir(), writeFixture(t))
	require.NoError(t, err)

	var rep report
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "default/disk", rep.Strategy)
	assert.Equal(t, []string{"default/in-memory", "default/disk"}, rep.Attempts)
	assert.Equal(t, "function", rep.Detail.Kind)
	require.Len(t, rep.Detail.Domain, 1)
	assert.Equal(t, "time", rep.Detail.Domain[0].Name)
	assert.Positive(t, rep.PeakMemory)
}

func TestRoot_RemoteStore(t *testing.T) {
	raw, err := os.ReadFile(writeFixture(t))
	require.NoError(t, err)

	mem := blobstore.NewMemoryStore()
	mem.Put("obs/th.nc", raw)
	storeOpeners["mem"] = func(context.Context, *config, string) (blobstore.BlobStore, error) {
		return mem, nil
	}
	t.Cleanup(func() { delete(storeOpeners, "mem") })

	out, err := execute(t, "--cache-blocks", "1MiB", "mem://bucket/obs/th.nc")
	require.NoError(t, err)
	assert.Contains(t, out, "(time -> ((lon, lat) -> (temp, humidity)))")
}

func TestRoot_Errors(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)

	_, err = execute(t, "--format", "yaml", writeFixture(t))
	assert.ErrorContains(t, err, "--format")

	_, err = execute(t, "--memory-limit", "lots", writeFixture(t))
	assert.ErrorContains(t, err, "--memory-limit")

	_, err = execute(t, "--log-level", "loud", writeFixture(t))
	assert.ErrorContains(t, err, "--log-level")

	_, err = execute(t, "gopher://bucket/key")
	assert.ErrorContains(t, err, "unsupported scheme")

	_, err = execute(t, "s3://bucket")
	assert.ErrorContains(t, err, "expected s3://bucket/key")

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.nc"))
	assert.Error(t, err)
}
