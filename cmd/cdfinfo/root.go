package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/lazycdf"
	"github.com/hupe1980/lazycdf/blobstore"
	"github.com/hupe1980/lazycdf/blobstore/minio"
	"github.com/hupe1980/lazycdf/blobstore/s3"
	"github.com/hupe1980/lazycdf/cache"
	"github.com/hupe1980/lazycdf/codec"
	"github.com/hupe1980/lazycdf/dataset/netcdf"
	"github.com/hupe1980/lazycdf/mathtype"
	"github.com/hupe1980/lazycdf/resource"
	"github.com/spf13/cobra"
)

type config struct {
	memoryLimit   string
	ioLimit       string
	cacheBlocks   string
	cacheCapacity int
	spillDir      string
	charToText    bool
	outerDims     []string
	format        string
	logLevel      string
	region        string
	endpoint      string
	minioSecure   bool
}

// storeOpener returns the store holding a remote dataset.
type storeOpener func(ctx context.Context, cfg *config, bucket string) (blobstore.BlobStore, error)

var storeOpeners = map[string]storeOpener{
	"s3":    openS3,
	"minio": openMinio,
}

func openS3(ctx context.Context, cfg *config, bucket string) (blobstore.BlobStore, error) {
	var opts []s3.Option
	if cfg.region != "" {
		opts = append(opts, s3.WithRegion(cfg.region))
	}
	if cfg.endpoint != "" {
		opts = append(opts, s3.WithEndpoint(cfg.endpoint))
	}
	return s3.New(ctx, bucket, opts...)
}

func openMinio(_ context.Context, cfg *config, bucket string) (blobstore.BlobStore, error) {
	endpoint := cfg.endpoint
	if endpoint == "" {
		endpoint = os.Getenv("MINIO_ENDPOINT")
	}
	if endpoint == "" {
		return nil, errors.New("minio: no endpoint, set --endpoint or MINIO_ENDPOINT")
	}
	client, err := minio.Dial(endpoint, os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), cfg.minioSecure)
	if err != nil {
		return nil, err
	}
	return minio.NewStore(client, bucket, ""), nil
}

// report is what cdfinfo prints for an imported dataset.
type report struct {
	Dataset  string               `json:"dataset"`
	Strategy string               `json:"strategy"`
	Attempts []string             `json:"attempts"`
	Type     string               `json:"type"`
	Detail   mathtype.Description `json:"detail"`

	// PeakMemory is the most memory reserved during the import.
	PeakMemory uint64 `json:"peak_memory_bytes"`
}

func newRootCmd() *cobra.Command {
	cfg := &config{}
	cmd := &cobra.Command{
		Use:   "cdfinfo [flags] <path|s3://bucket/key|minio://bucket/key>",
		Short: "Import a netCDF dataset and print its structure.",
		Long: `cdfinfo opens a netCDF classic dataset, imports it with the default
strategy chain and prints the strategy that succeeded together with the
structural type of the result. Data values are not read unless a strategy
needs them.

Remote datasets are read through a block cache. S3 credentials come from the
default AWS credential chain; MinIO credentials come from MINIO_ACCESS_KEY and
MINIO_SECRET_KEY.`,
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.memoryLimit, "memory-limit", "0", "memory limit for materialized data, e.g. 512MiB (0 = unlimited)")
	flags.StringVar(&cfg.ioLimit, "io-limit", "0", "dataset read rate per second, e.g. 20MB (0 = unlimited)")
	flags.StringVar(&cfg.cacheBlocks, "cache-blocks", "64MiB", "size of the block cache for remote datasets")
	flags.IntVar(&cfg.cacheCapacity, "cache-capacity", lazycdf.DefaultCacheCapacity, "number of sample blocks kept in memory")
	flags.StringVar(&cfg.spillDir, "spill-dir", "", "directory for evicted sample blocks (spill disabled when empty)")
	flags.BoolVar(&cfg.charToText, "char-to-text", false, "import char variables as text")
	flags.StringSliceVar(&cfg.outerDims, "outer-dim", nil, "dimension to place in an outer function (repeatable)")
	flags.StringVar(&cfg.format, "format", "text", "output format: text or json")
	flags.StringVar(&cfg.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&cfg.region, "region", "", "S3 region")
	flags.StringVar(&cfg.endpoint, "endpoint", "", "S3-compatible or MinIO endpoint")
	flags.BoolVar(&cfg.minioSecure, "minio-secure", true, "use TLS for MinIO")
	return cmd
}

func parseBytes(flag, s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return int64(n), nil
}

func run(ctx context.Context, stdout, stderr io.Writer, cfg *config, target string) error {
	if cfg.format != "text" && cfg.format != "json" {
		return fmt.Errorf("--format: unknown format %q", cfg.format)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	memLimit, err := parseBytes("memory-limit", cfg.memoryLimit)
	if err != nil {
		return err
	}
	ioLimit, err := parseBytes("io-limit", cfg.ioLimit)
	if err != nil {
		return err
	}
	blockBytes, err := parseBytes("cache-blocks", cfg.cacheBlocks)
	if err != nil {
		return err
	}

	logger := lazycdf.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   memLimit,
		IOLimitBytesPerSec: ioLimit,
	})

	opts := []lazycdf.Option{
		lazycdf.WithLogger(logger),
		lazycdf.WithResourceController(rc),
		lazycdf.WithCacheCapacity(cfg.cacheCapacity),
		lazycdf.WithCharToText(cfg.charToText),
		lazycdf.WithOuterDimensions(cfg.outerDims...),
	}
	if cfg.spillDir != "" {
		opts = append(opts, lazycdf.WithSpillDir(cfg.spillDir))
	}
	im, err := lazycdf.New(opts...)
	if err != nil {
		return err
	}
	defer im.Close()

	f, err := openDataset(ctx, cfg, target, rc, blockBytes, logger.Logger)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := im.Import(ctx, f)
	if err != nil {
		return err
	}
	defer res.Close()

	rep := report{
		Dataset:  f.Name(),
		Strategy: res.Strategy,
		Attempts: res.Attempts,
		Type:     res.Type().String(),
		Detail:   mathtype.Describe(res.Type()),

		PeakMemory: uint64(rc.PeakMemoryUsage()),
	}
	return write(stdout, cfg.format, rep)
}

// openDataset opens a local path or a scheme://bucket/key URL.
func openDataset(ctx context.Context, cfg *config, target string, rc *resource.Controller, blockBytes int64, logger *slog.Logger) (*netcdf.File, error) {
	ncOpts := []netcdf.Option{netcdf.WithController(rc), netcdf.WithLogger(logger)}

	scheme, rest, ok := strings.Cut(target, "://")
	if !ok {
		return netcdf.OpenFile(target, ncOpts...)
	}
	opener, ok := storeOpeners[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%s: expected %s://bucket/key", target, scheme)
	}
	store, err := opener(ctx, cfg, bucket)
	if err != nil {
		return nil, err
	}
	cached := blobstore.NewCachingStore(store, cache.NewBlocks(blockBytes, rc), blobstore.DefaultBlockSize)
	return netcdf.OpenStore(ctx, cached, key, ncOpts...)
}

func write(w io.Writer, format string, rep report) error {
	if format == "json" {
		b, err := codec.MarshalIndent(codec.Default, rep)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	_, err := fmt.Fprintf(w, "dataset:  %s\nstrategy: %s (attempts: %s)\nmemory:   %s peak\ntype:     %s\n",
		rep.Dataset, rep.Strategy, strings.Join(rep.Attempts, ", "), humanize.IBytes(rep.PeakMemory), rep.Type)
	return err
}
