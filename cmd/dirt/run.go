package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/dirt"
	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/engine"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/manifest"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/metrics/prom"
	"github.com/hupe1980/dirt/report"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/selector"
	"github.com/hupe1980/dirt/table"
	"github.com/hupe1980/dirt/targets"
)

type runFlags struct {
	in, out    string
	targets    string
	topN       int
	control    string
	all        string
	geneColumn string

	blocks    int
	blockSize int
	workers   int
	memLimit  int64
	ioLimit   int64
	compress  string

	merged    string
	histogram string

	logFormat   string
	logLevel    string
	metricsAddr string

	stores storeFlags
}

func runCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f runFlags
	fs := newFlagSet("run", stderr)
	fs.StringVar(&f.in, "in", "", "expression CSV (local path, or key in the bucket); .zst/.lz4 are decompressed")
	fs.StringVar(&f.out, "out", "", "output directory, or key prefix for remote stores")
	fs.StringVar(&f.targets, "targets", "*", `target rows, e.g. "0-4999,7000" or "0:5000"`)
	fs.IntVar(&f.topN, "top", 10, "candidates per target")
	fs.StringVar(&f.control, "control", "C1:C9", "control sample range START:END")
	fs.StringVar(&f.all, "all", "C1:T9", "ratio sample range START:END")
	fs.StringVar(&f.geneColumn, "gene-column", table.DefaultGeneColumn, "header of the gene identifier column")
	fs.IntVar(&f.blocks, "blocks", 2, "number of result blocks")
	fs.IntVar(&f.blockSize, "block-size", 0, "targets per block (overrides -blocks)")
	fs.IntVar(&f.workers, "workers", 0, "concurrent blocks (default GOMAXPROCS)")
	fs.Int64Var(&f.memLimit, "memory-limit", 0, "bytes of result memory held at once (0 = unlimited)")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "read/write throughput in bytes per second (0 = unlimited)")
	fs.StringVar(&f.compress, "compress", "none", "block compression: none, zstd or lz4")
	fs.StringVar(&f.merged, "merged", "", "also write all blocks merged into this file of the output")
	fs.StringVar(&f.histogram, "histogram", "", "write a best-NDIV histogram (.png, .svg, .pdf) into the output")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	f.stores.register(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if f.in == "" || f.out == "" {
		return fmt.Errorf("%w: -in and -out are required", errUsage)
	}
	if err := f.stores.validate(); err != nil {
		return err
	}

	ranges, err := parseRanges(f.control, f.all)
	if err != nil {
		return err
	}
	algo, err := compress.Parse(f.compress)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	logger, err := newLogger(f.logFormat, f.logLevel, stderr)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers:         int64(f.workers),
		MemoryLimitBytes:   f.memLimit,
		IOLimitBytesPerSec: f.ioLimit,
	})

	inStore, inName, err := f.stores.input(ctx, f.in)
	if err != nil {
		return err
	}
	outStore, err := f.stores.output(ctx, f.out)
	if err != nil {
		return err
	}

	start := time.Now()
	m, err := table.LoadMatrix(ctx, inStore, inName, table.LoadOptions{
		ReadOptions: table.ReadOptions{GeneColumn: f.geneColumn},
		Resources:   rc,
	})
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "matrix loaded",
		"input", f.in,
		"genes", m.Rows(),
		"samples", m.Cols(),
		"elapsed", time.Since(start),
	)

	set, err := targets.Parse(f.targets, m.Rows())
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	collector, shutdown, err := metricsCollector(f.metricsAddr, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	finder, err := dirt.New(m,
		dirt.WithTopN(f.topN),
		dirt.WithRangeConfig(ranges),
		dirt.WithBlocks(f.blocks),
		dirt.WithBlockSize(f.blockSize),
		dirt.WithLogger(logger.WithTopN(f.topN)),
		dirt.WithMetricsCollector(collector),
		dirt.WithResourceController(rc),
	)
	if err != nil {
		return err
	}

	sink := engine.NewStoreSink(outStore, finder.Engine().NewManifest(f.in), engine.StoreSinkOptions{
		Compression: algo,
		Resources:   rc,
	})

	var (
		records *engine.Collector
		target  engine.Sink = sink
	)
	if f.histogram != "" {
		records = engine.NewCollector()
		target = engine.Tee(sink, records)
	}

	stats, err := finder.Run(ctx, set, target)
	if err != nil {
		return err
	}

	mf, err := sink.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit manifest: %w", err)
	}

	if f.merged != "" {
		if err := writeMerged(ctx, outStore, mf, f.merged); err != nil {
			return err
		}
	}
	if f.histogram != "" {
		if err := writeHistogram(ctx, outStore, records.Records(), f.histogram); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "%d targets, %d records in %d blocks (%d skipped, %d degenerate), manifest %s-%06d.json\n",
		stats.Targets, stats.Records, stats.Blocks, stats.Skipped, stats.Degenerate, manifest.ManifestFileName, mf.ID)
	return nil
}

// parseRanges parses START:END control and all ranges.
func parseRanges(control, all string) (matrix.RangeConfig, error) {
	cs, ce, ok := strings.Cut(control, ":")
	if !ok {
		return matrix.RangeConfig{}, fmt.Errorf("%w: -control %q is not START:END", errUsage, control)
	}
	as, ae, ok := strings.Cut(all, ":")
	if !ok {
		return matrix.RangeConfig{}, fmt.Errorf("%w: -all %q is not START:END", errUsage, all)
	}
	return matrix.RangeConfig{
		ControlStart: strings.TrimSpace(cs),
		ControlEnd:   strings.TrimSpace(ce),
		AllStart:     strings.TrimSpace(as),
		AllEnd:       strings.TrimSpace(ae),
	}, nil
}

// metricsCollector returns a Prometheus collector served on addr, or an
// in-memory collector when addr is empty.
func metricsCollector(addr string, logger *dirt.Logger) (dirt.MetricsCollector, func(), error) {
	if addr == "" {
		return &dirt.BasicMetricsCollector{}, func() {}, nil
	}

	reg := prometheus.NewRegistry()
	c, err := prom.NewCollector(reg)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return c, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

func writeMerged(ctx context.Context, store blobstore.BlobStore, mf *manifest.Manifest, name string) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	cw, err := compress.NewWriter(w, compress.FromPath(name))
	if err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	if _, err := manifest.Merge(ctx, store, mf, cw); err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	if err := cw.Close(); err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	return w.Close()
}

func writeHistogram(ctx context.Context, store blobstore.BlobStore, records []selector.Candidate, name string) error {
	p, err := report.Histogram(records, 0)
	if errors.Is(err, report.ErrNoScores) {
		return nil
	}
	if err != nil {
		return err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(p, w, name); err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	return w.Close()
}
