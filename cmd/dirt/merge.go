package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/manifest"
)

func mergeCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		out     string
		dst     string
		version uint64
		stores  storeFlags
	)
	fs := newFlagSet("merge", stderr)
	fs.StringVar(&out, "out", "", "output directory, or key prefix for remote stores, of the run")
	fs.StringVar(&dst, "o", "-", "local file to write the merged CSV to; .zst/.lz4 are compressed; - is stdout")
	fs.Uint64Var(&version, "version", 0, "manifest version to merge (default CURRENT)")
	stores.register(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if out == "" {
		return fmt.Errorf("%w: -out is required", errUsage)
	}
	if err := stores.validate(); err != nil {
		return err
	}

	bs, err := stores.output(ctx, out)
	if err != nil {
		return err
	}
	ms := manifest.NewStore(bs)
	mf, err := ms.LoadVersion(ctx, version)
	if err != nil {
		return err
	}

	if dst == "-" {
		_, err := ms.Merge(ctx, mf, stdout)
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	cw, err := compress.NewWriter(f, compress.FromPath(dst))
	if err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	if _, err := ms.Merge(ctx, mf, cw); err != nil {
		_ = cw.Close()
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := cw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
