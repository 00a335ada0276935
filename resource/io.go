package resource

import (
	"context"
	"io"
)

// Reader returns r throttled by the IO limit. Bytes are charged after
// they are read. Without a limit r is returned unchanged.
func (c *Controller) Reader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &throttledReader{ctx: ctx, c: c, r: r}
}

// Writer returns w throttled by the IO limit. Bytes are charged before
// they are written. Without a limit w is returned unchanged.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &throttledWriter{ctx: ctx, c: c, w: w}
}

type throttledReader struct {
	ctx context.Context
	c   *Controller
	r   io.Reader
}

func (t *throttledReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 {
		return n, err
	}
	if werr := t.c.AcquireIO(t.ctx, n); werr != nil {
		return n, werr
	}
	return n, err
}

type throttledWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	if err := t.c.AcquireIO(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.w.Write(p)
}
