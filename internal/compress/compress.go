// Package compress wraps result and matrix streams in zstd or lz4 framing,
// chosen by file suffix.
package compress

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a stream compression format.
type Algorithm uint8

const (
	// None passes data through unchanged.
	None Algorithm = iota
	// Zstd uses zstd frames (better ratio, good for archived runs).
	Zstd
	// LZ4 uses lz4 frames (fast, good for intermediate blocks).
	LZ4
)

// ErrUnknownAlgorithm is returned for unrecognized algorithm names.
var ErrUnknownAlgorithm = errors.New("compress: unknown algorithm")

// Parse maps a flag value ("", "none", "zstd", "zst", "lz4") to an Algorithm.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "none":
		return None, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// FromPath returns the algorithm implied by the suffix of p.
func FromPath(p string) Algorithm {
	switch path.Ext(p) {
	case ".zst":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// Ext returns the file suffix for a, including the dot, or "" for None.
func (a Algorithm) Ext() string {
	switch a {
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

func (a Algorithm) String() string {
	switch a {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

var zstdEncoderPool sync.Pool

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

type zstdWriter struct {
	*zstd.Encoder
}

func (z zstdWriter) Close() error {
	err := z.Encoder.Close()
	z.Encoder.Reset(nil)
	zstdEncoderPool.Put(z.Encoder)
	return err
}

// NewWriter wraps w. Closing the returned writer flushes the final frame but
// does not close w.
func NewWriter(w io.Writer, a Algorithm) (io.WriteCloser, error) {
	switch a {
	case None:
		return nopWriteCloser{w}, nil
	case Zstd:
		enc, err := getZstdEncoder(w)
		if err != nil {
			return nil, err
		}
		return zstdWriter{enc}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, a)
	}
}

// NewReader wraps r. Closing the returned reader releases decoder state but
// does not close r.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None:
		return io.NopCloser(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return &lz4Reader{r: lz4.NewReader(r)}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, a)
	}
}

// lz4Reader keeps returning io.EOF once the stream is drained; the
// underlying reader reports a state error on reads after the last frame.
type lz4Reader struct {
	r   *lz4.Reader
	eof bool
}

func (l *lz4Reader) Read(p []byte) (int, error) {
	if l.eof {
		return 0, io.EOF
	}
	n, err := l.r.Read(p)
	if err == io.EOF {
		l.eof = true
	}
	return n, err
}

func (l *lz4Reader) Close() error { return nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
