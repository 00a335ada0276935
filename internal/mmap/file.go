package mmap

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when a closed File is read.
	ErrClosed = errors.New("mmap: file is closed")
	// ErrTooLarge is returned when a file does not fit in the address space.
	ErrTooLarge = errors.New("mmap: file too large")
	// ErrNegativeOffset is returned by ReadAt for offsets below zero.
	ErrNegativeOffset = errors.New("mmap: negative offset")
)

// Hint tells the kernel how a mapping will be read.
type Hint uint8

const (
	// Normal drops any earlier hint.
	Normal Hint = iota
	// Sequential favours aggressive read-ahead, as for a CSV scan.
	Sequential
	// WillNeed asks for the pages to be faulted in early.
	WillNeed
)

// File is a read-only mapping of a whole file.
type File struct {
	data   []byte
	closed atomic.Bool
}

// Open maps the file at path. Empty files yield a File with no data and
// need no mapping.
func Open(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// The mapping outlives the descriptor.
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return &File{}, nil
	}
	if info.Size() > math.MaxInt {
		return nil, ErrTooLarge
	}

	data, err := mapFile(fd, int(info.Size()))
	if err != nil {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: err}
	}
	return &File{data: data}, nil
}

// Len returns the mapped size in bytes.
func (f *File) Len() int { return len(f.data) }

// Bytes returns the mapped bytes, or nil after Close. The slice must not be
// used once Close has been called.
func (f *File) Bytes() []byte {
	if f.closed.Load() {
		return nil
	}
	return f.data
}

// Reader returns a reader over the mapped bytes.
func (f *File) Reader() *bytes.Reader {
	return bytes.NewReader(f.Bytes())
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Advise passes h to the kernel where the platform supports it.
func (f *File) Advise(h Hint) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if len(f.data) == 0 {
		return nil
	}
	return advise(f.data, h)
}

// Close releases the mapping. Calling it again is a no-op.
func (f *File) Close() error {
	if f.closed.Swap(true) || len(f.data) == 0 {
		return nil
	}
	return unmapFile(f.data)
}
