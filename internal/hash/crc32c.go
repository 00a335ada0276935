package hash

import (
	"hash"
	"hash/crc32"
	"io"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Uses hardware acceleration when available (SSE4.2, ARM CRC).
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Writer checksums everything written through it.
type Writer struct {
	w io.Writer
	h hash.Hash32
	n int64
}

// NewWriter returns a Writer forwarding to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

// Write implements io.Writer. Only bytes accepted by the underlying writer
// are checksummed.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.h.Write(p[:n])
	w.n += int64(n)
	return n, err
}

// Sum32 returns the checksum of the bytes written so far.
func (w *Writer) Sum32() uint32 { return w.h.Sum32() }

// Size returns the number of bytes written so far.
func (w *Writer) Size() int64 { return w.n }

// Verify reads r to the end and reports whether its checksum equals want.
func Verify(r io.Reader, want uint32) (bool, error) {
	h := NewCRC32C()
	if _, err := io.Copy(h, r); err != nil {
		return false, err
	}
	return h.Sum32() == want, nil
}
