package manifest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/internal/hash"
	"github.com/hupe1980/dirt/table"
)

// Merge writes the blocks of m to w in block order as one result CSV with a
// single header line. It returns the number of bytes written.
func Merge(ctx context.Context, bs blobstore.BlobStore, m *Manifest, w io.Writer) (int64, error) {
	var header bytes.Buffer
	hw := table.NewWriter(&header, m.Columns)
	if err := hw.WriteHeader(); err != nil {
		return 0, err
	}
	if err := hw.Flush(); err != nil {
		return 0, err
	}

	n, err := w.Write(header.Bytes())
	written := int64(n)
	if err != nil {
		return written, err
	}

	for _, b := range m.Blocks {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := copyBlock(ctx, bs, b, header.Bytes(), w)
		written += n
		if err != nil {
			return written, fmt.Errorf("manifest: block %d (%s): %w", b.Seq, b.Name, err)
		}
	}
	return written, nil
}

// Merge writes the blocks of m from the store's blob store to w.
func (s *Store) Merge(ctx context.Context, m *Manifest, w io.Writer) (int64, error) {
	return Merge(ctx, s.store, m, w)
}

func copyBlock(ctx context.Context, bs blobstore.BlobStore, b BlockInfo, header []byte, w io.Writer) (int64, error) {
	data, err := blobstore.ReadAll(ctx, bs, b.Name)
	if err != nil {
		return 0, err
	}
	if b.Size > 0 && int64(len(data)) != b.Size {
		return 0, fmt.Errorf("%w: size %d, recorded %d", ErrChecksumMismatch, len(data), b.Size)
	}
	if sum := hash.CRC32C(data); sum != b.CRC32C {
		return 0, fmt.Errorf("%w: crc32c %08x, recorded %08x", ErrChecksumMismatch, sum, b.CRC32C)
	}

	rc, err := compress.NewReader(bytes.NewReader(data), compress.FromPath(b.Name))
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	first, err := br.ReadBytes('\n')
	if err == io.EOF && len(first) == 0 {
		return 0, nil
	}
	if err != nil && err != io.EOF {
		return 0, err
	}
	if !bytes.Equal(bytes.TrimRight(first, "\r\n"), bytes.TrimRight(header, "\r\n")) {
		return 0, fmt.Errorf("%w: %q", ErrHeaderMismatch, bytes.TrimRight(first, "\r\n"))
	}

	return io.Copy(w, br)
}
