package s3

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/dirt/internal/hash"
)

// UploadConfig tunes streamed block uploads.
type UploadConfig struct {
	// PartSize is the multipart chunk size. Result blocks below it go up
	// in a single PutObject.
	PartSize int64
	// Concurrency bounds the parts in flight per upload.
	Concurrency int
	// EnableChecksum asks S3 to verify CRC32C checksums on write.
	EnableChecksum bool
	// LeavePartsOnError keeps uploaded parts of a failed upload for
	// inspection instead of aborting the multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns 8 MiB parts, five in flight, with
// checksums on.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func (c UploadConfig) uploader(client Client) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if c.PartSize > 0 {
			u.PartSize = c.PartSize
		}
		if c.Concurrency > 0 {
			u.Concurrency = c.Concurrency
		}
		u.LeavePartsOnError = c.LeavePartsOnError
	})
}

// crc32cBase64 encodes the CRC32C of data the way the
// x-amz-checksum-crc32c header expects it.
func crc32cBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(binary.BigEndian.AppendUint32(nil, hash.CRC32C(data)))
}

var errUploadAborted = errors.New("s3: upload aborted")

// upload feeds the uploader from a pipe. The object exists once Close
// returns nil.
type upload struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	mu     sync.Mutex
	closed bool
}

func startUpload(ctx context.Context, uploader *manager.Uploader, input *s3.PutObjectInput) *upload {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	input.Body = pr

	u := &upload{pw: pw, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(u.done)
		_, u.err = uploader.Upload(ctx, input)
		_ = pr.CloseWithError(u.err)
	}()
	return u
}

func (u *upload) Write(p []byte) (int, error) {
	u.mu.Lock()
	closed := u.closed
	u.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return u.pw.Write(p)
}

// Sync is a no-op. Parts are flushed by the uploader as they fill.
func (u *upload) Sync() error { return nil }

// Close completes the upload. Repeated calls return the first result.
func (u *upload) Close() error {
	if u.finish(nil) {
		<-u.done
		u.cancel()
	}
	<-u.done
	return u.err
}

// Abort cancels the upload. The uploader then aborts the multipart upload
// unless LeavePartsOnError is set.
func (u *upload) Abort() error {
	if u.finish(errUploadAborted) {
		u.cancel()
		<-u.done
	}
	return nil
}

// finish closes the pipe once and reports whether this call did it.
func (u *upload) finish(cause error) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return false
	}
	u.closed = true
	_ = u.pw.CloseWithError(cause)
	return true
}
