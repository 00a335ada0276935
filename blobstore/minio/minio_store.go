package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/dirt/blobstore"
)

// DefaultPartSize is the multipart chunk used for streamed block uploads.
const DefaultPartSize = 16 << 20

var errAborted = errors.New("minio: upload aborted")

// Store keeps run artifacts as objects below a key prefix of one bucket.
type Store struct {
	client   *minio.Client
	bucket   string
	root     string
	partSize uint64
}

var _ blobstore.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPartSize sets the multipart chunk size of streamed uploads.
func WithPartSize(n uint64) Option {
	return func(s *Store) {
		if n > 0 {
			s.partSize = n
		}
	}
}

// Connect creates a client for endpoint with credentials taken from the
// MinIO environment variables.
func Connect(endpoint string, secure bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: secure,
	})
}

// NewStore returns a Store writing below prefix in bucket. Leading and
// trailing slashes of prefix are ignored.
func NewStore(client *minio.Client, bucket, prefix string, opts ...Option) *Store {
	s := &Store{
		client:   client,
		bucket:   bucket,
		root:     strings.Trim(prefix, "/"),
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	if s.root == "" {
		return name
	}
	return s.root + "/" + name
}

func (s *Store) name(key string) string {
	if s.root == "" {
		return key
	}
	return strings.TrimPrefix(key, s.root+"/")
}

func notFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if notFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &object{store: s, key: s.key(name), size: info.Size, obj: obj}, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: blobstore.ContentType(name)})
	return err
}

// Create streams the blob as a multipart upload. The object appears when
// Close returns.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	u := &upload{pw: pw, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(u.done)
		_, u.err = s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{
			ContentType: blobstore.ContentType(name),
			PartSize:    s.partSize,
		})
		_ = pr.CloseWithError(u.err)
	}()
	return u, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !notFound(err) {
		return err
	}
	return nil
}

// List relies on the bucket listing being sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	names := []string{}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, s.name(obj.Key))
	}
	return names, nil
}

// object reads through a single GetObject handle; ranged streams use
// their own request.
type object struct {
	store *Store
	key   string
	size  int64

	mu  sync.Mutex
	obj *minio.Object
}

func (o *object) Size() int64 { return o.size }

func (o *object) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= o.size {
		return 0, io.EOF
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.obj.ReadAt(p, off)
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= o.size || length <= 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}
	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, min(off+length, o.size)-1); err != nil {
		return nil, err
	}
	return o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
}

func (o *object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.obj.Close()
}

// upload feeds a background PutObject through a pipe.
type upload struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   sync.Once
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

func (u *upload) Sync() error { return nil }

func (u *upload) Close() error {
	closed := false
	u.once.Do(func() {
		closed = true
		_ = u.pw.Close()
		<-u.done
		u.cancel()
	})
	if !closed {
		return errors.New("minio: blob already closed")
	}
	return u.err
}

// Abort cancels the upload so no object is created.
func (u *upload) Abort() error {
	u.once.Do(func() {
		u.cancel()
		_ = u.pw.CloseWithError(errAborted)
		<-u.done
	})
	return nil
}
