// Package blobstore abstracts where matrices, result blocks and run manifests
// live.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, atomic rename on write
//   - MemoryStore: in-process, for tests
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with a DynamoDB
//     commit log for the CURRENT manifest pointer
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
