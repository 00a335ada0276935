// Package s3 stores matrices, result blocks and run manifests in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("runs/2024-06/"))
//
// For concurrent writers, wrap the store in a DDBCommitStore so that the
// CURRENT manifest pointer is advanced with a DynamoDB conditional write:
//
//	commits := s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), "dirt-commits", "s3://my-bucket/runs/")
//
// # Features
//
//   - Range reads for partial fetches
//   - Streaming multipart uploads for large result blocks
//   - CRC32C checksums on small writes
//   - Automatic pagination for listing
package s3
