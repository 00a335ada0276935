package main

import (
	"context"
	"flag"
	"fmt"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/blobstore/minio"
	"github.com/hupe1980/dirt/blobstore/s3"
)

// storeFlags select where inputs are read from and results are written to.
type storeFlags struct {
	kind     string
	bucket   string
	prefix   string
	endpoint string
	region   string
	ddbTable string
	insecure bool
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.kind, "store", "local", "blob store: local, s3 or minio")
	fs.StringVar(&f.bucket, "bucket", "", "bucket for s3 and minio stores")
	fs.StringVar(&f.prefix, "prefix", "", "key prefix inside the bucket")
	fs.StringVar(&f.endpoint, "endpoint", "", "custom S3 endpoint, or host:port of a MinIO server")
	fs.StringVar(&f.region, "region", "", "AWS region (default from the environment)")
	fs.StringVar(&f.ddbTable, "ddb-table", "", "DynamoDB table for conditional manifest commits (s3 only)")
	fs.BoolVar(&f.insecure, "insecure", false, "connect to MinIO without TLS")
}

func (f *storeFlags) validate() error {
	switch f.kind {
	case "local":
		if f.ddbTable != "" {
			return fmt.Errorf("%w: -ddb-table needs -store s3", errUsage)
		}
		return nil
	case "s3", "minio":
		if f.bucket == "" {
			return fmt.Errorf("%w: -store %s needs -bucket", errUsage, f.kind)
		}
		if f.kind == "minio" && f.endpoint == "" {
			return fmt.Errorf("%w: -store minio needs -endpoint", errUsage)
		}
		if f.kind == "minio" && f.ddbTable != "" {
			return fmt.Errorf("%w: -ddb-table needs -store s3", errUsage)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown -store %q", errUsage, f.kind)
	}
}

// input opens the store holding the named input and returns the blob name
// relative to it.
func (f *storeFlags) input(ctx context.Context, name string) (blobstore.BlobStore, string, error) {
	if f.kind == "local" {
		return blobstore.NewLocalStore(filepath.Dir(name)), filepath.Base(name), nil
	}
	st, err := f.remote(ctx, f.prefix)
	if err != nil {
		return nil, "", err
	}
	return st, name, nil
}

// output opens the store results are written to. For local stores out is a
// directory; for remote stores it is a key prefix below -prefix.
func (f *storeFlags) output(ctx context.Context, out string) (blobstore.BlobStore, error) {
	if f.kind == "local" {
		return blobstore.NewLocalStore(out), nil
	}

	prefix := path.Join(f.prefix, out)
	st, err := f.remote(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if f.ddbTable == "" {
		return st, nil
	}

	awsCfg, err := f.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	baseURI := fmt.Sprintf("s3://%s/%s", f.bucket, prefix)
	return s3.NewDDBCommitStore(st.(*s3.Store), dynamodb.NewFromConfig(awsCfg), f.ddbTable, baseURI), nil
}

func (f *storeFlags) remote(ctx context.Context, prefix string) (blobstore.BlobStore, error) {
	switch f.kind {
	case "s3":
		opts := []func(*s3.Options){s3.WithPrefix(prefix)}
		if f.region != "" {
			opts = append(opts, s3.WithRegion(f.region))
		}
		if f.endpoint != "" {
			opts = append(opts, s3.WithEndpoint(f.endpoint))
		}
		st, err := s3.New(ctx, f.bucket, opts...)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "minio":
		client, err := minio.Connect(f.endpoint, !f.insecure)
		if err != nil {
			return nil, err
		}
		return minio.NewStore(client, f.bucket, prefix), nil
	default:
		return nil, fmt.Errorf("%w: unknown -store %q", errUsage, f.kind)
	}
}

func (f *storeFlags) awsConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if f.region != "" {
		opts = append(opts, config.WithRegion(f.region))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}
