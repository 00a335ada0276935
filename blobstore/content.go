package blobstore

import (
	"path"

	"github.com/hupe1980/dirt/internal/compress"
)

// ContentType returns the MIME type object stores should label name
// with. Compressed blocks are labelled by their codec.
func ContentType(name string) string {
	switch compress.FromPath(name) {
	case compress.Zstd:
		return "application/zstd"
	case compress.LZ4:
		return "application/x-lz4"
	}
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}

// BytesBlob returns a Blob serving data. The caller must not modify data
// afterwards.
func BytesBlob(data []byte) Blob {
	return memoryBlob(data)
}
