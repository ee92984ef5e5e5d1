// Package storage holds the uploaded clip binaries. Records in the video
// table and objects here are created together; the upload path deletes the
// object whenever the record write fails.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the object operations the upload path needs,
// implemented by the MinIO and local-disk backends.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
