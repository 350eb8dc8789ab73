package store

import (
	"context"
	"fmt"
)

// BlobID addresses stored content. It is the hex SHA-256 of the bytes.
type BlobID string

// ErrBlobNotFound is returned by BlobStore.Get for unknown ids.
var ErrBlobNotFound = fmt.Errorf("%w: blob", ErrNotFound)

// BlobStore keeps uploaded file content. Identical bytes map to the same id.
type BlobStore interface {
	Put(ctx context.Context, data []byte, filename, contentType string) (BlobID, error)
	Get(ctx context.Context, id BlobID) ([]byte, error)
	Delete(ctx context.Context, id BlobID) error
}
