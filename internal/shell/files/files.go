// Package files stores and serves uploaded media blobs. The store keeps the
// media metadata; this package only moves bytes.
package files

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("file not found")

// StoredFile describes a saved blob. Name is the storage name the blob ended
// up under, which may differ from the requested name on collision.
type StoredFile struct {
	Name string
	Size int64
}

// Storage persists uploaded blobs by name.
type Storage interface {
	// Save writes the blob and returns its storage name and size.
	Save(ctx context.Context, name, contentType string, r io.Reader) (StoredFile, error)

	// Open returns the blob contents and its content type. The caller
	// closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)

	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error
}
