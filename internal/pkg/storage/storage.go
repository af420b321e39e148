package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists at the path.
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for blob storage operations.
// Paths are slash-separated and relative to the storage root.
type Storage interface {
	// Save writes content to path, replacing any existing object.
	Save(ctx context.Context, path, contentType string, content io.Reader) error

	// Get opens the object at path. Callers must close the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error
}
