// Package storage abstracts the blob store holding uploaded post images.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

type Storage interface {
	// Upload stores body under key, replacing any existing object.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	// Download returns the object body and its content type, or ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
