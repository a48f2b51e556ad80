// Package storage is the object store gateway: it stores item images and
// attachments as blobs and hands out time-limited read links for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultSignedURLTTL is the lifetime of read links when none is configured.
const DefaultSignedURLTTL = 3600 * time.Second

// ErrObjectNotFound is returned by backends when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is a blob to be written under Key.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// Backend is a blob service driven by the Gateway.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Put stores the object, overwriting any existing blob with the same key.
	Put(ctx context.Context, obj Object) error

	// Delete removes the blob. A missing key is reported as ErrObjectNotFound.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a read link valid for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// WriteError reports a failed blob upload.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage write failed for key %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// DeleteError reports a failed blob delete.
type DeleteError struct {
	Key string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("storage delete failed for key %s: %v", e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
