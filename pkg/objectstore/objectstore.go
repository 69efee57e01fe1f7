// Package objectstore provides the get/put/list primitives the image
// library and the resize pipeline need from a bucket.
package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Object is a fetched object. The caller must close Body.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is a flat key/value object store scoped to one bucket.
type Store interface {
	Bucket() string
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
