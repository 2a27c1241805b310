// Package storage defines the object store the gallery talks to.
//
// Backends (MinIO, AWS S3, in-memory) implement Store and report failures as
// *errs.Error; a missing object is always errs.KindNotFound.
package storage

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	MethodGet = http.MethodGet
	MethodPut = http.MethodPut

	DefaultContentType = "application/octet-stream"
)

type Store interface {
	// Ping verifies the backend is reachable and the bucket exists.
	Ping(ctx context.Context) error

	// List returns the objects under opts.Prefix. With a non-empty Delimiter,
	// keys containing the delimiter after the prefix are folded into
	// ListResult.Prefixes instead of being returned as objects.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Stat returns the metadata of one object.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	Exists(ctx context.Context, key string) (bool, error)

	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SignedURL issues a time-limited URL for method on key. For PUT the
	// contentType is part of the signature.
	SignedURL(ctx context.Context, key, method string, ttl time.Duration, contentType string) (string, error)
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

type ListOptions struct {
	Prefix    string
	Delimiter string
}

type ListResult struct {
	Objects []ObjectInfo
	// Prefixes are the grouped common prefixes, each ending with the delimiter.
	Prefixes []string
}
