package domain

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotSupported is returned when the backend cannot perform an operation.
	ErrNotSupported = errors.New("operation not supported by storage backend")
	// ErrUpstream covers every failure to obtain a direct URL from the backend.
	ErrUpstream = errors.New("storage backend request failed")
)

// Backend derives short-lived direct URLs for stored objects.
// A stable reference is whatever the backend uses to name an object: a
// Telegram file_id or an object key.
type Backend interface {
	Name() string
	DirectURL(ctx context.Context, ref string) (string, error)
}

// Uploader is implemented by backends that accept bytes directly.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (ref string, err error)
}

// Deleter is implemented by backends that can remove an object.
type Deleter interface {
	Delete(ctx context.Context, ref string) error
}
