package domain

import "errors"

var (
	ErrMalformedSlug     = errors.New("malformed slug")
	ErrNotFound          = errors.New("file record not found")
	ErrForbidden         = errors.New("file record belongs to another owner")
	ErrStoreUnavailable  = errors.New("mapping store unavailable")
	ErrResolutionFailed  = errors.New("direct url resolution failed")
	ErrIDSpaceExhausted  = errors.New("could not allocate a free short id")
	ErrInvalidRecord     = errors.New("invalid file record")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
	ErrUploadUnsupported = errors.New("storage backend does not accept uploads")
)
