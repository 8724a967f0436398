package domain

import "context"

// Store is the durable mapping from short id to FileRecord, with a per-owner index.
//
// Implementations wrap every backing failure in ErrStoreUnavailable.
type Store interface {
	// Put upserts the record at its short id and adds the id to the owner index.
	Put(ctx context.Context, rec *FileRecord) error

	// Get returns ErrNotFound when no record exists.
	Get(ctx context.Context, shortID string) (*FileRecord, error)

	// ListByOwner resolves every indexed id; ids that no longer resolve are dropped.
	ListByOwner(ctx context.Context, ownerID string) ([]FileRecord, error)

	// Delete removes the record, its index entry, and retires the id.
	// It returns ErrNotFound or ErrForbidden without deleting anything.
	Delete(ctx context.Context, shortID, requestingOwnerID string) error

	// IDTaken reports whether the id is live or has been retired.
	IDTaken(ctx context.Context, shortID string) (bool, error)
}

// Resolver derives a currently valid direct URL for a stable backend reference.
// The URL expires; callers must ask again on every request.
type Resolver interface {
	DirectURL(ctx context.Context, stableRef string) (string, error)
}
