package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

// Store keeps records in process memory. Used for local development and tests;
// nothing survives a restart.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.FileRecord
	owners  map[string]map[string]struct{}
	retired map[string]struct{}
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.FileRecord),
		owners:  make(map[string]map[string]struct{}),
		retired: make(map[string]struct{}),
	}
}

func (s *Store) Put(ctx context.Context, rec *domain.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ShortID] = *rec
	ids, ok := s.owners[rec.OwnerID]
	if !ok {
		ids = make(map[string]struct{})
		s.owners[rec.OwnerID] = ids
	}
	ids[rec.ShortID] = struct{}{}
	return nil
}

func (s *Store) Get(ctx context.Context, shortID string) (*domain.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[shortID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.owners[ownerID]
	out := make([]domain.FileRecord, 0, len(ids))
	for id := range ids {
		rec, ok := s.records[id]
		if !ok {
			delete(ids, id)
			continue
		}
		out = append(out, rec)
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, shortID, requestingOwnerID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[shortID]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.OwnerID != requestingOwnerID {
		return domain.ErrForbidden
	}

	delete(s.records, shortID)
	if ids, ok := s.owners[rec.OwnerID]; ok {
		delete(ids, shortID)
		if len(ids) == 0 {
			delete(s.owners, rec.OwnerID)
		}
	}
	s.retired[shortID] = struct{}{}
	return nil
}

func (s *Store) IDTaken(ctx context.Context, shortID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[shortID]; ok {
		return true, nil
	}
	_, ok := s.retired[shortID]
	return ok, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
