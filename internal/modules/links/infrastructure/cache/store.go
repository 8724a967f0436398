package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filelink_record_cache_hits_total",
		Help: "Total number of record lookups served from the in-process cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filelink_record_cache_misses_total",
		Help: "Total number of record lookups that went to the backing store.",
	})
)

// Store puts a per-instance LRU of records in front of another store.
// Records are immutable, so only Get is served from cache; misses and
// errors are never cached. Other instances see a revoke once the entry
// expires.
type Store struct {
	next  domain.Store
	cache *expirable.LRU[string, domain.FileRecord]
}

// NewStore wraps next with a cache of at most maxSize records kept for ttl.
func NewStore(next domain.Store, maxSize int, ttl time.Duration) *Store {
	return &Store{
		next:  next,
		cache: expirable.NewLRU[string, domain.FileRecord](maxSize, nil, ttl),
	}
}

func (s *Store) Put(ctx context.Context, rec *domain.FileRecord) error {
	s.cache.Remove(rec.ShortID)
	return s.next.Put(ctx, rec)
}

func (s *Store) Get(ctx context.Context, shortID string) (*domain.FileRecord, error) {
	if rec, ok := s.cache.Get(shortID); ok {
		cacheHitsTotal.Inc()
		return &rec, nil
	}
	cacheMissesTotal.Inc()

	rec, err := s.next.Get(ctx, shortID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(shortID, *rec)
	return rec, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error) {
	return s.next.ListByOwner(ctx, ownerID)
}

func (s *Store) Delete(ctx context.Context, shortID, requestingOwnerID string) error {
	err := s.next.Delete(ctx, shortID, requestingOwnerID)
	if err == nil {
		s.cache.Remove(shortID)
	}
	return err
}

func (s *Store) IDTaken(ctx context.Context, shortID string) (bool, error) {
	if s.cache.Contains(shortID) {
		return true, nil
	}
	return s.next.IDTaken(ctx, shortID)
}

// Len reports the number of cached records.
func (s *Store) Len() int {
	return s.cache.Len()
}
