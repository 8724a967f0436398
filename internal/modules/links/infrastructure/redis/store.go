package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

const retiredKey = "files:retired"

func fileKey(shortID string) string {
	return "file:" + shortID
}

func ownerKey(ownerID string) string {
	return "user:" + ownerID + ":files"
}

// storedRecord is the JSON layout under file:<id>.
type storedRecord struct {
	Version int `json:"v"`
	domain.FileRecord
}

// Store keeps one JSON value per record and one set of ids per owner.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed mapping store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, rec *domain.FileRecord) error {
	data, err := json.Marshal(storedRecord{Version: domain.SchemaVersion, FileRecord: *rec})
	if err != nil {
		return unavailable(fmt.Errorf("failed to encode record: %w", err))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fileKey(rec.ShortID), data, 0)
		pipe.SAdd(ctx, ownerKey(rec.OwnerID), rec.ShortID)
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, shortID string) (*domain.FileRecord, error) {
	data, err := s.client.Get(ctx, fileKey(shortID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}

	rec, err := decode(data)
	if err != nil {
		return nil, unavailable(err)
	}
	return rec, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error) {
	ids, err := s.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(ids) == 0 {
		return []domain.FileRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fileKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	out := make([]domain.FileRecord, 0, len(ids))
	var orphans []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			orphans = append(orphans, ids[i])
			continue
		}
		rec, err := decode([]byte(raw))
		if err != nil {
			continue
		}
		out = append(out, *rec)
	}

	if len(orphans) > 0 {
		// Index entries whose record is gone; pruning is best effort.
		_ = s.client.SRem(ctx, ownerKey(ownerID), orphans...).Err()
	}

	domain.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, shortID, requestingOwnerID string) error {
	key := fileKey(shortID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err := decode(data)
		if err != nil {
			return err
		}
		if rec.OwnerID != requestingOwnerID {
			return domain.ErrForbidden
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, ownerKey(rec.OwnerID), shortID)
			pipe.SAdd(ctx, retiredKey, shortID)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		return err
	default:
		return unavailable(err)
	}
}

func (s *Store) IDTaken(ctx context.Context, shortID string) (bool, error) {
	var live *redis.IntCmd
	var retired *redis.BoolCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		live = pipe.Exists(ctx, fileKey(shortID))
		retired = pipe.SIsMember(ctx, retiredKey, shortID)
		return nil
	})
	if err != nil {
		return false, unavailable(err)
	}
	return live.Val() > 0 || retired.Val(), nil
}

func decode(data []byte) (*domain.FileRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if stored.Version > domain.SchemaVersion {
		return nil, fmt.Errorf("unsupported record schema version %d", stored.Version)
	}
	return &stored.FileRecord, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
