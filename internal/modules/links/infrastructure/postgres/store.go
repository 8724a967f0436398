package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

// Migrations holds the schema for file_records and retired_short_ids.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const recordColumns = `short_id, stable_ref, display_name, size_bytes, mime_type, owner_id, created_at`

type Store struct {
	db *sqlx.DB
}

// NewStore creates a PostgreSQL-backed mapping store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Put upserts the record. The owner index is the (owner_id, created_at) index.
func (s *Store) Put(ctx context.Context, rec *domain.FileRecord) error {
	query := `INSERT INTO file_records (` + recordColumns + `, schema_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (short_id) DO UPDATE SET
			stable_ref = EXCLUDED.stable_ref,
			display_name = EXCLUDED.display_name,
			size_bytes = EXCLUDED.size_bytes,
			mime_type = EXCLUDED.mime_type,
			owner_id = EXCLUDED.owner_id,
			created_at = EXCLUDED.created_at,
			schema_version = EXCLUDED.schema_version`

	_, err := s.db.ExecContext(ctx, query,
		rec.ShortID, rec.StableRef, rec.DisplayName, int64(rec.SizeBytes),
		rec.MimeOrExt, rec.OwnerID, rec.CreatedAt, domain.SchemaVersion,
	)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, shortID string) (*domain.FileRecord, error) {
	rec := &domain.FileRecord{}
	query := `SELECT ` + recordColumns + ` FROM file_records WHERE short_id = $1`

	err := s.db.GetContext(ctx, rec, query, shortID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return rec, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error) {
	recs := []domain.FileRecord{}
	query := `SELECT ` + recordColumns + ` FROM file_records
		WHERE owner_id = $1
		ORDER BY created_at DESC, short_id ASC`

	if err := s.db.SelectContext(ctx, &recs, query, ownerID); err != nil {
		return nil, unavailable(err)
	}
	return recs, nil
}

// Delete removes the record and retires its id in one transaction. The row is
// locked before the owner check so a concurrent delete cannot interleave.
func (s *Store) Delete(ctx context.Context, shortID, requestingOwnerID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	var ownerID string
	err = tx.GetContext(ctx, &ownerID, `SELECT owner_id FROM file_records WHERE short_id = $1 FOR UPDATE`, shortID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return unavailable(err)
	}
	if ownerID != requestingOwnerID {
		return domain.ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_records WHERE short_id = $1`, shortID); err != nil {
		return unavailable(err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO retired_short_ids (short_id) VALUES ($1) ON CONFLICT DO NOTHING`, shortID); err != nil {
		return unavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable(fmt.Errorf("failed to commit delete: %w", err))
	}
	return nil
}

func (s *Store) IDTaken(ctx context.Context, shortID string) (bool, error) {
	var taken bool
	query := `SELECT EXISTS(SELECT 1 FROM file_records WHERE short_id = $1)
		OR EXISTS(SELECT 1 FROM retired_short_ids WHERE short_id = $1)`

	if err := s.db.GetContext(ctx, &taken, query, shortID); err != nil {
		return false, unavailable(err)
	}
	return taken, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
