package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, owner string, created time.Time) *domain.FileRecord {
	return &domain.FileRecord{
		ShortID:     id,
		StableRef:   "ref-" + id,
		DisplayName: "report.pdf",
		SizeBytes:   2048,
		MimeOrExt:   "application/pdf",
		OwnerID:     owner,
		CreatedAt:   created,
	}
}

func TestStore_PutGet(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	rec := record("12345678", "u1", time.Now())

	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Returned values are copies.
	got.DisplayName = "changed"
	again, err := store.Get(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", again.DisplayName)

	_, err = store.Get(ctx, "00000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListByOwner(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, record("10000001", "u1", now.Add(-2*time.Minute))))
	require.NoError(t, store.Put(ctx, record("10000002", "u1", now)))
	require.NoError(t, store.Put(ctx, record("10000003", "u2", now)))

	recs, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "10000002", recs[0].ShortID)
	assert.Equal(t, "10000001", recs[1].ShortID)

	recs, err = store.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestStore_Delete(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, record("12345678", "ownerB", time.Now())))

	assert.ErrorIs(t, store.Delete(ctx, "12345678", "ownerA"), domain.ErrForbidden)
	assert.ErrorIs(t, store.Delete(ctx, "87654321", "ownerB"), domain.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "12345678", "ownerB"))

	_, err := store.Get(ctx, "12345678")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	recs, err := store.ListByOwner(ctx, "ownerB")
	require.NoError(t, err)
	assert.Empty(t, recs)

	taken, err := store.IDTaken(ctx, "12345678")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestStore_IDTaken(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	taken, err := store.IDTaken(ctx, "12345678")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, store.Put(ctx, record("12345678", "u1", time.Now())))

	taken, err = store.IDTaken(ctx, "12345678")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestStore_CancelledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, record("12345678", "u1", time.Now())), domain.ErrStoreUnavailable)
	_, err := store.Get(ctx, "12345678")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ConcurrentPutAndList(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(ctx, record(fmt.Sprintf("%08d", 10000000+i), "u1", time.Now()))
			_, _ = store.ListByOwner(ctx, "u1")
		}(i)
	}
	wg.Wait()

	recs, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 50)
}
