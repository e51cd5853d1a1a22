package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storysync/internal/domain/entity"
)

func actorType(t *testing.T) *entity.Type {
	t.Helper()
	typ, ok := entity.Storymaster().Lookup("actor")
	require.True(t, ok)
	return typ
}

func seedActor(t *testing.T, repo *EntityRepository, id int64, updatedAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), actorType(t), &entity.Record{
		ID:        id,
		Version:   1,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		Fields:    entity.Values{"first_name": "Actor", "group_id": int64(1)},
	})
	require.NoError(t, err)
}

func TestEntityRepository_CreateGet(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 500000, time.UTC)

	err := repo.Create(ctx, typ, &entity.Record{
		ID:        42,
		Version:   3,
		CreatedAt: at,
		UpdatedAt: at,
		Fields:    entity.Values{"first_name": "Ann", "actor_age": int64(30), "group_id": int64(2)},
	})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, typ, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Version)
	assert.True(t, at.Equal(rec.UpdatedAt))
	assert.Nil(t, rec.DeletedAt)
	assert.Equal(t, "Ann", rec.Fields["first_name"])
	assert.Equal(t, int64(30), rec.Fields["actor_age"])
	assert.Nil(t, rec.Fields["last_name"])

	err = repo.Create(ctx, typ, &entity.Record{ID: 42, Version: 1, CreatedAt: at, UpdatedAt: at, Fields: entity.Values{"group_id": int64(1)}})
	assert.ErrorIs(t, err, entity.ErrAlreadyExists)

	_, err = repo.Get(ctx, typ, 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEntityRepository_Update(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedActor(t, repo, 1, at)

	now := at.Add(time.Hour)
	v, err := repo.Update(ctx, typ, 1, 1, entity.Values{"last_name": "Smith"}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	rec, err := repo.Get(ctx, typ, 1)
	require.NoError(t, err)
	assert.Equal(t, "Smith", rec.Fields["last_name"])
	// поле, которого не было в патче, не тронуто
	assert.Equal(t, "Actor", rec.Fields["first_name"])
	assert.True(t, now.Equal(rec.UpdatedAt))

	_, err = repo.Update(ctx, typ, 1, 1, entity.Values{"last_name": "Stale"}, now)
	assert.ErrorIs(t, err, entity.ErrVersionMismatch)

	rec, err = repo.Get(ctx, typ, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, "Smith", rec.Fields["last_name"])

	_, err = repo.Update(ctx, typ, 77, 1, entity.Values{}, now)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEntityRepository_UpdateConcurrent(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedActor(t, repo, 1, at)

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			_, err := repo.Update(context.Background(), typ, 1, 1, entity.Values{"actor_age": int64(i)}, at.Add(time.Minute))
			errs <- err
		}(i)
	}

	won, lost := 0, 0
	for i := 0; i < workers; i++ {
		err := <-errs
		switch {
		case err == nil:
			won++
		case errors.Is(err, entity.ErrVersionMismatch):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)
}

func TestEntityRepository_SoftDelete(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedActor(t, repo, 1, at)

	now := at.Add(time.Hour)
	v, err := repo.SoftDelete(ctx, typ, 1, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	rec, err := repo.Get(ctx, typ, 1)
	require.NoError(t, err)
	require.NotNil(t, rec.DeletedAt)
	assert.True(t, now.Equal(*rec.DeletedAt))
	assert.True(t, now.Equal(rec.UpdatedAt))

	// повторное удаление ничего не меняет
	_, err = repo.SoftDelete(ctx, typ, 1, now.Add(time.Hour))
	assert.ErrorIs(t, err, entity.ErrNotFound)
	rec, err = repo.Get(ctx, typ, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)

	_, err = repo.SoftDelete(ctx, typ, 404, now)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

// Scenario D: an entity updated exactly at the watermark is excluded.
func TestEntityRepository_ChangedSinceIsStrict(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	ctx := context.Background()

	watermark := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedActor(t, repo, 1, watermark.Add(-time.Second))
	seedActor(t, repo, 2, watermark)
	seedActor(t, repo, 3, watermark.Add(time.Microsecond))
	seedActor(t, repo, 4, watermark.Add(time.Hour))

	records, err := repo.ListChangedSince(ctx, typ, &watermark)
	require.NoError(t, err)
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{3, 4}, ids)

	n, err := repo.CountChangedSince(ctx, typ, &watermark)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)

	all, err := repo.ListChangedSince(ctx, typ, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	n, err = repo.CountChangedSince(ctx, typ, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestEntityRepository_ChangedSinceNormalizesZone(t *testing.T) {
	repo := NewEntityRepository(newTestStore(t))
	typ := actorType(t)
	ctx := context.Background()

	msk := time.FixedZone("MSK", 3*3600)
	seedActor(t, repo, 1, time.Date(2024, 6, 1, 13, 0, 0, 0, msk))

	// 10:00 UTC == 13:00 MSK, так что строго позже нет ничего
	since := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	n, err := repo.CountChangedSince(ctx, typ, &since)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	since = since.Add(-time.Millisecond)
	n, err = repo.CountChangedSince(ctx, typ, &since)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// Строки, записанные настольным приложением: naive isoformat() с "T".
func TestEntityRepository_ChangedSinceHostTimestamps(t *testing.T) {
	store := newTestStore(t)
	repo := NewEntityRepository(store)
	typ := actorType(t)
	ctx := context.Background()

	hostRows := []struct {
		id int64
		at string
	}{
		{1, "2024-06-01T09:59:59.999999"},
		{2, "2024-06-01T10:00:00.000001"},
		{3, "2024-06-01T10:00:00"},
		{5, "2024-06-01T10:00:00.000500"},
	}
	for _, r := range hostRows {
		_, err := store.exec(ctx,
			`INSERT INTO "actor" (id, version, created_at, updated_at, group_id, first_name) VALUES (?, 1, ?, ?, 1, 'Host')`,
			r.id, r.at, r.at)
		require.NoError(t, err)
	}

	watermark := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedActor(t, repo, 4, watermark.Add(2*time.Millisecond))

	rec, err := repo.Get(ctx, typ, 2)
	require.NoError(t, err)
	assert.True(t, watermark.Add(time.Microsecond).Equal(rec.UpdatedAt), rec.UpdatedAt)

	records, err := repo.ListChangedSince(ctx, typ, &watermark)
	require.NoError(t, err)
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{2, 5, 4}, ids)

	n, err := repo.CountChangedSince(ctx, typ, &watermark)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.ListChangedSince(ctx, typ, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(1), all[0].ID)
}
