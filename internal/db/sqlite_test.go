package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pregen/internal/db"
	"github.com/udisondev/pregen/internal/pregen"
	"github.com/udisondev/pregen/internal/testutil"
)

func sampleRecord(submitted time.Time) pregen.JobRecord {
	return pregen.JobRecord{
		ID:          uuid.New(),
		World:       "overworld",
		Shape:       "rect",
		Bounds:      pregen.Bounds{XStart: -4, ZStart: -4, XEnd: 27, ZEnd: 27},
		Speed:       "normal",
		Lighting:    "forced-toggle",
		State:       "active",
		Cells:       1024,
		TilesTotal:  4,
		SubmittedAt: submitted,
	}
}

func TestSQLiteJobRepository(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)

	sqlDB, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "pregen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := db.NewSQLiteJobRepository(sqlDB)
	var _ pregen.Recorder = repo

	now := time.Now()
	older := sampleRecord(now.Add(-time.Minute))
	rec := sampleRecord(now)

	require.NoError(t, repo.RecordSubmitted(ctx, older))
	require.NoError(t, repo.RecordSubmitted(ctx, rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Bounds, got.Bounds)
	assert.Equal(t, "active", got.State)
	assert.True(t, got.FinishedAt.IsZero())
	assert.True(t, rec.SubmittedAt.Equal(got.SubmittedAt))

	rec.State = "done"
	rec.TilesDone = 4
	rec.CellsLoaded = 1156
	rec.CellsLit = 900
	rec.CellsReleased = 1156
	rec.FinishedAt = now.Add(5 * time.Second)
	require.NoError(t, repo.RecordFinished(ctx, rec))

	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.State)
	assert.Equal(t, 900, got.CellsLit)
	assert.True(t, rec.FinishedAt.Equal(got.FinishedAt))

	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, rec.ID, list[0].ID, "newest first")
	assert.Equal(t, older.ID, list[1].ID)

	missing, err := repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)
	path := filepath.Join(t.TempDir(), "pregen.db")

	first, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	rec := sampleRecord(time.Now())
	require.NoError(t, db.NewSQLiteJobRepository(first).RecordSubmitted(ctx, rec))
	require.NoError(t, first.Close())

	// Migrations are idempotent and data survives.
	second, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := db.NewSQLiteJobRepository(second).Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.World, got.World)
}
