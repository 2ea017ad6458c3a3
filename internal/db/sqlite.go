package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Register driver

	"github.com/udisondev/pregen/internal/pregen"
)

// OpenSQLite opens (creating if needed) a local SQLite job store and applies
// its migrations.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// Один писатель, иначе SQLITE_BUSY при параллельной записи.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=30000;"} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if err := RunSQLiteMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// SQLiteJobRepository keeps job history in a local SQLite file.
// It implements pregen.Recorder.
type SQLiteJobRepository struct {
	db *sql.DB
}

// NewSQLiteJobRepository creates a repository on an open SQLite database.
func NewSQLiteJobRepository(db *sql.DB) *SQLiteJobRepository {
	return &SQLiteJobRepository{db: db}
}

const sqliteUpsertJobQuery = `
	INSERT INTO job_runs (
		id, world, shape, x_start, z_start, x_end, z_end, radius,
		speed, lighting, state, cells,
		tiles_total, tiles_done, cells_loaded, cells_lit, cells_released,
		error, submitted_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		state          = excluded.state,
		tiles_done     = excluded.tiles_done,
		cells_loaded   = excluded.cells_loaded,
		cells_lit      = excluded.cells_lit,
		cells_released = excluded.cells_released,
		error          = excluded.error,
		finished_at    = excluded.finished_at
`

const sqliteSelectJobColumns = `
	SELECT id, world, shape, x_start, z_start, x_end, z_end, radius,
		speed, lighting, state, cells,
		tiles_total, tiles_done, cells_loaded, cells_lit, cells_released,
		error, submitted_at, finished_at
	FROM job_runs
`

// RecordSubmitted stores a newly admitted job.
func (r *SQLiteJobRepository) RecordSubmitted(ctx context.Context, rec pregen.JobRecord) error {
	if err := r.upsert(ctx, rec); err != nil {
		return fmt.Errorf("recording submitted job %s: %w", rec.ID, err)
	}
	return nil
}

// RecordFinished stores the final state of a job.
func (r *SQLiteJobRepository) RecordFinished(ctx context.Context, rec pregen.JobRecord) error {
	if err := r.upsert(ctx, rec); err != nil {
		return fmt.Errorf("recording finished job %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteJobRepository) upsert(ctx context.Context, rec pregen.JobRecord) error {
	var finishedAt sql.NullInt64
	if !rec.FinishedAt.IsZero() {
		finishedAt = sql.NullInt64{Int64: rec.FinishedAt.UnixNano(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, sqliteUpsertJobQuery,
		rec.ID.String(), rec.World, rec.Shape,
		rec.Bounds.XStart, rec.Bounds.ZStart, rec.Bounds.XEnd, rec.Bounds.ZEnd, rec.Radius,
		rec.Speed, rec.Lighting, rec.State, rec.Cells,
		rec.TilesTotal, rec.TilesDone, rec.CellsLoaded, rec.CellsLit, rec.CellsReleased,
		rec.Error, rec.SubmittedAt.UnixNano(), finishedAt,
	)
	return err
}

// Get loads a job record by ID.
// Returns nil, nil if the job is unknown.
func (r *SQLiteJobRepository) Get(ctx context.Context, id uuid.UUID) (*pregen.JobRecord, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectJobColumns+` WHERE id = ?`, id.String())

	rec, err := scanSQLiteJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading job %s: %w", id, err)
	}
	return rec, nil
}

// ListRecent returns up to limit jobs, newest first.
func (r *SQLiteJobRepository) ListRecent(ctx context.Context, limit int) ([]pregen.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx, sqliteSelectJobColumns+` ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []pregen.JobRecord
	for rows.Next() {
		rec, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row rowScanner) (*pregen.JobRecord, error) {
	var (
		rec         pregen.JobRecord
		id          string
		submittedAt int64
		finishedAt  sql.NullInt64
	)
	err := row.Scan(
		&id, &rec.World, &rec.Shape,
		&rec.Bounds.XStart, &rec.Bounds.ZStart, &rec.Bounds.XEnd, &rec.Bounds.ZEnd, &rec.Radius,
		&rec.Speed, &rec.Lighting, &rec.State, &rec.Cells,
		&rec.TilesTotal, &rec.TilesDone, &rec.CellsLoaded, &rec.CellsLit, &rec.CellsReleased,
		&rec.Error, &submittedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing job id %q: %w", id, err)
	}
	rec.SubmittedAt = time.Unix(0, submittedAt)
	if finishedAt.Valid {
		rec.FinishedAt = time.Unix(0, finishedAt.Int64)
	}
	return &rec, nil
}
