package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pregen/internal/pregen"
)

// JobRepository хранит историю заданий генерации в PostgreSQL.
// Реализует pregen.Recorder.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const upsertJobQuery = `
	INSERT INTO job_runs (
		id, world, shape, x_start, z_start, x_end, z_end, radius,
		speed, lighting, state, cells,
		tiles_total, tiles_done, cells_loaded, cells_lit, cells_released,
		error, submitted_at, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (id) DO UPDATE SET
		state          = EXCLUDED.state,
		tiles_done     = EXCLUDED.tiles_done,
		cells_loaded   = EXCLUDED.cells_loaded,
		cells_lit      = EXCLUDED.cells_lit,
		cells_released = EXCLUDED.cells_released,
		error          = EXCLUDED.error,
		finished_at    = EXCLUDED.finished_at
`

const selectJobColumns = `
	SELECT id::text, world, shape, x_start, z_start, x_end, z_end, radius,
		speed, lighting, state, cells,
		tiles_total, tiles_done, cells_loaded, cells_lit, cells_released,
		error, submitted_at, finished_at
	FROM job_runs
`

// RecordSubmitted stores a newly admitted job.
func (r *JobRepository) RecordSubmitted(ctx context.Context, rec pregen.JobRecord) error {
	if err := r.upsert(ctx, rec); err != nil {
		return fmt.Errorf("recording submitted job %s: %w", rec.ID, err)
	}
	return nil
}

// RecordFinished stores the final state of a job.
func (r *JobRepository) RecordFinished(ctx context.Context, rec pregen.JobRecord) error {
	if err := r.upsert(ctx, rec); err != nil {
		return fmt.Errorf("recording finished job %s: %w", rec.ID, err)
	}
	return nil
}

func (r *JobRepository) upsert(ctx context.Context, rec pregen.JobRecord) error {
	var finishedAt *time.Time
	if !rec.FinishedAt.IsZero() {
		finishedAt = &rec.FinishedAt
	}

	_, err := r.pool.Exec(ctx, upsertJobQuery,
		rec.ID.String(), rec.World, rec.Shape,
		rec.Bounds.XStart, rec.Bounds.ZStart, rec.Bounds.XEnd, rec.Bounds.ZEnd, rec.Radius,
		rec.Speed, rec.Lighting, rec.State, rec.Cells,
		rec.TilesTotal, rec.TilesDone, rec.CellsLoaded, rec.CellsLit, rec.CellsReleased,
		rec.Error, rec.SubmittedAt, finishedAt,
	)
	return err
}

// Get загружает запись задания по ID.
// Возвращает nil, nil, если задание не найдено.
func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (*pregen.JobRecord, error) {
	row := r.pool.QueryRow(ctx, selectJobColumns+` WHERE id = $1`, id.String())

	rec, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading job %s: %w", id, err)
	}
	return rec, nil
}

// ListRecent возвращает до limit заданий, новые первыми.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]pregen.JobRecord, error) {
	rows, err := r.pool.Query(ctx, selectJobColumns+` ORDER BY submitted_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []pregen.JobRecord
	for rows.Next() {
		rec, err := scanJobRow(rows)
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

func scanJobRow(row pgx.Row) (*pregen.JobRecord, error) {
	var (
		rec        pregen.JobRecord
		id         string
		finishedAt *time.Time
	)
	err := row.Scan(
		&id, &rec.World, &rec.Shape,
		&rec.Bounds.XStart, &rec.Bounds.ZStart, &rec.Bounds.XEnd, &rec.Bounds.ZEnd, &rec.Radius,
		&rec.Speed, &rec.Lighting, &rec.State, &rec.Cells,
		&rec.TilesTotal, &rec.TilesDone, &rec.CellsLoaded, &rec.CellsLit, &rec.CellsReleased,
		&rec.Error, &rec.SubmittedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing job id %q: %w", id, err)
	}
	if finishedAt != nil {
		rec.FinishedAt = *finishedAt
	}
	return &rec, nil
}
