package pregen

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobRecord is the persisted summary of a job.
type JobRecord struct {
	ID       uuid.UUID
	World    string
	Shape    string
	Bounds   Bounds
	Radius   int32 // grid radius for disc areas, 0 otherwise
	Speed    string
	Lighting string
	State    string
	Cells    int

	TilesTotal    int
	TilesDone     int
	CellsLoaded   int
	CellsLit      int
	CellsReleased int
	Error         string

	SubmittedAt time.Time
	FinishedAt  time.Time // zero while the job has not finished
}

// Recorder keeps a history of jobs. Failures are logged by the driver and
// never stop generation.
type Recorder interface {
	RecordSubmitted(ctx context.Context, rec JobRecord) error
	RecordFinished(ctx context.Context, rec JobRecord) error
}

type nopRecorder struct{}

func (nopRecorder) RecordSubmitted(context.Context, JobRecord) error { return nil }
func (nopRecorder) RecordFinished(context.Context, JobRecord) error  { return nil }

// Record returns the job summary.
func (j *Job) Record() JobRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()

	p := j.progressLocked()
	rec := JobRecord{
		ID:            j.id,
		World:         j.world,
		Shape:         j.area.Shape.String(),
		Bounds:        j.bounds,
		Speed:         j.speed.String(),
		Lighting:      j.lighting.String(),
		State:         j.state.String(),
		Cells:         j.cells,
		TilesTotal:    p.TilesTotal,
		TilesDone:     p.TilesDone,
		CellsLoaded:   p.CellsLoaded,
		CellsLit:      p.CellsLit,
		CellsReleased: p.CellsReleased,
		SubmittedAt:   j.submittedAt,
		FinishedAt:    j.finishedAt,
	}
	if j.area.Shape == ShapeDisc {
		_, mask := j.area.Grid()
		rec.Radius = mask.Radius
	}
	if j.err != nil {
		rec.Error = j.err.Error()
	}
	return rec
}
