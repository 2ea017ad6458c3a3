package pregen

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a job.
type State uint8

const (
	StateQueued State = iota
	StateActive
	StateDone
	StateCancelled
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of a job's counters.
type Progress struct {
	TilesTotal      int
	TilesDone       int
	TilesSkipped    int // dropped by cancellation before loading
	CellsLoaded     int
	CellsLit        int
	LightingSkipped int // neighbours not resident, light left as is
	CellsReleased   int
	ReleaseDeferred int // unload attempts refused by the world
	PendingLighting int
	PendingCleanup  int
}

// Job is one area request moving through load, lighting and cleanup.
// A job is advanced by exactly one caller at a time (the Driver). The state
// and progress accessors may be called from any goroutine.
type Job struct {
	id       uuid.UUID
	world    string
	area     Area
	bounds   Bounds
	speed    Speed
	lighting Lighting
	cells    int // unmasked cell count of the area

	provider Provider

	mu              sync.RWMutex
	pendingTiles    []Tile
	pendingLighting []*Cell
	pendingCleanup  []*Cell

	generationDone bool
	cancelled      bool

	state       State
	err         error
	progress    Progress
	submittedAt time.Time
	finishedAt  time.Time
}

func newJob(req Request, bounds Bounds, tiles []Tile, cells int, p Provider) *Job {
	return &Job{
		id:           uuid.New(),
		world:        req.World,
		area:         req.Area,
		bounds:       bounds,
		speed:        req.Speed,
		lighting:     req.Lighting,
		cells:        cells,
		provider:     p,
		pendingTiles: tiles,
		state:        StateQueued,
		progress:     Progress{TilesTotal: len(tiles)},
		submittedAt:  time.Now(),
	}
}

// ID returns the job identifier.
func (j *Job) ID() uuid.UUID { return j.id }

// World returns the target world name.
func (j *Job) World() string { return j.world }

// Area returns the requested area in world coordinates.
func (j *Job) Area() Area { return j.area }

// Bounds returns the requested area in grid coordinates.
func (j *Job) Bounds() Bounds { return j.bounds }

// Speed returns the speed profile.
func (j *Job) Speed() Speed { return j.speed }

// Lighting returns the lighting policy.
func (j *Job) Lighting() Lighting { return j.lighting }

// Cells returns the unmasked cell count of the area.
func (j *Job) Cells() int { return j.cells }

// State returns the lifecycle state.
func (j *Job) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// Err returns the error that failed the job, if any.
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// Progress returns a snapshot of the job counters.
func (j *Job) Progress() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progressLocked()
}

func (j *Job) progressLocked() Progress {
	p := j.progress
	p.PendingLighting = len(j.pendingLighting)
	p.PendingCleanup = len(j.pendingCleanup)
	return p
}

// Resident returns how many cells the job currently tracks as loaded.
func (j *Job) Resident() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.pendingLighting) + len(j.pendingCleanup)
}

// setState moves the job to s. Terminal states stamp finishedAt.
func (j *Job) setState(s State, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = s
	j.err = err
	if s == StateDone || s == StateCancelled || s == StateFailed {
		j.finishedAt = time.Now()
	}
}

// Advance performs one step of work and reports whether the job is complete.
//
// In priority order a step either drains the lighting queue, loads one whole
// tile, or marks generation finished. Every step then retries the release of
// all cells awaiting cleanup. The job is complete only when generation is
// finished and no cell is left awaiting release.
func (j *Job) Advance() (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case len(j.pendingLighting) > 0:
		if err := j.drainLighting(); err != nil {
			return false, err
		}
	case len(j.pendingTiles) > 0:
		if err := j.loadNextTile(); err != nil {
			return false, err
		}
	default:
		j.generationDone = true
	}

	if err := j.sweepCleanup(); err != nil {
		return false, err
	}

	return j.generationDone && len(j.pendingCleanup) == 0, nil
}

// Cancel drops the tiles that have not been loaded yet. Cells already loaded
// keep going through lighting and cleanup on later steps.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelled {
		return
	}
	j.cancelled = true
	j.progress.TilesSkipped += len(j.pendingTiles)
	j.pendingTiles = nil
}

// Cancelled reports whether Cancel was called.
func (j *Job) Cancelled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.cancelled
}

// onlyCleanupLeft reports whether the remaining work is waiting on releases.
func (j *Job) onlyCleanupLeft() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.generationDone && len(j.pendingLighting) == 0 && len(j.pendingTiles) == 0
}

// abandon stops the job for good after a fatal error. Unloaded tiles are
// dropped, lighting is skipped, and every cell the job still holds gets one
// release attempt. Returns how many cells stayed resident.
func (j *Job) abandon() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.progress.TilesSkipped += len(j.pendingTiles)
	j.pendingTiles = nil
	j.generationDone = true

	held := append(j.pendingCleanup, j.pendingLighting...)
	j.pendingLighting = nil

	var (
		kept     []*Cell
		firstErr error
	)
	for _, c := range held {
		ok, err := c.release(j.provider, j.world)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			kept = append(kept, c)
			continue
		}
		if !ok {
			j.progress.ReleaseDeferred++
			kept = append(kept, c)
			continue
		}
		j.progress.CellsReleased++
	}
	if firstErr != nil {
		slog.Warn("releasing cells of failed job", "job", j.id, "error", firstErr)
	}
	j.pendingCleanup = kept
	return len(kept)
}

func (j *Job) drainLighting() error {
	for i, c := range j.pendingLighting {
		fixed, err := c.fixLighting(j.provider, j.world, j.lighting)
		j.pendingCleanup = append(j.pendingCleanup, c)
		if err != nil {
			j.pendingLighting = j.pendingLighting[i+1:]
			return err
		}
		if fixed {
			j.progress.CellsLit++
		} else {
			j.progress.LightingSkipped++
			slog.Debug("lighting skipped, neighbours not resident", "job", j.id, "cell", c.pos)
		}
	}
	j.pendingLighting = j.pendingLighting[:0]

	slog.Debug("lighting drained",
		"job", j.id,
		"lit", j.progress.CellsLit,
		"skipped", j.progress.LightingSkipped)
	return nil
}

func (j *Job) loadNextTile() error {
	tile := j.pendingTiles[0]
	j.pendingTiles = j.pendingTiles[1:]

	cur := NewCursor(tile)
	loaded := 0
	for pos, ok := cur.Next(); ok; pos, ok = cur.Next() {
		c := newCell(pos)
		if err := c.load(j.provider, j.world); err != nil {
			return err
		}
		loaded++
		j.progress.CellsLoaded++
		if j.lighting == LightingNone {
			j.pendingCleanup = append(j.pendingCleanup, c)
		} else {
			j.pendingLighting = append(j.pendingLighting, c)
		}
	}
	j.progress.TilesDone++

	slog.Debug("tile loaded",
		"job", j.id,
		"tile", tile.Bounds,
		"cells", loaded,
		"tilesDone", j.progress.TilesDone,
		"tilesTotal", j.progress.TilesTotal)
	return nil
}

func (j *Job) sweepCleanup() error {
	kept := j.pendingCleanup[:0]
	for i, c := range j.pendingCleanup {
		ok, err := c.release(j.provider, j.world)
		if err != nil {
			// Keep this cell and every one not yet visited.
			kept = append(kept, j.pendingCleanup[i:]...)
			j.pendingCleanup = kept
			return err
		}
		if ok {
			j.progress.CellsReleased++
			continue
		}
		j.progress.ReleaseDeferred++
		kept = append(kept, c)
	}
	clear(j.pendingCleanup[len(kept):])
	j.pendingCleanup = kept
	return nil
}
