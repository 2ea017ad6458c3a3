package pregen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Ticker installs and removes the periodic callback that drives the active
// job. The tick source itself (cadence, goroutine) belongs to the caller.
type Ticker interface {
	Install(fn func(ctx context.Context))
	Uninstall()
}

// Limits configures the admission capacity check.
type Limits struct {
	// MinHeadroom is the smallest explicit ceiling accepted above the
	// world's current resident count.
	MinHeadroom int
	// DefaultHeadroom is added to the resident count when the request
	// carries no ceiling of its own.
	DefaultHeadroom int
}

// DefaultLimits returns Limits with 200 minimum and 800 default headroom.
func DefaultLimits() Limits {
	return Limits{
		MinHeadroom:     200,
		DefaultHeadroom: 800,
	}
}

// Request is a fully resolved generation request.
type Request struct {
	World    string
	Area     Area
	Speed    Speed
	Lighting Lighting
	// MaxResident caps the world's resident cell count; <= 0 computes a
	// ceiling from DefaultHeadroom.
	MaxResident int
}

// Driver owns the job queue and the tick callback. At most one job is active;
// the others wait in submission order. All methods are safe for concurrent
// use, and Advance of the active job never overlaps with itself.
type Driver struct {
	provider Provider
	ticker   Ticker
	recorder Recorder
	limits   Limits

	mu        sync.Mutex
	active    *Job
	queue     []*Job
	installed bool
	idle      chan struct{} // closed while no job is active
}

// NewDriver creates a driver. A nil recorder disables job history.
func NewDriver(p Provider, t Ticker, rec Recorder, limits Limits) *Driver {
	if rec == nil {
		rec = nopRecorder{}
	}
	idle := make(chan struct{})
	close(idle)
	return &Driver{
		provider: p,
		ticker:   t,
		recorder: rec,
		limits:   limits,
		idle:     idle,
	}
}

// Submit validates the request and queues the resulting job. The job becomes
// active at once when nothing else runs. A rejected request returns a
// *RejectError and changes nothing.
func (d *Driver) Submit(ctx context.Context, req Request) (*Job, error) {
	job, err := d.admit(req)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.active == nil {
		d.activate(job)
	} else {
		d.queue = append(d.queue, job)
	}
	queued := len(d.queue)
	rec := job.Record()
	d.mu.Unlock()

	slog.Info("generation job submitted",
		"job", job.ID(),
		"world", job.World(),
		"bounds", job.Bounds(),
		"cells", job.Cells(),
		"tiles", rec.TilesTotal,
		"speed", job.Speed(),
		"lighting", job.Lighting(),
		"queued", queued)

	if err := d.recorder.RecordSubmitted(ctx, rec); err != nil {
		slog.Warn("recording submitted job", "job", job.ID(), "error", err)
	}
	return job, nil
}

func (d *Driver) admit(req Request) (*Job, error) {
	if err := req.Area.validate(); err != nil {
		return nil, err
	}
	if !req.Speed.Valid() {
		return nil, reject(ErrInvalidSpeed, "unknown speed %v", req.Speed)
	}
	if !req.Lighting.Valid() {
		return nil, reject(ErrInvalidLighting, "unknown lighting policy %v", req.Lighting)
	}
	if !d.provider.HasWorld(req.World) {
		return nil, reject(ErrUnknownWorld, "world %q does not exist", req.World)
	}

	resident, err := d.provider.ResidentCellCount(req.World)
	if err != nil {
		return nil, fmt.Errorf("admitting request for world %q: %w", req.World, err)
	}

	bounds, mask := req.Area.Grid()
	cells := bounds.Cells()

	ceiling := req.MaxResident
	if ceiling <= 0 {
		ceiling = resident + d.limits.DefaultHeadroom
	} else if ceiling < resident+d.limits.MinHeadroom {
		return nil, reject(ErrCapacity,
			"maxLoadedChunks too low, there are already %d chunks loaded - need a value of at least %d",
			resident, resident+d.limits.MinHeadroom)
	}

	// Pinned cells can hold cleanup back, so the whole unmasked area counts.
	if need := resident + cells; need > ceiling {
		return nil, reject(ErrCapacity,
			"area covers %d chunks and %d are already loaded, above the limit of %d",
			cells, resident, ceiling)
	}

	tiles, _ := TileArea(bounds, mask, req.Speed)
	return newJob(req, bounds, tiles, cells, d.provider), nil
}

// Cancel drops every queued job and stops the active job from loading new
// tiles. The active job keeps ticking until the cells it loaded are released.
// Returns false when there was nothing to cancel.
func (d *Driver) Cancel(ctx context.Context) bool {
	d.mu.Lock()
	if d.active == nil && len(d.queue) == 0 {
		d.mu.Unlock()
		return false
	}

	dropped := d.queue
	d.queue = nil
	records := make([]JobRecord, 0, len(dropped))
	for _, job := range dropped {
		job.Cancel()
		job.setState(StateCancelled, nil)
		records = append(records, job.Record())
	}

	var activeID string
	if d.active != nil {
		d.active.Cancel()
		activeID = d.active.ID().String()
	}
	d.mu.Unlock()

	slog.Info("generation cancelled, waiting for loaded cells to unload",
		"active", activeID,
		"dropped", len(dropped))

	for _, rec := range records {
		if err := d.recorder.RecordFinished(ctx, rec); err != nil {
			slog.Warn("recording cancelled job", "job", rec.ID, "error", err)
		}
	}
	return true
}

// OnTick advances the active job by one step. It is a no-op while no job is
// active, so a late tick after teardown does nothing.
//
// A provider failure fails the active job, drops the queue and uninstalls the
// callback before the error is returned.
func (d *Driver) OnTick(ctx context.Context) error {
	d.mu.Lock()

	job := d.active
	if job == nil {
		d.mu.Unlock()
		return nil
	}

	done, err := job.Advance()
	for err == nil && !done && job.speed == SpeedAllAtOnce && !job.onlyCleanupLeft() {
		done, err = job.Advance()
	}

	if err != nil {
		records := d.failLocked(job, err)
		d.mu.Unlock()

		slog.Error("generation job failed", "job", job.ID(), "world", job.World(), "error", err)
		d.recordFinished(ctx, records...)
		return fmt.Errorf("advancing job %s: %w", job.ID(), err)
	}

	if !done {
		d.mu.Unlock()
		return nil
	}

	if job.Cancelled() {
		job.setState(StateCancelled, nil)
	} else {
		job.setState(StateDone, nil)
	}
	rec := job.Record()

	var next *Job
	if len(d.queue) > 0 {
		next = d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.activate(next)
	} else {
		d.teardown()
	}
	d.mu.Unlock()

	p := job.Progress()
	slog.Info("generation job finished",
		"job", job.ID(),
		"state", rec.State,
		"tiles", p.TilesDone,
		"loaded", p.CellsLoaded,
		"lit", p.CellsLit,
		"lightingSkipped", p.LightingSkipped,
		"released", p.CellsReleased,
		"elapsed", rec.FinishedAt.Sub(rec.SubmittedAt).Round(time.Millisecond))
	if next != nil {
		slog.Info("generation job activated", "job", next.ID(), "world", next.World())
	}

	d.recordFinished(ctx, rec)
	return nil
}

// Active returns the active job, or nil.
func (d *Driver) Active() *Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Queued returns the number of jobs waiting behind the active one.
func (d *Driver) Queued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Running reports whether the tick callback is installed.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.installed
}

// WaitIdle blocks until no job is active or ctx is done.
func (d *Driver) WaitIdle(ctx context.Context) error {
	d.mu.Lock()
	idle := d.idle
	d.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// activate makes job the active one and installs the callback if needed.
// Caller holds d.mu.
func (d *Driver) activate(job *Job) {
	job.setState(StateActive, nil)
	d.active = job
	if d.installed {
		return
	}
	d.installed = true
	d.idle = make(chan struct{})
	d.ticker.Install(d.tick)
}

// teardown сбрасывает активное задание и снимает callback. Вызывается под d.mu.
func (d *Driver) teardown() {
	d.active = nil
	if !d.installed {
		return
	}
	d.installed = false
	d.ticker.Uninstall()
	close(d.idle)
}

// failLocked marks job failed, releases what it still holds, drops the queue
// and tears down. Caller holds d.mu.
func (d *Driver) failLocked(job *Job, err error) []JobRecord {
	if left := job.abandon(); left > 0 {
		slog.Warn("failed job left cells resident", "job", job.ID(), "world", job.World(), "cells", left)
	}
	job.setState(StateFailed, err)

	records := []JobRecord{job.Record()}
	for _, q := range d.queue {
		q.Cancel()
		q.setState(StateCancelled, nil)
		records = append(records, q.Record())
	}
	d.queue = nil
	d.teardown()
	return records
}

func (d *Driver) recordFinished(ctx context.Context, records ...JobRecord) {
	for _, rec := range records {
		if err := d.recorder.RecordFinished(ctx, rec); err != nil {
			slog.Warn("recording finished job", "job", rec.ID, "error", err)
		}
	}
}

// tick is the installed callback.
func (d *Driver) tick(ctx context.Context) {
	if err := d.OnTick(ctx); err != nil {
		slog.Error("generation tick", "error", err)
	}
}

// Progress returns the progress of the active job.
func (d *Driver) Progress() (Progress, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return Progress{}, false
	}
	return d.active.Progress(), true
}
