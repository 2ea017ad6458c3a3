package pregen

import (
	"context"
	"sync"

	"github.com/udisondev/pregen/internal/world"
)

const testWorld = "overworld"

type fakeHandle world.CellPos

func (h fakeHandle) Pos() world.CellPos { return world.CellPos(h) }

// fakeProvider records every call and keeps residency in a plain set.
type fakeProvider struct {
	worlds   map[string]bool
	resident map[world.CellPos]bool
	pinned   map[world.CellPos]bool
	hidden   map[world.CellPos]bool // reported as not resident even when loaded
	baseline int                    // resident cells owned by someone else

	loads      []world.CellPos
	toggles    []world.CellPos
	recomputes []world.CellPos
	unloads    int
	calls      int

	maxResident int
	violations  []world.CellPos // light fixes run with a missing neighbour

	loadErrAt  map[world.CellPos]error
	unloadErr  error
	toggleErr  error
	residentEr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		worlds:    map[string]bool{testWorld: true},
		resident:  make(map[world.CellPos]bool),
		pinned:    make(map[world.CellPos]bool),
		hidden:    make(map[world.CellPos]bool),
		loadErrAt: make(map[world.CellPos]error),
	}
}

func (p *fakeProvider) HasWorld(name string) bool {
	p.calls++
	return p.worlds[name]
}

func (p *fakeProvider) IsCellResident(_ string, pos world.CellPos) bool {
	p.calls++
	if p.hidden[pos] {
		return false
	}
	return p.resident[pos]
}

func (p *fakeProvider) LoadCell(_ string, pos world.CellPos) (world.Handle, error) {
	p.calls++
	if err := p.loadErrAt[pos]; err != nil {
		return nil, err
	}
	p.loads = append(p.loads, pos)
	p.resident[pos] = true
	p.maxResident = max(p.maxResident, len(p.resident))
	return fakeHandle(pos), nil
}

func (p *fakeProvider) RequestUnload(_ string, pos world.CellPos) (bool, error) {
	p.calls++
	if p.unloadErr != nil {
		return false, p.unloadErr
	}
	if p.pinned[pos] {
		return false, nil
	}
	delete(p.resident, pos)
	p.unloads++
	return true, nil
}

func (p *fakeProvider) checkNeighbours(pos world.CellPos) {
	for _, n := range pos.Neighbours() {
		if !p.resident[n] {
			p.violations = append(p.violations, pos)
			return
		}
	}
}

func (p *fakeProvider) ForceLightingToggle(h world.Handle) error {
	p.calls++
	if p.toggleErr != nil {
		return p.toggleErr
	}
	p.checkNeighbours(h.Pos())
	p.toggles = append(p.toggles, h.Pos())
	return nil
}

func (p *fakeProvider) ResidentCellCount(string) (int, error) {
	p.calls++
	if p.residentEr != nil {
		return 0, p.residentEr
	}
	return p.baseline + len(p.resident), nil
}

// fakeRecomputeProvider adds full light recomputation.
type fakeRecomputeProvider struct {
	*fakeProvider
}

func (p fakeRecomputeProvider) RecomputeLighting(h world.Handle) error {
	p.calls++
	p.checkNeighbours(h.Pos())
	p.recomputes = append(p.recomputes, h.Pos())
	return nil
}

type fakeTicker struct {
	fn         func(ctx context.Context)
	installs   int
	uninstalls int
}

func (t *fakeTicker) Install(fn func(ctx context.Context)) {
	t.fn = fn
	t.installs++
}

func (t *fakeTicker) Uninstall() {
	t.fn = nil
	t.uninstalls++
}

func (t *fakeTicker) installed() bool {
	return t.fn != nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	submitted []JobRecord
	finished  []JobRecord
	err       error
}

func (r *fakeRecorder) RecordSubmitted(_ context.Context, rec JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, rec)
	return r.err
}

func (r *fakeRecorder) RecordFinished(_ context.Context, rec JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, rec)
	return r.err
}

// runJob advances j until it completes or limit steps pass.
func runJob(j *Job, limit int) (steps int, err error) {
	for steps < limit {
		steps++
		done, err := j.Advance()
		if err != nil {
			return steps, err
		}
		if done {
			return steps, nil
		}
	}
	return steps, nil
}

// testJob builds a job through admission so the tiles match production.
func testJob(p Provider, req Request) (*Job, error) {
	d := NewDriver(p, &fakeTicker{}, nil, DefaultLimits())
	return d.admit(req)
}
