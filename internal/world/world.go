package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownWorld is returned for operations on a world name that was never created.
var ErrUnknownWorld = errors.New("unknown world")

// ErrForeignHandle is returned when a handle was not issued by this provider.
var ErrForeignHandle = errors.New("handle not issued by this provider")

// World is an in-memory world: a set of resident columns keyed by cell
// position, the viewers that keep some of them pinned, and the transient
// entities spawned into them.
type World struct {
	name      string
	gen       Generator
	maxHeight int
	ids       *EntityIDGenerator

	mu       sync.RWMutex
	columns  map[CellPos]*Column
	pins     map[CellPos]int    // cell → number of viewers keeping it loaded
	entities map[uint32]CellPos // entityID → cell the entity lives in

	generated int // columns produced by the generator (loads of non-resident cells)
	markers   int // light markers spawned over the world lifetime
}

// NewWorld creates an empty world. A nil generator produces a void world;
// maxHeight <= 0 selects DefaultMaxHeight.
func NewWorld(name string, gen Generator, maxHeight int) *World {
	if gen == nil {
		gen = NopGenerator{}
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	return &World{
		name:      name,
		gen:       gen,
		maxHeight: max(maxHeight, CellSpan),
		ids:       NewEntityIDGenerator(),
		columns:   make(map[CellPos]*Column),
		pins:      make(map[CellPos]int),
		entities:  make(map[uint32]CellPos),
	}
}

// Name returns the world name.
func (w *World) Name() string {
	return w.name
}

// MaxHeight returns the build limit of the world.
func (w *World) MaxHeight() int {
	return w.maxHeight
}

// IsResident reports whether the cell is currently loaded.
func (w *World) IsResident(pos CellPos) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.columns[pos]
	return ok
}

// Load returns the column at pos, generating it if it is not resident.
// Loading an already resident cell returns the existing column.
func (w *World) Load(pos CellPos) *Column {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadLocked(pos)
}

func (w *World) loadLocked(pos CellPos) *Column {
	if c, ok := w.columns[pos]; ok {
		return c
	}
	c := newColumn(w, pos, w.maxHeight)
	w.gen.GenerateColumn(pos, c)
	w.columns[pos] = c
	w.generated++
	return c
}

// Unload выгружает колонку в pos, если её не держит наблюдатель.
// Возвращает true, если после вызова ячейка не загружена.
func (w *World) Unload(pos CellPos) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.columns[pos]; !ok {
		return true
	}
	if w.pins[pos] > 0 {
		return false
	}
	delete(w.columns, pos)
	return true
}

// Pin регистрирует наблюдателя в pos и при необходимости загружает ячейку.
// Пока остаётся хотя бы один наблюдатель, ячейку выгрузить нельзя.
// Возвращает ID наблюдателя.
func (w *World) Pin(pos CellPos) uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.loadLocked(pos)
	w.pins[pos]++
	id := w.ids.NextViewerID()
	w.entities[id] = pos
	return id
}

// Unpin removes a viewer previously returned by Pin. The cell stays resident
// until someone unloads it.
func (w *World) Unpin(viewerID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, ok := w.entities[viewerID]
	if !ok || IsMarkerID(viewerID) {
		return
	}
	delete(w.entities, viewerID)
	if w.pins[pos] <= 1 {
		delete(w.pins, pos)
		return
	}
	w.pins[pos]--
}

// ResidentCount returns the number of resident cells.
func (w *World) ResidentCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.columns)
}

// GeneratedCount returns how many columns the generator has produced.
func (w *World) GeneratedCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generated
}

// EntityCount returns the number of live entities (viewers and markers).
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// MarkersSpawned returns how many light markers were ever spawned.
func (w *World) MarkersSpawned() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.markers
}

// ForceLightingToggle forces a light update on every block column of c.
//
// A marker entity is spawned inside the cell so the cell is treated as active,
// then the block at the build limit of each column is toggled between solid
// and empty, which makes skylight for that column recompute. The original
// blocks are restored and the marker is removed before returning, so the
// visible block state is unchanged.
func (w *World) ForceLightingToggle(c *Column) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.columns[c.pos] != c {
		return fmt.Errorf("forcing light in %s: cell %v is not resident", w.name, c.pos)
	}

	marker := w.ids.NextMarkerID()
	w.entities[marker] = c.pos
	w.markers++

	saved := c.top
	for i := range ColumnArea {
		if c.top[i].IsEmpty() {
			c.top[i] = BlockStone
		} else {
			c.top[i] = BlockAir
		}
		c.relightColumn(i)
	}
	c.top = saved
	c.relightAll()

	delete(w.entities, marker)

	slog.Debug("light toggled", "world", w.name, "cell", c.pos)
	return nil
}

// RecomputeLighting recomputes skylight for every block column of c without
// touching blocks.
func (w *World) RecomputeLighting(c *Column) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.columns[c.pos] != c {
		return fmt.Errorf("recomputing light in %s: cell %v is not resident", w.name, c.pos)
	}
	c.relightAll()
	return nil
}
