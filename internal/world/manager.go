package world

import (
	"fmt"
	"sort"
	"sync"
)

// Manager holds the named worlds of a server and exposes them through the
// cell-level capability set the pre-generation scheduler consumes.
type Manager struct {
	mu     sync.RWMutex
	worlds map[string]*World
}

// NewManager creates a manager without worlds.
func NewManager() *Manager {
	return &Manager{
		worlds: make(map[string]*World),
	}
}

// Add registers w under its name. Names are unique.
func (m *Manager) Add(w *World) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.worlds[w.Name()]; ok {
		return fmt.Errorf("world %q already exists", w.Name())
	}
	m.worlds[w.Name()] = w
	return nil
}

// World returns the world registered under name.
func (m *Manager) World(name string) (*World, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[name]
	return w, ok
}

// Names returns registered world names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.worlds))
	for name := range m.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) lookup(name string) (*World, error) {
	w, ok := m.World(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorld, name)
	}
	return w, nil
}

// HasWorld reports whether a world with this name exists.
func (m *Manager) HasWorld(name string) bool {
	_, ok := m.World(name)
	return ok
}

// IsCellResident reports whether the cell is loaded. Unknown worlds have no
// resident cells.
func (m *Manager) IsCellResident(name string, pos CellPos) bool {
	w, ok := m.World(name)
	if !ok {
		return false
	}
	return w.IsResident(pos)
}

// LoadCell loads (or generates) the cell and returns its handle.
func (m *Manager) LoadCell(name string, pos CellPos) (Handle, error) {
	w, err := m.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("loading cell %v: %w", pos, err)
	}
	return w.Load(pos), nil
}

// RequestUnload asks the world to drop the cell. It returns false when a
// viewer still pins the cell.
func (m *Manager) RequestUnload(name string, pos CellPos) (bool, error) {
	w, err := m.lookup(name)
	if err != nil {
		return false, fmt.Errorf("unloading cell %v: %w", pos, err)
	}
	return w.Unload(pos), nil
}

// ForceLightingToggle forces a light update through the block-toggle path.
func (m *Manager) ForceLightingToggle(h Handle) error {
	c, ok := h.(*Column)
	if !ok || c == nil {
		return fmt.Errorf("forcing light: %w (%T)", ErrForeignHandle, h)
	}
	return c.w.ForceLightingToggle(c)
}

// RecomputeLighting recomputes the light of the cell from scratch.
func (m *Manager) RecomputeLighting(h Handle) error {
	c, ok := h.(*Column)
	if !ok || c == nil {
		return fmt.Errorf("recomputing light: %w (%T)", ErrForeignHandle, h)
	}
	return c.w.RecomputeLighting(c)
}

// ResidentCellCount returns the number of resident cells of the world.
func (m *Manager) ResidentCellCount(name string) (int, error) {
	w, err := m.lookup(name)
	if err != nil {
		return 0, fmt.Errorf("counting resident cells: %w", err)
	}
	return w.ResidentCount(), nil
}
