package pregen

import "github.com/udisondev/pregen/internal/world"

// Provider is the world-side capability set the scheduler drives.
// Admission runs on the submitting goroutine while ticks advance the
// active job, so implementations must be safe for concurrent use.
type Provider interface {
	// HasWorld reports whether the world exists. Side-effect free.
	HasWorld(name string) bool
	// IsCellResident reports whether the cell is loaded. Side-effect free.
	IsCellResident(name string, pos world.CellPos) bool
	// LoadCell loads or generates the cell. Idempotent for resident cells.
	LoadCell(name string, pos world.CellPos) (world.Handle, error)
	// RequestUnload asks the world to drop the cell. False means something
	// outside the scheduler still needs it.
	RequestUnload(name string, pos world.CellPos) (bool, error)
	// ForceLightingToggle forces a light update of the cell. It must leave
	// the visible block state unchanged.
	ForceLightingToggle(h world.Handle) error
	// ResidentCellCount returns the number of loaded cells of the world.
	ResidentCellCount(name string) (int, error)
}

// LightRecomputer is implemented by providers able to recompute a cell's
// light from scratch. Used by LightingFullRecompute.
type LightRecomputer interface {
	RecomputeLighting(h world.Handle) error
}
