package pregen

import (
	"fmt"

	"github.com/udisondev/pregen/internal/world"
)

// Cell is one grid cell owned by a job. The handle is set while the job
// holds the cell loaded.
type Cell struct {
	pos          world.CellPos
	handle       world.Handle
	lightingDone bool
}

func newCell(pos world.CellPos) *Cell {
	return &Cell{pos: pos}
}

// Pos returns the cell position.
func (c *Cell) Pos() world.CellPos {
	return c.pos
}

// LightingDone reports whether the lighting fix ran on this cell.
func (c *Cell) LightingDone() bool {
	return c.lightingDone
}

func (c *Cell) load(p Provider, worldName string) error {
	h, err := p.LoadCell(worldName, c.pos)
	if err != nil {
		return fmt.Errorf("loading cell %v: %w", c.pos, err)
	}
	c.handle = h
	return nil
}

// neighboursResident reports whether the full Moore neighbourhood is loaded.
func (c *Cell) neighboursResident(p Provider, worldName string) bool {
	for _, n := range c.pos.Neighbours() {
		if !p.IsCellResident(worldName, n) {
			return false
		}
	}
	return true
}

// fixLighting forces a light update when every neighbour is resident.
// Running it with a missing neighbour corrupts light at the border, so the
// cell is skipped instead; false is returned in that case.
func (c *Cell) fixLighting(p Provider, worldName string, policy Lighting) (bool, error) {
	if c.handle == nil || !c.neighboursResident(p, worldName) {
		return false, nil
	}

	var err error
	if r, ok := p.(LightRecomputer); ok && policy == LightingFullRecompute {
		err = r.RecomputeLighting(c.handle)
	} else {
		err = p.ForceLightingToggle(c.handle)
	}
	if err != nil {
		return false, fmt.Errorf("fixing light of cell %v: %w", c.pos, err)
	}

	c.lightingDone = true
	return true, nil
}

// release tries to get the cell unloaded. A cell that is no longer resident
// counts as released. False means the world refused (the cell is pinned).
func (c *Cell) release(p Provider, worldName string) (bool, error) {
	if !p.IsCellResident(worldName, c.pos) {
		c.handle = nil
		return true, nil
	}
	ok, err := p.RequestUnload(worldName, c.pos)
	if err != nil {
		return false, fmt.Errorf("unloading cell %v: %w", c.pos, err)
	}
	if ok {
		c.handle = nil
	}
	return ok, nil
}
