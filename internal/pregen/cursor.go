package pregen

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/udisondev/pregen/internal/world"
)

// Cursor walks the cells of one tile in row-major order. With a mask, cells
// farther than the radius from the centre are skipped. A cursor is not
// restartable: once Next reports false it stays exhausted.
type Cursor struct {
	tile   Tile
	x, z   int32
	done   bool
	center orb.Point
	radius float64
}

// NewCursor creates a cursor positioned before the first cell of t.
func NewCursor(t Tile) *Cursor {
	c := &Cursor{
		tile: t,
		x:    t.XStart,
		z:    t.ZStart,
		done: t.Empty(),
	}
	if t.Mask != nil {
		c.center = orb.Point{float64(t.Mask.XCenter), float64(t.Mask.ZCenter)}
		c.radius = float64(t.Mask.Radius)
	}
	return c
}

// Next returns the next cell position, or false when the tile is exhausted.
func (c *Cursor) Next() (world.CellPos, bool) {
	for !c.done {
		x, z := c.x, c.z

		c.x++
		if c.x > c.tile.XEnd {
			c.x = c.tile.XStart
			c.z++
			if c.z > c.tile.ZEnd {
				c.done = true
			}
		}

		if c.inMask(x, z) {
			return world.CellPos{x, z}, true
		}
	}
	return world.CellPos{}, false
}

func (c *Cursor) inMask(x, z int32) bool {
	if c.tile.Mask == nil {
		return true
	}
	return planar.Distance(orb.Point{float64(x), float64(z)}, c.center) <= c.radius
}
