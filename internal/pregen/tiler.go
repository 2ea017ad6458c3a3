package pregen

import "fmt"

// Overlap is how many cells adjacent tiles share along a common edge.
// With two shared cells every cell away from the area border has its full
// 3×3 neighbourhood inside at least one tile.
const Overlap = 2

// Bounds is an inclusive rectangle in grid (cell) coordinates.
type Bounds struct {
	XStart, ZStart int32
	XEnd, ZEnd     int32
}

// Empty reports whether the bounds are inverted on either axis.
func (b Bounds) Empty() bool {
	return b.XEnd < b.XStart || b.ZEnd < b.ZStart
}

// Cells returns the number of cells inside the bounds.
func (b Bounds) Cells() int {
	if b.Empty() {
		return 0
	}
	return (int(b.XEnd) - int(b.XStart) + 1) * (int(b.ZEnd) - int(b.ZStart) + 1)
}

// Contains reports whether the cell (x, z) lies inside the bounds.
func (b Bounds) Contains(x, z int32) bool {
	return x >= b.XStart && x <= b.XEnd && z >= b.ZStart && z <= b.ZEnd
}

// String implements fmt.Stringer.
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d..%d,%d]", b.XStart, b.ZStart, b.XEnd, b.ZEnd)
}

// Circle is a disc mask in grid coordinates.
type Circle struct {
	XCenter, ZCenter int32
	Radius           int32
}

// Tile is one batch of cells processed by a single Advance call.
// Tiles are immutable; Mask is shared between all tiles of an area.
type Tile struct {
	Bounds
	Mask *Circle
}

// TileArea splits the area into row-major overlapping tiles sized by speed.
//
// Each tile spans side+Overlap cells and consecutive tile origins are side
// cells apart, so neighbours share Overlap cells. The last tile of each row
// and column is clipped to the area. The returned count is the number of
// cells of the unmasked rectangle, used for conservative capacity checks.
// Degenerate input (inverted bounds, negative radius) yields no tiles.
func TileArea(area Bounds, mask *Circle, speed Speed) ([]Tile, int) {
	if area.Empty() || (mask != nil && mask.Radius < 0) {
		return nil, 0
	}

	side := speed.TileSide()
	span := side + Overlap

	var tiles []Tile
	for z1 := area.ZStart; ; z1 += side {
		z2 := min(z1+span-1, area.ZEnd)
		for x1 := area.XStart; ; x1 += side {
			x2 := min(x1+span-1, area.XEnd)
			tiles = append(tiles, Tile{
				Bounds: Bounds{XStart: x1, ZStart: z1, XEnd: x2, ZEnd: z2},
				Mask:   mask,
			})
			if x2 >= area.XEnd {
				break
			}
		}
		if z2 >= area.ZEnd {
			break
		}
	}

	return tiles, area.Cells()
}

// MaxTileCells returns the largest number of cells a single tile of this
// speed can hold.
func MaxTileCells(speed Speed) int {
	span := int(speed.TileSide() + Overlap)
	return span * span
}
