package world

import "fmt"

// Grid constants.
const (
	// CellSpan is the width of one cell (column) in world units.
	CellSpan = 16

	// ColumnArea is the number of block columns inside one cell.
	ColumnArea = CellSpan * CellSpan

	// DefaultMaxHeight is the build limit used when a world is created without one.
	DefaultMaxHeight = 256
)

// CellPos is the grid position of a cell: [x, z].
type CellPos [2]int32

// X returns the cell X index.
func (p CellPos) X() int32 {
	return p[0]
}

// Z returns the cell Z index.
func (p CellPos) Z() int32 {
	return p[1]
}

// String implements fmt.Stringer.
func (p CellPos) String() string {
	return fmt.Sprintf("(%d, %d)", p[0], p[1])
}

// Neighbours returns the Moore neighbourhood of the cell (8 cells, centre excluded).
// Order is row-major: z-1 row first, then the z row, then z+1.
func (p CellPos) Neighbours() [8]CellPos {
	var out [8]CellPos
	i := 0
	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			out[i] = CellPos{p[0] + dx, p[1] + dz}
			i++
		}
	}
	return out
}

// ToCell converts a world coordinate to a cell index.
// Non-negative coordinates round toward +inf, negative ones toward -inf,
// so the conversion always expands away from the origin:
//
//	ToCell(0) = 0, ToCell(1) = 1, ToCell(16) = 1, ToCell(17) = 2
//	ToCell(-1) = -1, ToCell(-16) = -1, ToCell(-17) = -2
//
// Works in int64 so the int32 extremes do not wrap.
func ToCell(coord int32) int32 {
	c := int64(coord)
	if c >= 0 {
		return int32((c + CellSpan - 1) / CellSpan)
	}
	return int32(-((-c + CellSpan - 1) / CellSpan))
}

// CellOrigin returns the world coordinate of the cell's minimum corner.
func CellOrigin(cell int32) int32 {
	return cell * CellSpan
}
