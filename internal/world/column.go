package world

// Block is the state of a single block in the top layer of a column.
type Block uint8

const (
	BlockAir Block = iota
	BlockStone
)

// IsEmpty reports whether the block lets skylight through.
func (b Block) IsEmpty() bool {
	return b == BlockAir
}

// Handle is the opaque reference to a resident cell returned by a provider.
type Handle interface {
	Pos() CellPos
}

// Column holds the resident data of one cell: the surface heightmap, the
// blocks at the build limit, and the skylight state derived from both.
// A Column is owned by its World and guarded by the world's lock.
type Column struct {
	w         *World
	pos       CellPos
	maxHeight int

	heights [ColumnArea]int16
	top     [ColumnArea]Block

	// skylight[i] is the height at which skylight stops in block column i.
	skylight   [ColumnArea]int16
	lightValid bool
	relights   int
}

func newColumn(w *World, pos CellPos, maxHeight int) *Column {
	return &Column{
		w:         w,
		pos:       pos,
		maxHeight: maxHeight,
	}
}

// Pos returns the cell position of the column.
func (c *Column) Pos() CellPos {
	return c.pos
}

// World returns the world the column belongs to.
func (c *Column) World() *World {
	return c.w
}

// index maps local block coordinates (0..15) to the column arrays.
func index(x, z int) int {
	return z*CellSpan + x
}

// TopBlock returns the block at the build limit for local coordinates (x, z).
func (c *Column) TopBlock(x, z int) Block {
	c.w.mu.RLock()
	defer c.w.mu.RUnlock()
	return c.top[index(x, z)]
}

// LightValid reports whether skylight has been computed for every block column.
func (c *Column) LightValid() bool {
	c.w.mu.RLock()
	defer c.w.mu.RUnlock()
	return c.lightValid
}

// Relights returns how many times the column light was recomputed.
func (c *Column) Relights() int {
	c.w.mu.RLock()
	defer c.w.mu.RUnlock()
	return c.relights
}

// relightColumn recomputes skylight for one block column. Caller holds w.mu.
func (c *Column) relightColumn(i int) {
	if !c.top[i].IsEmpty() {
		c.skylight[i] = int16(c.maxHeight - 1)
		return
	}
	c.skylight[i] = c.heights[i]
}

// relightAll recomputes skylight for every block column. Caller holds w.mu.
func (c *Column) relightAll() {
	for i := range ColumnArea {
		c.relightColumn(i)
	}
	c.lightValid = true
	c.relights++
}
