package world

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Generator fills a freshly created column. A world calls it every time a
// cell that is not resident gets loaded.
type Generator interface {
	GenerateColumn(pos CellPos, c *Column)
}

// NopGenerator leaves columns empty (all air), producing a void world.
type NopGenerator struct{}

// GenerateColumn implements Generator.
func (NopGenerator) GenerateColumn(CellPos, *Column) {}

// HashGenerator derives terrain deterministically from a seed and the cell
// position: the same seed always produces the same column.
type HashGenerator struct {
	Seed int64
}

// GenerateColumn fills surface heights and the top layer of c.
func (g HashGenerator) GenerateColumn(pos CellPos, c *Column) {
	var in [16]byte
	binary.LittleEndian.PutUint64(in[0:8], uint64(g.Seed))
	binary.LittleEndian.PutUint32(in[8:12], uint32(pos.X()))
	binary.LittleEndian.PutUint32(in[12:16], uint32(pos.Z()))

	// 512 bytes of stream: two bytes per block column.
	xof, err := blake2b.NewXOF(2*ColumnArea, nil)
	if err != nil {
		// Only returned for invalid sizes or keys, both constant here.
		panic(err)
	}
	_, _ = xof.Write(in[:])
	var stream [2 * ColumnArea]byte
	_, _ = xof.Read(stream[:])

	base := c.maxHeight / 4
	for i := range ColumnArea {
		h := base + int(stream[2*i])%(c.maxHeight/4)
		c.heights[i] = int16(h)
		// Rare floating blocks at the build limit (sky structures).
		if stream[2*i+1] < 4 {
			c.top[i] = BlockStone
		}
	}
}
