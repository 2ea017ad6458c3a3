package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCell(t *testing.T) {
	tests := []struct {
		name  string
		coord int32
		want  int32
	}{
		{"origin", 0, 0},
		{"first positive unit", 1, 1},
		{"exact positive multiple", 16, 1},
		{"just past multiple", 17, 2},
		{"positive 39", 39, 3},
		{"positive 496", 496, 31},
		{"first negative unit", -1, -1},
		{"exact negative multiple", -16, -1},
		{"just past negative multiple", -17, -2},
		{"negative 100", -100, -7},
		{"max int32", math.MaxInt32, 134217728},
		{"near max int32", math.MaxInt32 - 14, 134217728},
		{"min int32", math.MinInt32, -134217728},
		{"near min int32", math.MinInt32 + 1, -134217728},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCell(tt.coord))
		})
	}
}

func TestCellPos_Neighbours(t *testing.T) {
	p := CellPos{5, -3}
	n := p.Neighbours()

	seen := make(map[CellPos]bool, len(n))
	for _, q := range n {
		assert.NotEqual(t, p, q, "centre must not be a neighbour")
		dx := q.X() - p.X()
		dz := q.Z() - p.Z()
		assert.True(t, dx >= -1 && dx <= 1 && dz >= -1 && dz <= 1, "neighbour %v out of 3x3 window", q)
		seen[q] = true
	}
	assert.Len(t, seen, 8, "neighbours must be distinct")

	// row-major order
	assert.Equal(t, CellPos{4, -4}, n[0])
	assert.Equal(t, CellPos{6, -2}, n[7])
}

func TestCellPos_String(t *testing.T) {
	assert.Equal(t, "(1, -2)", CellPos{1, -2}.String())
}

func TestCellOrigin(t *testing.T) {
	assert.Equal(t, int32(32), CellOrigin(2))
	assert.Equal(t, int32(-16), CellOrigin(-1))
}
