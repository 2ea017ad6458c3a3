package pregen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeed_TileSide(t *testing.T) {
	tests := []struct {
		speed Speed
		want  int32
	}{
		{SpeedAllAtOnce, 24},
		{SpeedVeryFast, 24},
		{SpeedFast, 24},
		{SpeedNormal, 16},
		{SpeedSlow, 13},
		{SpeedVerySlow, 10},
	}

	for _, tt := range tests {
		t.Run(tt.speed.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.speed.TileSide())
		})
	}
}

func TestTileArea_NormalTwoByTwo(t *testing.T) {
	tiles, cells := TileArea(Bounds{XStart: 0, ZStart: 0, XEnd: 31, ZEnd: 31}, nil, SpeedNormal)

	assert.Equal(t, 32*32, cells)
	require.Len(t, tiles, 4)

	want := []Bounds{
		{XStart: 0, ZStart: 0, XEnd: 17, ZEnd: 17},
		{XStart: 16, ZStart: 0, XEnd: 31, ZEnd: 17},
		{XStart: 0, ZStart: 16, XEnd: 17, ZEnd: 31},
		{XStart: 16, ZStart: 16, XEnd: 31, ZEnd: 31},
	}
	for i, tile := range tiles {
		assert.Equal(t, want[i], tile.Bounds, "tile %d", i)
		assert.Nil(t, tile.Mask)
	}
}

func TestTileArea_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		b    Bounds
		mask *Circle
	}{
		{"inverted x", Bounds{XStart: 5, ZStart: 0, XEnd: 4, ZEnd: 10}, nil},
		{"inverted z", Bounds{XStart: 0, ZStart: 5, XEnd: 10, ZEnd: 4}, nil},
		{"negative radius", Bounds{XStart: -1, ZStart: -1, XEnd: 1, ZEnd: 1}, &Circle{Radius: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles, cells := TileArea(tt.b, tt.mask, SpeedNormal)
			assert.Empty(t, tiles)
			assert.Zero(t, cells)
		})
	}
}

func TestTileArea_SingleCell(t *testing.T) {
	tiles, cells := TileArea(Bounds{XStart: 7, ZStart: -3, XEnd: 7, ZEnd: -3}, nil, SpeedVerySlow)
	require.Len(t, tiles, 1)
	assert.Equal(t, 1, cells)
	assert.Equal(t, 1, tiles[0].Cells())
}

func TestTileArea_Properties(t *testing.T) {
	areas := []Bounds{
		{XStart: 0, ZStart: 0, XEnd: 39, ZEnd: 39},
		{XStart: -20, ZStart: 5, XEnd: 17, ZEnd: 6},
		{XStart: -50, ZStart: -50, XEnd: 50, ZEnd: 50},
		{XStart: 0, ZStart: 0, XEnd: 18, ZEnd: 18},
		{XStart: 3, ZStart: 3, XEnd: 4, ZEnd: 100},
	}
	speeds := []Speed{SpeedAllAtOnce, SpeedNormal, SpeedSlow, SpeedVerySlow}

	for _, area := range areas {
		for _, speed := range speeds {
			t.Run(fmt.Sprintf("%v/%v", area, speed), func(t *testing.T) {
				tiles, cells := TileArea(area, nil, speed)
				require.NotEmpty(t, tiles)
				assert.Equal(t, area.Cells(), cells)

				span := speed.TileSide() + Overlap
				covered := make(map[[2]int32]bool)
				for i, tile := range tiles {
					// inside the area, no wider than side+overlap
					assert.True(t, area.Contains(tile.XStart, tile.ZStart) && area.Contains(tile.XEnd, tile.ZEnd), "tile %d %v outside area", i, tile.Bounds)
					assert.LessOrEqual(t, tile.XEnd-tile.XStart+1, span)
					assert.LessOrEqual(t, tile.ZEnd-tile.ZStart+1, span)

					// row-major: z never decreases, x increases inside a row
					if i > 0 {
						prev := tiles[i-1]
						if prev.ZStart == tile.ZStart {
							assert.Greater(t, tile.XStart, prev.XStart)
							// neighbours in a row share exactly Overlap columns
							assert.Equal(t, Overlap, prev.XEnd-tile.XStart+1)
						} else {
							assert.Greater(t, tile.ZStart, prev.ZStart)
							assert.Equal(t, Overlap, prev.ZEnd-tile.ZStart+1)
						}
					}

					for z := tile.ZStart; z <= tile.ZEnd; z++ {
						for x := tile.XStart; x <= tile.XEnd; x++ {
							covered[[2]int32{x, z}] = true
						}
					}
				}

				// coverage
				assert.Len(t, covered, cells)

				// every cell off the border has its 3×3 neighbourhood in some tile
				for z := area.ZStart + 1; z < area.ZEnd; z++ {
					for x := area.XStart + 1; x < area.XEnd; x++ {
						found := false
						for _, tile := range tiles {
							if tile.Contains(x-1, z-1) && tile.Contains(x+1, z+1) {
								found = true
								break
							}
						}
						assert.True(t, found, "cell (%d, %d) has no tile holding its neighbourhood", x, z)
					}
				}
			})
		}
	}
}

func TestTileArea_SharesMask(t *testing.T) {
	mask := &Circle{XCenter: 0, ZCenter: 0, Radius: 20}
	tiles, cells := TileArea(Bounds{XStart: -20, ZStart: -20, XEnd: 20, ZEnd: 20}, mask, SpeedNormal)

	assert.Equal(t, 41*41, cells, "cell count ignores the mask")
	for _, tile := range tiles {
		assert.Same(t, mask, tile.Mask)
	}
}

func TestMaxTileCells(t *testing.T) {
	assert.Equal(t, 18*18, MaxTileCells(SpeedNormal))
	assert.Equal(t, 26*26, MaxTileCells(SpeedVeryFast))
	assert.Equal(t, 12*12, MaxTileCells(SpeedVerySlow))
}
