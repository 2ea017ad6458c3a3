package pregen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/pregen/internal/world"
)

func drain(c *Cursor) []world.CellPos {
	var out []world.CellPos
	for pos, ok := c.Next(); ok; pos, ok = c.Next() {
		out = append(out, pos)
	}
	return out
}

func TestCursor_RowMajor(t *testing.T) {
	c := NewCursor(Tile{Bounds: Bounds{XStart: -1, ZStart: 4, XEnd: 1, ZEnd: 5}})

	got := drain(c)
	want := []world.CellPos{
		{-1, 4}, {0, 4}, {1, 4},
		{-1, 5}, {0, 5}, {1, 5},
	}
	assert.Equal(t, want, got)

	// Exhausted cursors stay exhausted.
	_, ok := c.Next()
	assert.False(t, ok)
	_, ok = c.Next()
	assert.False(t, ok)
}

func TestCursor_SingleCell(t *testing.T) {
	c := NewCursor(Tile{Bounds: Bounds{XStart: 3, ZStart: 3, XEnd: 3, ZEnd: 3}})
	assert.Equal(t, []world.CellPos{{3, 3}}, drain(c))
}

func TestCursor_EmptyTile(t *testing.T) {
	c := NewCursor(Tile{Bounds: Bounds{XStart: 3, ZStart: 3, XEnd: 2, ZEnd: 3}})
	_, ok := c.Next()
	assert.False(t, ok)
}

func TestCursor_DiscMask(t *testing.T) {
	mask := &Circle{XCenter: 2, ZCenter: -3, Radius: 5}
	tile := Tile{Bounds: Bounds{XStart: -3, ZStart: -8, XEnd: 7, ZEnd: 2}, Mask: mask}

	var want []world.CellPos
	for z := tile.ZStart; z <= tile.ZEnd; z++ {
		for x := tile.XStart; x <= tile.XEnd; x++ {
			dx, dz := x-mask.XCenter, z-mask.ZCenter
			if dx*dx+dz*dz <= mask.Radius*mask.Radius {
				want = append(want, world.CellPos{x, z})
			}
		}
	}

	got := drain(NewCursor(tile))
	assert.Equal(t, want, got)
	assert.Contains(t, got, world.CellPos{2, -3})
	assert.Contains(t, got, world.CellPos{7, -3}, "cells on the radius are kept")
	assert.NotContains(t, got, world.CellPos{-3, -8})
}

func TestCursor_MaskOutsideTile(t *testing.T) {
	mask := &Circle{XCenter: 100, ZCenter: 100, Radius: 2}
	c := NewCursor(Tile{Bounds: Bounds{XStart: 0, ZStart: 0, XEnd: 4, ZEnd: 4}, Mask: mask})
	assert.Empty(t, drain(c))
}
