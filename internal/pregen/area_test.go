package pregen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArea_Grid(t *testing.T) {
	tests := []struct {
		name     string
		area     Area
		want     Bounds
		wantMask *Circle
	}{
		{
			name: "rect",
			area: Rect(0, 0, 496, 496),
			want: Bounds{XStart: 0, ZStart: 0, XEnd: 31, ZEnd: 31},
		},
		{
			name: "rect negative",
			area: Rect(-17, -1, 17, 16),
			want: Bounds{XStart: -2, ZStart: -1, XEnd: 2, ZEnd: 1},
		},
		{
			name:     "disc",
			area:     Disc(0, 0, 160),
			want:     Bounds{XStart: -10, ZStart: -10, XEnd: 10, ZEnd: 10},
			wantMask: &Circle{XCenter: 0, ZCenter: 0, Radius: 10},
		},
		{
			name:     "disc rounds radius up",
			area:     Disc(32, -32, 17),
			want:     Bounds{XStart: 0, ZStart: -4, XEnd: 4, ZEnd: 0},
			wantMask: &Circle{XCenter: 2, ZCenter: -2, Radius: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, mask := tt.area.Grid()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMask, mask)
		})
	}
}

func TestArea_Validate(t *testing.T) {
	tests := []struct {
		name    string
		area    Area
		wantErr error
	}{
		{"rect ok", Rect(0, 0, 1, 1), nil},
		{"rect equal x", Rect(5, 0, 5, 10), ErrInvalidArea},
		{"rect inverted z", Rect(0, 10, 10, 0), ErrInvalidArea},
		{"disc ok", Disc(0, 0, 1), nil},
		{"disc zero radius", Disc(0, 0, 0), ErrInvalidRadius},
		{"disc negative radius", Disc(0, 0, -5), ErrInvalidRadius},
		{"unknown shape", Area{Shape: Shape(9)}, ErrInvalidArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.area.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsRejected(err))
		})
	}
}

func TestParseShape(t *testing.T) {
	for in, want := range map[string]Shape{
		"":       ShapeRect,
		"rect":   ShapeRect,
		"Square": ShapeRect,
		"disc":   ShapeDisc,
		"CIRCLE": ShapeDisc,
	} {
		got, err := ParseShape(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseShape("hexagon")
	assert.ErrorIs(t, err, ErrInvalidArea)
}
