package pregen

import (
	"fmt"
	"strings"

	"github.com/udisondev/pregen/internal/world"
)

// Shape is the kind of area a request covers.
type Shape uint8

const (
	ShapeRect Shape = iota
	ShapeDisc
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeDisc:
		return "disc"
	default:
		return fmt.Sprintf("shape(%d)", s)
	}
}

// ParseShape parses "rect"/"square" or "disc"/"circle".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rect", "square", "":
		return ShapeRect, nil
	case "disc", "circle":
		return ShapeDisc, nil
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrInvalidArea, s)
}

// Area is a requested area in world coordinates.
type Area struct {
	Shape Shape

	// Rectangle corners (ShapeRect).
	XStart, ZStart int32
	XEnd, ZEnd     int32

	// Disc centre and radius (ShapeDisc).
	XCenter, ZCenter int32
	Radius           int32
}

// Rect returns a rectangular area between two world-space corners.
func Rect(xStart, zStart, xEnd, zEnd int32) Area {
	return Area{Shape: ShapeRect, XStart: xStart, ZStart: zStart, XEnd: xEnd, ZEnd: zEnd}
}

// Disc returns a circular area around a world-space centre.
func Disc(xCenter, zCenter, radius int32) Area {
	return Area{Shape: ShapeDisc, XCenter: xCenter, ZCenter: zCenter, Radius: radius}
}

// Grid converts the area to grid bounds and an optional disc mask.
func (a Area) Grid() (Bounds, *Circle) {
	if a.Shape == ShapeDisc {
		cx, cz := world.ToCell(a.XCenter), world.ToCell(a.ZCenter)
		r := world.ToCell(a.Radius)
		// A negative radius inverts the bounds, which the tiler treats as empty.
		return Bounds{XStart: cx - r, ZStart: cz - r, XEnd: cx + r, ZEnd: cz + r},
			&Circle{XCenter: cx, ZCenter: cz, Radius: r}
	}
	return Bounds{
		XStart: world.ToCell(a.XStart),
		ZStart: world.ToCell(a.ZStart),
		XEnd:   world.ToCell(a.XEnd),
		ZEnd:   world.ToCell(a.ZEnd),
	}, nil
}

func (a Area) validate() error {
	switch a.Shape {
	case ShapeRect:
		if a.XEnd <= a.XStart || a.ZEnd <= a.ZStart {
			return reject(ErrInvalidArea, "xEnd and zEnd must be greater than xStart and zStart respectively")
		}
	case ShapeDisc:
		if a.Radius < 1 {
			return reject(ErrInvalidRadius, "radius must be at least 1, got %d", a.Radius)
		}
	default:
		return reject(ErrInvalidArea, "unknown shape %v", a.Shape)
	}
	return nil
}
