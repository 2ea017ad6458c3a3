package pregen

import (
	"fmt"
	"strings"
)

// Speed controls how much work one tick does, through the tile side length.
type Speed uint8

const (
	// SpeedAllAtOnce runs the whole job inside a single tick.
	SpeedAllAtOnce Speed = iota
	// SpeedVeryFast processes large tiles per tick.
	SpeedVeryFast
	// SpeedFast splits loading and lighting across ticks with large tiles.
	SpeedFast
	// SpeedNormal uses medium tiles.
	SpeedNormal
	// SpeedSlow uses small tiles.
	SpeedSlow
	// SpeedVerySlow uses tiny tiles: minimal per-tick cost, long jobs.
	SpeedVerySlow
)

var speedNames = [...]string{
	SpeedAllAtOnce: "allatonce",
	SpeedVeryFast:  "veryfast",
	SpeedFast:      "fast",
	SpeedNormal:    "normal",
	SpeedSlow:      "slow",
	SpeedVerySlow:  "veryslow",
}

// Valid reports whether s is a known speed.
func (s Speed) Valid() bool {
	return int(s) < len(speedNames)
}

// String implements fmt.Stringer.
func (s Speed) String() string {
	if !s.Valid() {
		return fmt.Sprintf("speed(%d)", s)
	}
	return speedNames[s]
}

// TileSide returns the tile side length in cells, before overlap.
func (s Speed) TileSide() int32 {
	switch s {
	case SpeedNormal:
		return 16
	case SpeedSlow:
		return 13
	case SpeedVerySlow:
		return 10
	default:
		return 24
	}
}

// ParseSpeed parses a speed name (case-insensitive).
func ParseSpeed(s string) (Speed, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range speedNames {
		if n == name {
			return Speed(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, s)
}

// Lighting selects how generated cells get their light corrected.
type Lighting uint8

const (
	// LightingNone leaves light untouched; it gets fixed when something
	// later activates the area.
	LightingNone Lighting = iota
	// LightingForcedToggle forces a light update per cell through the
	// provider's block-toggle path.
	LightingForcedToggle
	// LightingFullRecompute recomputes all light of every cell. Much slower.
	LightingFullRecompute
)

var lightingNames = [...]string{
	LightingNone:          "none",
	LightingForcedToggle:  "forced-toggle",
	LightingFullRecompute: "full-recompute",
}

// Valid reports whether l is a known lighting policy.
func (l Lighting) Valid() bool {
	return int(l) < len(lightingNames)
}

// String implements fmt.Stringer.
func (l Lighting) String() string {
	if !l.Valid() {
		return fmt.Sprintf("lighting(%d)", l)
	}
	return lightingNames[l]
}

// ParseLighting parses a lighting policy name (case-insensitive). The
// command-level aliases "normal" and "extreme" are accepted as well.
func ParseLighting(s string) (Lighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return LightingNone, nil
	case "forced-toggle", "normal":
		return LightingForcedToggle, nil
	case "full-recompute", "extreme":
		return LightingFullRecompute, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLighting, s)
}
