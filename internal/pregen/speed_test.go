package pregen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpeed(t *testing.T) {
	for _, s := range []Speed{SpeedAllAtOnce, SpeedVeryFast, SpeedFast, SpeedNormal, SpeedSlow, SpeedVerySlow} {
		got, err := ParseSpeed(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSpeed(" VerySlow ")
	require.NoError(t, err)
	assert.Equal(t, SpeedVerySlow, got)

	_, err = ParseSpeed("ludicrous")
	assert.ErrorIs(t, err, ErrInvalidSpeed)
}

func TestParseLighting(t *testing.T) {
	tests := []struct {
		in   string
		want Lighting
	}{
		{"none", LightingNone},
		{"forced-toggle", LightingForcedToggle},
		{"normal", LightingForcedToggle},
		{"full-recompute", LightingFullRecompute},
		{"EXTREME", LightingFullRecompute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLighting(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLighting("bright")
	assert.ErrorIs(t, err, ErrInvalidLighting)
}

func TestSpeed_Invalid(t *testing.T) {
	s := Speed(42)
	assert.False(t, s.Valid())
	assert.Equal(t, "speed(42)", s.String())
	assert.False(t, Lighting(7).Valid())
}
