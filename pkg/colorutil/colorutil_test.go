package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSVPrimaries(t *testing.T) {
	h, s, v := RGBToHSV(255, 0, 0)
	assert.InDelta(t, 0, h, 0.01)
	assert.InDelta(t, 255, s, 0.01)
	assert.InDelta(t, 255, v, 0.01)

	h, _, _ = RGBToHSV(0, 255, 0)
	assert.InDelta(t, 60, h, 0.01)

	h, _, _ = RGBToHSV(0, 0, 255)
	assert.InDelta(t, 120, h, 0.01)

	_, s, v = RGBToHSV(0, 0, 0)
	assert.Zero(t, s)
	assert.Zero(t, v)
}

func TestIsRedHue(t *testing.T) {
	assert.True(t, IsRedHue(255, 0, 0))
	assert.True(t, IsRedHue(200, 40, 40))
	assert.True(t, IsRedHue(220, 30, 60)) // crimson, wraps high
	assert.False(t, IsRedHue(255, 255, 255))
	assert.False(t, IsRedHue(120, 100, 100)) // desaturated
	assert.False(t, IsRedHue(0, 0, 255))
}

func TestIsBlueHue(t *testing.T) {
	assert.True(t, IsBlueHue(0, 0, 255))
	assert.True(t, IsBlueHue(40, 70, 220))
	assert.False(t, IsBlueHue(255, 0, 0))
	assert.False(t, IsBlueHue(200, 200, 210)) // desaturated
	assert.False(t, IsBlueHue(0, 255, 255))   // cyan sits below the band
}

func TestColorDistance(t *testing.T) {
	assert.Zero(t, ColorDistance(10, 20, 30, 10, 20, 30))
	assert.InDelta(t, 255, ColorDistance(255, 0, 0, 0, 0, 0), 0.01)
	assert.InDelta(t, 441.67, ColorDistance(255, 255, 255, 0, 0, 0), 0.01)
}
