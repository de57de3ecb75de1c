// Package colorutil provides shared color utilities for the pose gate application.
package colorutil

import "math"

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // Convert to OpenCV's 0-180 range

	return h, s, v
}

// IsRedHue reports whether an RGB pixel reads as saturated red. Red wraps
// around the hue circle, so both ends of the OpenCV 0-180 range count.
func IsRedHue(r, g, b uint8) bool {
	h, s, v := RGBToHSV(float64(r), float64(g), float64(b))
	if s < 80 || v < 60 {
		return false
	}
	return h <= 10 || h >= 170
}

// IsBlueHue reports whether an RGB pixel reads as saturated blue.
func IsBlueHue(r, g, b uint8) bool {
	h, s, v := RGBToHSV(float64(r), float64(g), float64(b))
	if s < 80 || v < 60 {
		return false
	}
	return h >= 100 && h <= 130
}

// ColorDistance returns the Euclidean distance between two RGB colors.
func ColorDistance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
