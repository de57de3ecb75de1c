package silhouette

import (
	"image"
	"image/color"
	"sort"

	"pose-gate/internal/imageutil"
	"pose-gate/pkg/colorutil"

	"gonum.org/v1/gonum/stat"
)

// mask is a binary foreground mask.
type mask struct {
	w, h int
	pix  []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, pix: make([]bool, w*h)}
}

func (m *mask) at(x, y int) bool {
	return m.pix[y*m.w+x]
}

func (m *mask) set(x, y int, v bool) {
	m.pix[y*m.w+x] = v
}

func (m *mask) count() int {
	n := 0
	for _, v := range m.pix {
		if v {
			n++
		}
	}
	return n
}

// inverted returns a copy with every pixel flipped.
func (m *mask) inverted() *mask {
	out := newMask(m.w, m.h)
	for i, v := range m.pix {
		out.pix[i] = !v
	}
	return out
}

// bounds returns the bounding box of foreground pixels and whether any
// exist.
func (m *mask) bounds() (image.Rectangle, bool) {
	minX, minY := m.w, m.h
	maxX, maxY := -1, -1
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.at(x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// segment classifies foreground pixels against an estimated studio-style
// background: pixels darker than the background estimate by a margin, or
// too far from white in color space, count as subject.
func segment(img image.Image, p Params) *mask {
	rgba := imageutil.ToRGBA(img)
	gray := imageutil.Grayscale(rgba)
	w := gray.Rect.Dx()
	h := gray.Rect.Dy()

	// Background brightness: high percentile of the luma distribution.
	brightness := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			brightness = append(brightness, float64(gray.GrayAt(x, y).Y))
		}
	}
	sort.Float64s(brightness)
	background := stat.Quantile(p.BackgroundPercentile, stat.Empirical, brightness, nil)

	m := newMask(w, h)
	darkCut := background - p.BrightnessMargin
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := rgba.RGBAAt(x, y)
			dark := float64(gray.GrayAt(x, y).Y) < darkCut
			colored := colorutil.ColorDistance(c.R, c.G, c.B, 255, 255, 255) > p.WhiteDistanceMargin
			m.set(x, y, dark || colored)
		}
	}
	return m
}

// normalize crops the mask to its bounding box plus a margin, pads to
// square, resizes to the canonical size, and re-binarizes.
func normalize(m *mask, p Params) *mask {
	box, ok := m.bounds()
	if !ok {
		return newMask(p.CanonicalSize, p.CanonicalSize)
	}

	marginX := int(float64(box.Dx()) * p.CropMargin)
	marginY := int(float64(box.Dy()) * p.CropMargin)
	box = image.Rect(
		maxInt(0, box.Min.X-marginX),
		maxInt(0, box.Min.Y-marginY),
		minInt(m.w, box.Max.X+marginX),
		minInt(m.h, box.Max.Y+marginY),
	)

	// Pad the crop to a centered square before resizing so aspect ratio is
	// preserved.
	side := maxInt(box.Dx(), box.Dy())
	square := image.NewGray(image.Rect(0, 0, side, side))
	offX := (side - box.Dx()) / 2
	offY := (side - box.Dy()) / 2
	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			if m.at(box.Min.X+x, box.Min.Y+y) {
				square.SetGray(offX+x, offY+y, color.Gray{Y: 255})
			}
		}
	}

	resized := imageutil.Resize(square, p.CanonicalSize, p.CanonicalSize)
	out := newMask(p.CanonicalSize, p.CanonicalSize)
	for y := 0; y < p.CanonicalSize; y++ {
		for x := 0; x < p.CanonicalSize; x++ {
			out.set(x, y, resized.RGBAAt(x, y).R >= 128)
		}
	}
	return out
}

// iou computes intersection-over-union between two same-size masks.
func iou(a, b *mask) float64 {
	var inter, union int
	for i := range a.pix {
		av, bv := a.pix[i], b.pix[i]
		if av && bv {
			inter++
		}
		if av || bv {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// occupancyProfiles returns the row-sum and column-sum occupancy histograms,
// each downsampled to the configured bin count and normalized to sum to 1.
func occupancyProfiles(m *mask, bins int) (rows, cols []float64) {
	rowSums := make([]float64, m.h)
	colSums := make([]float64, m.w)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.at(x, y) {
				rowSums[y]++
				colSums[x]++
			}
		}
	}
	return downsample(rowSums, bins), downsample(colSums, bins)
}

// downsample buckets a histogram into a fixed bin count and normalizes it.
func downsample(hist []float64, bins int) []float64 {
	out := make([]float64, bins)
	for i, v := range hist {
		out[i*bins/len(hist)] += v
	}
	var total float64
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}

// profileSimilarity scores two normalized histograms by overlap: 1 minus
// half the L1 distance.
func profileSimilarity(a, b []float64) float64 {
	var l1 float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		l1 += d
	}
	return 1 - l1/2
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
