// Package edgemap derives a contour line image from a prepared reference for
// use as generation-conditioning input.
//
// The pipeline is implemented directly over grayscale buffers: separable
// Gaussian smoothing, Sobel gradients, non-maximum suppression along the
// local gradient direction, then hysteresis thresholding with percentile-
// derived thresholds and connectivity-based weak-edge promotion. The
// conditioning contract fixes the threshold derivation and a minimum edge
// density, which stock Canny implementations do not expose.
package edgemap

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sort"

	"pose-gate/internal/imageutil"

	"gonum.org/v1/gonum/stat"
)

// ErrNoUsableEdges reports that the reference produced too few edges to be
// worth conditioning on. Callers fall back to the unmodified reference; this
// stage never fails the pipeline.
var ErrNoUsableEdges = errors.New("edgemap: no usable edges")

// Params configures edge extraction.
type Params struct {
	// HighPercentile selects the strong-edge threshold from the nonzero
	// gradient magnitude distribution.
	HighPercentile float64 `yaml:"high_percentile"`

	// HighFloor is the minimum strong-edge threshold, guarding against
	// low-contrast references where the percentile collapses.
	HighFloor float64 `yaml:"high_floor"`

	// LowRatio derives the weak-edge threshold from the strong one.
	LowRatio float64 `yaml:"low_ratio"`

	// MinEdgeDensity is the fraction of pixels that must be edges for the
	// map to count as usable.
	MinEdgeDensity float64 `yaml:"min_edge_density"`
}

// DefaultParams returns the tuned edge extraction defaults.
func DefaultParams() Params {
	return Params{
		HighPercentile: 0.70,
		HighFloor:      60,
		LowRatio:       0.4,
		MinEdgeDensity: 0.005,
	}
}

// Build extracts a black-on-white edge map from an image. It returns
// ErrNoUsableEdges when edge density falls below the configured floor.
func Build(img image.Image, p Params) (*image.Gray, error) {
	gray := imageutil.Grayscale(img)
	w := gray.Rect.Dx()
	h := gray.Rect.Dy()
	if w < 5 || h < 5 {
		return nil, ErrNoUsableEdges
	}

	smoothed := gaussianSmooth(gray)
	mag, dir := sobel(smoothed, w, h)
	thinned := suppressNonMaxima(mag, dir, w, h)
	high, low := thresholds(thinned, p)
	edges := hysteresis(thinned, w, h, high, low)

	count := 0
	for _, e := range edges {
		if e {
			count++
		}
	}
	if float64(count) < p.MinEdgeDensity*float64(w*h) {
		return nil, ErrNoUsableEdges
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y*w+x] {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out, nil
}

// gaussianSmooth applies a separable 5-tap binomial kernel (1 4 6 4 1)/16.
func gaussianSmooth(gray *image.Gray) []float64 {
	w := gray.Rect.Dx()
	h := gray.Rect.Dy()
	kernel := [5]float64{1, 4, 6, 4, 1}

	tmp := make([]float64, w*h)
	out := make([]float64, w*h)

	// Horizontal pass with edge clamping.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, weight float64
			for k := -2; k <= 2; k++ {
				xx := clampInt(x+k, 0, w-1)
				kw := kernel[k+2]
				sum += kw * float64(gray.GrayAt(xx, y).Y)
				weight += kw
			}
			tmp[y*w+x] = sum / weight
		}
	}
	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, weight float64
			for k := -2; k <= 2; k++ {
				yy := clampInt(y+k, 0, h-1)
				kw := kernel[k+2]
				sum += kw * tmp[yy*w+x]
				weight += kw
			}
			out[y*w+x] = sum / weight
		}
	}
	return out
}

// sobel computes gradient magnitude and direction, with direction quantized
// to four 45° bins: 0 horizontal, 1 diagonal ↗, 2 vertical, 3 diagonal ↘.
func sobel(img []float64, w, h int) (mag []float64, dir []uint8) {
	mag = make([]float64, w*h)
	dir = make([]uint8, w*h)

	at := func(x, y int) float64 {
		return img[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			i := y*w + x
			mag[i] = math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[i] = 0
			case angle < 67.5:
				dir[i] = 1
			case angle < 112.5:
				dir[i] = 2
			default:
				dir[i] = 3
			}
		}
	}
	return mag, dir
}

// suppressNonMaxima keeps only pixels that are local maxima along their
// gradient direction.
func suppressNonMaxima(mag []float64, dir []uint8, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			var n1, n2 float64
			switch dir[i] {
			case 0: // Horizontal gradient: compare left/right neighbors
				n1, n2 = mag[i-1], mag[i+1]
			case 1:
				n1, n2 = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case 2: // Vertical gradient: compare above/below
				n1, n2 = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				n1, n2 = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if mag[i] >= n1 && mag[i] >= n2 {
				out[i] = mag[i]
			}
		}
	}
	return out
}

// thresholds derives the hysteresis pair from the thinned magnitude
// distribution: high is the configured percentile of nonzero magnitudes
// (bounded below by the floor), low is a fixed ratio of high.
func thresholds(mag []float64, p Params) (high, low float64) {
	nonzero := make([]float64, 0, len(mag)/4)
	for _, m := range mag {
		if m > 0 {
			nonzero = append(nonzero, m)
		}
	}
	high = p.HighFloor
	if len(nonzero) > 0 {
		sort.Float64s(nonzero)
		q := stat.Quantile(p.HighPercentile, stat.Empirical, nonzero, nil)
		if q > high {
			high = q
		}
	}
	return high, p.LowRatio * high
}

// hysteresis classifies strong edges and promotes weak edges 8-connected to
// a strong one, breadth-first.
func hysteresis(mag []float64, w, h int, high, low float64) []bool {
	edges := make([]bool, w*h)
	queue := make([]int, 0, w*h/16)

	for i, m := range mag {
		if m >= high {
			edges[i] = true
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if !edges[j] && mag[j] >= low {
					edges[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return edges
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
