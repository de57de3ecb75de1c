// Package diagram validates generated muscle-diagram artifacts with
// pixel-ratio heuristics. A usable diagram has visible linework, and both
// primary and secondary muscle groups highlighted in their conventional
// colors.
package diagram

import (
	"image"

	"pose-gate/internal/imageutil"
	"pose-gate/pkg/colorutil"
)

// Params configures the diagram quality gate.
type Params struct {
	// MinInkCoverage is the minimum fraction of non-white pixels.
	MinInkCoverage float64 `yaml:"min_ink_coverage"`

	// MinColorCoverage is the floor each highlight color (red and blue)
	// must clear for the diagram to count as annotated.
	MinColorCoverage float64 `yaml:"min_color_coverage"`

	// MinOutlineCoverage is the minimum fraction of near-black pixels,
	// ensuring the figure outline actually rendered.
	MinOutlineCoverage float64 `yaml:"min_outline_coverage"`

	// WhiteDistanceMin classifies a pixel as ink rather than paper.
	WhiteDistanceMin float64 `yaml:"white_distance_min"`

	// BlackCeiling classifies a pixel as outline.
	BlackCeiling uint8 `yaml:"black_ceiling"`

	// InkWeight, ColorWeight, and OutlineWeight build the composite used
	// to rank failing attempts.
	InkWeight     float64 `yaml:"ink_weight"`
	ColorWeight   float64 `yaml:"color_weight"`
	OutlineWeight float64 `yaml:"outline_weight"`
}

// DefaultParams returns the tuned gate defaults.
func DefaultParams() Params {
	return Params{
		MinInkCoverage:     0.05,
		MinColorCoverage:   0.004,
		MinOutlineCoverage: 0.01,
		WhiteDistanceMin:   25,
		BlackCeiling:       60,
		InkWeight:          0.4,
		ColorWeight:        0.4,
		OutlineWeight:      0.2,
	}
}

// Metrics are the four coverage ratios measured on a diagram.
type Metrics struct {
	InkCoverage     float64 `json:"ink_coverage"`
	RedCoverage     float64 `json:"red_coverage"`
	BlueCoverage    float64 `json:"blue_coverage"`
	OutlineCoverage float64 `json:"outline_coverage"`
}

// Result is the gate verdict for one diagram.
type Result struct {
	Metrics   Metrics `json:"metrics"`
	Composite float64 `json:"composite"`
	Passed    bool    `json:"passed"`
}

// Analyze measures coverage ratios with direct channel comparisons.
func Analyze(img image.Image, p Params) Metrics {
	rgba := imageutil.ToRGBA(img)
	bounds := rgba.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return Metrics{}
	}

	var ink, red, blue, outline int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := rgba.RGBAAt(x, y)
			if colorutil.ColorDistance(c.R, c.G, c.B, 255, 255, 255) > p.WhiteDistanceMin {
				ink++
			}
			if colorutil.IsRedHue(c.R, c.G, c.B) {
				red++
			}
			if colorutil.IsBlueHue(c.R, c.G, c.B) {
				blue++
			}
			if c.R < p.BlackCeiling && c.G < p.BlackCeiling && c.B < p.BlackCeiling {
				outline++
			}
		}
	}

	n := float64(total)
	return Metrics{
		InkCoverage:     float64(ink) / n,
		RedCoverage:     float64(red) / n,
		BlueCoverage:    float64(blue) / n,
		OutlineCoverage: float64(outline) / n,
	}
}

// Evaluate gates a diagram: coverage floors must be met and both highlight
// colors must be present. The composite ranks attempts when none passes.
func Evaluate(img image.Image, p Params) Result {
	m := Analyze(img, p)

	passed := m.InkCoverage >= p.MinInkCoverage &&
		m.OutlineCoverage >= p.MinOutlineCoverage &&
		m.RedCoverage >= p.MinColorCoverage &&
		m.BlueCoverage >= p.MinColorCoverage

	// The composite saturates each ratio at its floor so one dominant
	// channel cannot mask a missing one.
	composite := p.InkWeight*ratioCredit(m.InkCoverage, p.MinInkCoverage) +
		p.ColorWeight*(ratioCredit(m.RedCoverage, p.MinColorCoverage)+ratioCredit(m.BlueCoverage, p.MinColorCoverage))/2 +
		p.OutlineWeight*ratioCredit(m.OutlineCoverage, p.MinOutlineCoverage)

	return Result{Metrics: m, Composite: composite, Passed: passed}
}

// ratioCredit maps a coverage ratio to [0,1] credit against its floor.
func ratioCredit(v, floor float64) float64 {
	if floor <= 0 {
		return 1
	}
	credit := v / floor
	if credit > 1 {
		credit = 1
	}
	return credit
}
