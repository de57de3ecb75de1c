// Package silhouette compares foreground silhouettes between two images.
// It is the fallback scorer used when landmark detection is unavailable or
// finds no pose in either image.
package silhouette

import (
	"fmt"
	"image"
	"math"
)

// Params configures silhouette segmentation and comparison.
type Params struct {
	// BackgroundPercentile estimates background brightness from the luma
	// distribution.
	BackgroundPercentile float64 `yaml:"background_percentile"`

	// BrightnessMargin is how far below the background estimate a pixel
	// must fall to count as subject.
	BrightnessMargin float64 `yaml:"brightness_margin"`

	// WhiteDistanceMargin is the color distance from white beyond which a
	// pixel counts as subject regardless of brightness. Empirically tuned;
	// flagged for recalibration, not re-derived.
	WhiteDistanceMargin float64 `yaml:"white_distance_margin"`

	// TargetOccupancy is the expected subject area fraction, used to pick
	// the binarization polarity. Empirically tuned; flagged for
	// recalibration, not re-derived.
	TargetOccupancy float64 `yaml:"target_occupancy"`

	// CropMargin expands the subject bounding box before normalization.
	CropMargin float64 `yaml:"crop_margin"`

	// CanonicalSize is the square size masks are normalized to.
	CanonicalSize int `yaml:"canonical_size"`

	// ShapeDistanceClamp bounds the contour shape distance before it is
	// inverted into a score.
	ShapeDistanceClamp float64 `yaml:"shape_distance_clamp"`

	// ProfileBins is the bin count for row/column occupancy histograms.
	ProfileBins int `yaml:"profile_bins"`

	// IoUWeight, ShapeWeight, and ProfileWeight combine the sub-scores.
	IoUWeight     float64 `yaml:"iou_weight"`
	ShapeWeight   float64 `yaml:"shape_weight"`
	ProfileWeight float64 `yaml:"profile_weight"`

	// PassThreshold is the minimum combined score for a pass.
	PassThreshold float64 `yaml:"pass_threshold"`
}

// DefaultParams returns the tuned silhouette defaults.
func DefaultParams() Params {
	return Params{
		BackgroundPercentile: 0.97,
		BrightnessMargin:     8,
		WhiteDistanceMargin:  20,
		TargetOccupancy:      0.35,
		CropMargin:           0.08,
		CanonicalSize:        256,
		ShapeDistanceClamp:   1.4,
		ProfileBins:          32,
		IoUWeight:            0.45,
		ShapeWeight:          0.35,
		ProfileWeight:        0.20,
		PassThreshold:        0.82,
	}
}

// Result holds a silhouette comparison outcome.
type Result struct {
	Score        float64 `json:"score"`
	IoU          float64 `json:"iou"`
	ShapeScore   float64 `json:"shape_score"`
	ProfileScore float64 `json:"profile_score"`
	Passed       bool    `json:"passed"`
}

// Score segments both images, normalizes the silhouettes, and compares
// them.
func Score(source, candidate image.Image, p Params) (Result, error) {
	srcMask, err := extract(source, p)
	if err != nil {
		return Result{}, fmt.Errorf("source silhouette: %w", err)
	}
	candMask, err := extract(candidate, p)
	if err != nil {
		return Result{}, fmt.Errorf("candidate silhouette: %w", err)
	}

	var r Result
	r.IoU = iou(srcMask, candMask)

	dist := shapeDistance(srcMask, candMask, p.ShapeDistanceClamp)
	r.ShapeScore = 1 - dist/p.ShapeDistanceClamp

	srcRows, srcCols := occupancyProfiles(srcMask, p.ProfileBins)
	candRows, candCols := occupancyProfiles(candMask, p.ProfileBins)
	r.ProfileScore = (profileSimilarity(srcRows, candRows) + profileSimilarity(srcCols, candCols)) / 2

	r.Score = p.IoUWeight*r.IoU + p.ShapeWeight*r.ShapeScore + p.ProfileWeight*r.ProfileScore
	r.Passed = r.Score >= p.PassThreshold
	return r, nil
}

// extract builds the normalized silhouette mask for one image: segment,
// choose binarization polarity by target occupancy, then normalize.
func extract(img image.Image, p Params) (*mask, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	m := segment(img, p)

	// Both polarities are tried; dark-subject-on-light and light-subject-
	// on-dark references appear in practice. The polarity whose dominant
	// external contour is closest to the expected occupancy wins.
	standard := m
	inverted := m.inverted()
	stdDiff := math.Abs(largestContourAreaFrac(standard) - p.TargetOccupancy)
	invDiff := math.Abs(largestContourAreaFrac(inverted) - p.TargetOccupancy)
	chosen := standard
	if invDiff < stdDiff {
		chosen = inverted
	}

	return normalize(chosen, p), nil
}
