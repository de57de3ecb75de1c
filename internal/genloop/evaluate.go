package genloop

import (
	"fmt"
	"log/slog"

	"pose-gate/internal/fidelity"
	"pose-gate/internal/imageutil"
	"pose-gate/internal/landmark"
	"pose-gate/internal/metrics"
	"pose-gate/internal/silhouette"
)

// detectorState tags the landmark evidence available for one evaluation.
type detectorState int

const (
	// detectorScored: both images yielded landmark sets.
	detectorScored detectorState = iota
	// detectorUnavailable: no detection capability in this environment.
	detectorUnavailable
	// detectorFailed: the detector ran but found no pose in at least one
	// image.
	detectorFailed
)

// poseEval is the scored outcome of one pose-photo evaluation.
type poseEval struct {
	fidelity   fidelity.Result
	silhouette *silhouette.Result
	score      float64
	passed     bool
}

// evaluatePose scores a candidate against the source. The detector state is
// matched exhaustively: scored pairs go through the geometric scorer,
// everything else routes to the silhouette fallback unless an injected
// extractor suppresses it.
func (o *Orchestrator) evaluatePose(source, candidate []byte) (poseEval, error) {
	var srcSet, candSet *landmark.Set

	state := detectorUnavailable
	if o.extractor != nil && o.extractor.Available() {
		var err error
		srcSet, err = o.extractor.Extract(source)
		if err != nil {
			return poseEval{}, fmt.Errorf("extract source landmarks: %w", err)
		}
		candSet, err = o.extractor.Extract(candidate)
		if err != nil {
			return poseEval{}, fmt.Errorf("extract candidate landmarks: %w", err)
		}
		if srcSet != nil && candSet != nil {
			state = detectorScored
		} else {
			state = detectorFailed
		}
	}

	switch state {
	case detectorScored:
		res := fidelity.Score(srcSet, candSet, o.params.Fidelity)
		return poseEval{fidelity: res, score: res.PoseScore, passed: res.Passed}, nil

	case detectorUnavailable:
		if o.extractorInjected {
			return poseEval{fidelity: fidelity.Unavailable()}, nil
		}
		return o.silhouetteFallback(source, candidate)

	case detectorFailed:
		if o.extractorInjected {
			res := fidelity.Score(srcSet, candSet, o.params.Fidelity)
			return poseEval{fidelity: res, score: res.PoseScore, passed: res.Passed}, nil
		}
		return o.silhouetteFallback(source, candidate)

	default:
		return poseEval{}, fmt.Errorf("unhandled detector state %d", state)
	}
}

// silhouetteFallback compares foreground silhouettes when landmark evidence
// is missing.
func (o *Orchestrator) silhouetteFallback(source, candidate []byte) (poseEval, error) {
	metrics.FallbackEngagements.Inc()
	slog.Debug("landmarks unavailable, engaging silhouette fallback")

	srcImg, _, err := imageutil.DecodeOriented(source)
	if err != nil {
		return poseEval{}, fmt.Errorf("decode source for silhouette: %w", err)
	}
	candImg, _, err := imageutil.DecodeOriented(candidate)
	if err != nil {
		return poseEval{}, fmt.Errorf("decode candidate for silhouette: %w", err)
	}

	res, err := silhouette.Score(srcImg, candImg, o.params.Silhouette)
	if err != nil {
		return poseEval{}, err
	}
	return poseEval{
		fidelity:   fidelity.Unavailable(),
		silhouette: &res,
		score:      res.Score,
		passed:     res.Passed,
	}, nil
}
