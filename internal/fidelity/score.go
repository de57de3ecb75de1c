package fidelity

import (
	"math"

	"pose-gate/internal/landmark"
	"pose-gate/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// FailureReason classifies why a comparison did not pass.
type FailureReason string

const (
	FailureNone                FailureReason = ""
	FailureDetectorUnavailable FailureReason = "DETECTOR_UNAVAILABLE"
	FailureSourceNoPose        FailureReason = "SOURCE_NO_POSE"
	FailureGeneratedNoPose     FailureReason = "GENERATED_NO_POSE"
	FailureInsufficientJoints  FailureReason = "INSUFFICIENT_JOINTS"
	FailureScoreBelowThreshold FailureReason = "SCORE_BELOW_THRESHOLD"
)

// JointAngleDelta is the absolute angle deviation at one joint, in degrees.
type JointAngleDelta struct {
	Joint        string  `json:"joint"`
	DegreesDelta float64 `json:"degrees_delta"`
}

// Result is the outcome of comparing one (source, candidate) pair. It is
// produced once and never mutated.
type Result struct {
	Available           bool              `json:"available"`
	ValidationPerformed bool              `json:"validation_performed"`
	Passed              bool              `json:"passed"`
	PoseScore           float64           `json:"pose_score"`
	AngleScore          float64           `json:"angle_score"`
	PositionScore       float64           `json:"position_score"`
	MaxJointDelta       float64           `json:"max_joint_delta"`
	JointDeltas         []JointAngleDelta `json:"joint_deltas,omitempty"`
	ComparedJointCount  int               `json:"compared_joint_count"`
	ComparedPointCount  int               `json:"compared_point_count"`
	SourceDetected      bool              `json:"source_detected"`
	GeneratedDetected   bool              `json:"generated_detected"`
	FailureReason       FailureReason     `json:"failure_reason,omitempty"`
	MirrorSuspected     bool              `json:"mirror_suspected"`
}

// Unavailable returns the fixed result reported when no landmark detector
// is present in the environment.
func Unavailable() Result {
	return Result{FailureReason: FailureDetectorUnavailable}
}

// Score compares two landmark sets. A nil set means no pose was detected in
// the corresponding image. Scoring is pure: identical inputs produce an
// identical Result.
func Score(source, candidate *landmark.Set, p Params) Result {
	r := Result{
		Available:         true,
		SourceDetected:    source != nil,
		GeneratedDetected: candidate != nil,
	}

	// Failure taxonomy: first applicable reason wins.
	if source == nil {
		r.FailureReason = FailureSourceNoPose
		return r
	}
	if candidate == nil {
		r.FailureReason = FailureGeneratedNoPose
		return r
	}

	// Step 1: joint angle deltas over the fixed catalogue. A triple is
	// skipped when any of its three points is missing or below the
	// visibility floor in either image.
	for _, t := range angleCatalogue {
		srcA, srcB, srcC, ok := triplePoints(source, t, p.MinVisibility)
		if !ok {
			continue
		}
		candA, candB, candC, ok := triplePoints(candidate, t, p.MinVisibility)
		if !ok {
			continue
		}

		srcAngle := geometry.AngleAt(srcA, srcB, srcC)
		candAngle := geometry.AngleAt(candA, candB, candC)
		delta := math.Abs(srcAngle - candAngle)

		r.JointDeltas = append(r.JointDeltas, JointAngleDelta{Joint: t.Joint, DegreesDelta: delta})
		if delta > r.MaxJointDelta {
			r.MaxJointDelta = delta
		}
	}
	r.ComparedJointCount = len(r.JointDeltas)

	// Step 2: enough comparable joints for a meaningful verdict.
	if r.ComparedJointCount < p.MinJointMatches {
		r.FailureReason = FailureInsufficientJoints
		return r
	}
	r.ValidationPerformed = true

	// Step 3: angle agreement, saturating to zero credit at the tuned delta.
	credits := make([]float64, 0, r.ComparedJointCount)
	for _, d := range r.JointDeltas {
		credits = append(credits, math.Max(0, 1-d.DegreesDelta/p.AngleSaturationDegrees))
	}
	r.AngleScore = stat.Mean(credits, nil)

	// Step 4: position agreement in a torso-relative frame.
	r.PositionScore, r.ComparedPointCount = positionScore(source, candidate, p)

	// Step 5: combined score, clamped regardless of partial values.
	r.PoseScore = clamp01(p.AngleWeight*r.AngleScore + p.PositionWeight*r.PositionScore)

	// Step 6: mirrored-output check. Only the simultaneous shoulder AND hip
	// flip is detected; a single swapped limb slips through this heuristic.
	r.MirrorSuspected = mirrorSuspected(source, candidate)

	// Step 7: verdict. The reason names the score only when the score is
	// what fell short; delta and mirror failures carry their own fields.
	r.Passed = r.PoseScore >= p.ScoreThreshold &&
		r.MaxJointDelta <= p.MaxJointDeltaDegrees &&
		!r.MirrorSuspected
	if !r.Passed && r.PoseScore < p.ScoreThreshold {
		r.FailureReason = FailureScoreBelowThreshold
	}
	return r
}

// triplePoints fetches the three points of an angle triple, requiring all of
// them to clear the visibility floor.
func triplePoints(s *landmark.Set, t AngleTriple, minVis float64) (a, b, c geometry.Point2D, ok bool) {
	la, okA := s.Get(t.A)
	lb, okB := s.Get(t.B)
	lc, okC := s.Get(t.C)
	if !okA || !okB || !okC {
		return a, b, c, false
	}
	if la.Visibility < minVis || lb.Visibility < minVis || lc.Visibility < minVis {
		return a, b, c, false
	}
	return la.Point(), lb.Point(), lc.Point(), true
}

// torsoFrame is a translation+scale normalization built from the four torso
// corners, making positions independent of camera framing.
type torsoFrame struct {
	origin geometry.Point2D
	scale  float64
}

func (f torsoFrame) apply(p geometry.Point2D) geometry.Point2D {
	return p.Sub(f.origin).Scale(1 / f.scale)
}

// newTorsoFrame derives the normalization frame: translate by the centroid
// of both shoulders and both hips, scale by the average of shoulder width
// and hip width.
func newTorsoFrame(s *landmark.Set, minVis float64) (torsoFrame, bool) {
	ls, ok1 := s.Get(landmark.LeftShoulder)
	rs, ok2 := s.Get(landmark.RightShoulder)
	lh, ok3 := s.Get(landmark.LeftHip)
	rh, ok4 := s.Get(landmark.RightHip)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return torsoFrame{}, false
	}
	if ls.Visibility < minVis || rs.Visibility < minVis || lh.Visibility < minVis || rh.Visibility < minVis {
		return torsoFrame{}, false
	}

	origin := geometry.Centroid([]geometry.Point2D{ls.Point(), rs.Point(), lh.Point(), rh.Point()})
	scale := (ls.Point().Distance(rs.Point()) + lh.Point().Distance(rh.Point())) / 2
	if scale <= 0 {
		return torsoFrame{}, false
	}
	return torsoFrame{origin: origin, scale: scale}, true
}

// positionScore compares torso-normalized point positions over the fixed
// point catalogue.
func positionScore(source, candidate *landmark.Set, p Params) (float64, int) {
	srcFrame, ok := newTorsoFrame(source, p.MinVisibility)
	if !ok {
		return 0, 0
	}
	candFrame, ok := newTorsoFrame(candidate, p.MinVisibility)
	if !ok {
		return 0, 0
	}

	var credits []float64
	for _, part := range positionCatalogue {
		sl, okS := source.Get(part)
		cl, okC := candidate.Get(part)
		if !okS || !okC || sl.Visibility < p.MinVisibility || cl.Visibility < p.MinVisibility {
			continue
		}
		dist := srcFrame.apply(sl.Point()).Distance(candFrame.apply(cl.Point()))
		credits = append(credits, math.Max(0, 1-dist/p.PositionDistanceScale))
	}
	if len(credits) == 0 {
		return 0, 0
	}
	return stat.Mean(credits, nil), len(credits)
}

// mirrorSuspected reports whether the left/right ordering of both shoulders
// and both hips is simultaneously flipped between source and candidate.
func mirrorSuspected(source, candidate *landmark.Set) bool {
	return pairFlipped(source, candidate, landmark.LeftShoulder, landmark.RightShoulder) &&
		pairFlipped(source, candidate, landmark.LeftHip, landmark.RightHip)
}

func pairFlipped(source, candidate *landmark.Set, left, right landmark.Part) bool {
	sl, ok1 := source.Get(left)
	sr, ok2 := source.Get(right)
	cl, ok3 := candidate.Get(left)
	cr, ok4 := candidate.Get(right)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	srcOrder := sl.X - sr.X
	candOrder := cl.X - cr.X
	return srcOrder*candOrder < 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
