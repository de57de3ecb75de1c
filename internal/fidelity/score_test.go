package fidelity

import (
	"testing"

	"pose-gate/internal/landmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standingPose returns a full landmark map for an upright figure facing the
// camera, arms at the sides. Coordinates are normalized, y grows downward.
func standingPose(visibility float64) map[landmark.Part]landmark.Landmark {
	at := func(x, y float64) landmark.Landmark {
		return landmark.Landmark{X: x, Y: y, Visibility: visibility}
	}
	return map[landmark.Part]landmark.Landmark{
		landmark.Nose:          at(0.50, 0.10),
		landmark.Neck:          at(0.50, 0.20),
		landmark.RightShoulder: at(0.40, 0.22),
		landmark.RightElbow:    at(0.37, 0.35),
		landmark.RightWrist:    at(0.36, 0.48),
		landmark.LeftShoulder:  at(0.60, 0.22),
		landmark.LeftElbow:     at(0.63, 0.35),
		landmark.LeftWrist:     at(0.64, 0.48),
		landmark.MidHip:        at(0.50, 0.50),
		landmark.RightHip:      at(0.44, 0.50),
		landmark.RightKnee:     at(0.44, 0.70),
		landmark.RightAnkle:    at(0.44, 0.90),
		landmark.LeftHip:       at(0.56, 0.50),
		landmark.LeftKnee:      at(0.56, 0.70),
		landmark.LeftAnkle:     at(0.56, 0.90),
		landmark.RightEye:      at(0.47, 0.08),
		landmark.LeftEye:       at(0.53, 0.08),
		landmark.RightEar:      at(0.44, 0.09),
		landmark.LeftEar:       at(0.56, 0.09),
		landmark.LeftBigToe:    at(0.59, 0.93),
		landmark.RightBigToe:   at(0.47, 0.93),
	}
}

func TestScoreIdenticalPose(t *testing.T) {
	pose := landmark.NewSet(standingPose(0.9))
	r := Score(pose, pose, DefaultParams())

	assert.True(t, r.Passed)
	assert.True(t, r.ValidationPerformed)
	assert.InDelta(t, 1.0, r.PoseScore, 1e-9)
	assert.InDelta(t, 1.0, r.AngleScore, 1e-9)
	assert.InDelta(t, 1.0, r.PositionScore, 1e-9)
	assert.Zero(t, r.MaxJointDelta)
	assert.False(t, r.MirrorSuspected)
	assert.Equal(t, FailureNone, r.FailureReason)
	assert.GreaterOrEqual(t, r.ComparedJointCount, DefaultParams().MinJointMatches)
}

func TestScoreIsPure(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	perturbed := standingPose(0.9)
	perturbed[landmark.RightWrist] = landmark.Landmark{X: 0.30, Y: 0.40, Visibility: 0.9}
	cand := landmark.NewSet(perturbed)

	first := Score(src, cand, DefaultParams())
	second := Score(src, cand, DefaultParams())
	assert.Equal(t, first, second)
}

func TestScoreNilSets(t *testing.T) {
	pose := landmark.NewSet(standingPose(0.9))

	r := Score(nil, pose, DefaultParams())
	assert.False(t, r.Passed)
	assert.False(t, r.SourceDetected)
	assert.Equal(t, FailureSourceNoPose, r.FailureReason)

	r = Score(pose, nil, DefaultParams())
	assert.False(t, r.Passed)
	assert.True(t, r.SourceDetected)
	assert.False(t, r.GeneratedDetected)
	assert.Equal(t, FailureGeneratedNoPose, r.FailureReason)
}

func TestScoreInsufficientJoints(t *testing.T) {
	sparse := landmark.NewSet(map[landmark.Part]landmark.Landmark{
		landmark.LeftShoulder:  {X: 0.6, Y: 0.22, Visibility: 0.9},
		landmark.RightShoulder: {X: 0.4, Y: 0.22, Visibility: 0.9},
		landmark.LeftElbow:     {X: 0.63, Y: 0.35, Visibility: 0.9},
	})
	full := landmark.NewSet(standingPose(0.9))

	r := Score(sparse, full, DefaultParams())
	assert.False(t, r.Passed)
	assert.False(t, r.ValidationPerformed)
	assert.Equal(t, FailureInsufficientJoints, r.FailureReason)
}

func TestScoreLowVisibilitySkipsJoints(t *testing.T) {
	faint := landmark.NewSet(standingPose(0.2))
	r := Score(faint, faint, DefaultParams())

	assert.Zero(t, r.ComparedJointCount)
	assert.Equal(t, FailureInsufficientJoints, r.FailureReason)
}

func TestScoreMirroredCandidate(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	flipped := make(map[landmark.Part]landmark.Landmark)
	for p, l := range standingPose(0.9) {
		l.X = 1 - l.X
		flipped[p] = l
	}
	cand := landmark.NewSet(flipped)

	r := Score(src, cand, DefaultParams())
	assert.True(t, r.MirrorSuspected)
	assert.False(t, r.Passed)
}

func TestScoreSwappedSideLabels(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	// Same coordinates, but shoulder and hip labels exchanged left for
	// right, as a mirrored generation would present them.
	swapped := standingPose(0.9)
	swapped[landmark.LeftShoulder], swapped[landmark.RightShoulder] =
		swapped[landmark.RightShoulder], swapped[landmark.LeftShoulder]
	swapped[landmark.LeftHip], swapped[landmark.RightHip] =
		swapped[landmark.RightHip], swapped[landmark.LeftHip]
	cand := landmark.NewSet(swapped)

	r := Score(src, cand, DefaultParams())
	assert.True(t, r.MirrorSuspected)
	assert.False(t, r.Passed)
}

func TestScoreLargeJointDeviation(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	bent := standingPose(0.9)
	// Fold the right forearm up toward the shoulder.
	bent[landmark.RightWrist] = landmark.Landmark{X: 0.42, Y: 0.24, Visibility: 0.9}
	cand := landmark.NewSet(bent)

	p := DefaultParams()
	r := Score(src, cand, p)
	require.True(t, r.ValidationPerformed)
	assert.Greater(t, r.MaxJointDelta, p.MaxJointDeltaDegrees)
	assert.False(t, r.Passed)

	// One folded limb barely dents the combined score; the verdict failed
	// on the joint delta, so the reason must not blame the score.
	assert.GreaterOrEqual(t, r.PoseScore, p.ScoreThreshold)
	assert.Equal(t, FailureNone, r.FailureReason)
}

func TestScoreMirrorOnlyFailureLeavesReasonEmpty(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	flipped := make(map[landmark.Part]landmark.Landmark)
	for p, l := range standingPose(0.9) {
		l.X = 1 - l.X
		flipped[p] = l
	}
	cand := landmark.NewSet(flipped)

	// A mirrored symmetric pose keeps its joint angles; drop the score bar
	// so the mirror check is the only thing failing the verdict.
	p := DefaultParams()
	p.ScoreThreshold = 0.5

	r := Score(src, cand, p)
	require.True(t, r.ValidationPerformed)
	assert.True(t, r.MirrorSuspected)
	assert.GreaterOrEqual(t, r.PoseScore, p.ScoreThreshold)
	assert.LessOrEqual(t, r.MaxJointDelta, p.MaxJointDeltaDegrees)
	assert.False(t, r.Passed)
	assert.Equal(t, FailureNone, r.FailureReason)
}

func TestScoreBelowThresholdReason(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	flipped := make(map[landmark.Part]landmark.Landmark)
	for p, l := range standingPose(0.9) {
		l.X = 1 - l.X
		flipped[p] = l
	}
	cand := landmark.NewSet(flipped)

	// At the default bar the mirrored pose also scores too low on
	// position, so the score reason applies.
	r := Score(src, cand, DefaultParams())
	assert.False(t, r.Passed)
	assert.Less(t, r.PoseScore, DefaultParams().ScoreThreshold)
	assert.Equal(t, FailureScoreBelowThreshold, r.FailureReason)
}

func TestScoreSmallPerturbationScoresBelowIdentical(t *testing.T) {
	src := landmark.NewSet(standingPose(0.9))

	nudged := standingPose(0.9)
	nudged[landmark.LeftWrist] = landmark.Landmark{X: 0.66, Y: 0.47, Visibility: 0.9}
	cand := landmark.NewSet(nudged)

	identical := Score(src, src, DefaultParams())
	perturbed := Score(src, cand, DefaultParams())

	assert.Less(t, perturbed.PoseScore, identical.PoseScore)
	assert.GreaterOrEqual(t, perturbed.PoseScore, 0.0)
	assert.LessOrEqual(t, perturbed.PoseScore, 1.0)
}

func TestUnavailable(t *testing.T) {
	r := Unavailable()
	assert.False(t, r.Available)
	assert.False(t, r.Passed)
	assert.False(t, r.ValidationPerformed)
	assert.Equal(t, FailureDetectorUnavailable, r.FailureReason)
}

func TestAngleCatalogueCoversBothSides(t *testing.T) {
	var left, right int
	for _, triple := range AngleCatalogue() {
		switch triple.Joint[0] {
		case 'l':
			left++
		case 'r':
			right++
		}
	}
	assert.Equal(t, left, right)
}
