// Package fidelity scores geometric pose agreement between a reference image
// and a generated candidate using detected body landmarks.
package fidelity

// Params configures pose fidelity scoring.
type Params struct {
	// ScoreThreshold is the minimum combined pose score for a pass.
	ScoreThreshold float64 `yaml:"score_threshold"`

	// MaxJointDeltaDegrees is the largest single joint-angle deviation a
	// passing candidate may have.
	MaxJointDeltaDegrees float64 `yaml:"max_joint_delta_degrees"`

	// MinVisibility is the per-landmark confidence floor for a joint to
	// participate in comparison.
	MinVisibility float64 `yaml:"min_visibility"`

	// MinJointMatches is the minimum number of comparable angle triples
	// required for a valid comparison.
	MinJointMatches int `yaml:"min_joint_matches"`

	// AngleSaturationDegrees is the delta at which a joint earns zero angle
	// credit. Empirically tuned; flagged for recalibration, not re-derived.
	AngleSaturationDegrees float64 `yaml:"angle_saturation_degrees"`

	// PositionDistanceScale is the torso-normalized distance at which a
	// point earns zero position credit. Empirically tuned.
	PositionDistanceScale float64 `yaml:"position_distance_scale"`

	// AngleWeight and PositionWeight combine the two sub-scores.
	AngleWeight    float64 `yaml:"angle_weight"`
	PositionWeight float64 `yaml:"position_weight"`
}

// DefaultParams returns the tuned scoring defaults.
func DefaultParams() Params {
	return Params{
		ScoreThreshold:         0.86,
		MaxJointDeltaDegrees:   14.0,
		MinVisibility:          0.45,
		MinJointMatches:        6,
		AngleSaturationDegrees: 45.0,
		PositionDistanceScale:  1.2,
		AngleWeight:            0.68,
		PositionWeight:         0.32,
	}
}
