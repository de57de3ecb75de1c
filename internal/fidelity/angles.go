package fidelity

import (
	"pose-gate/internal/landmark"
)

// AngleTriple names three keypoints (A, B, C) whose bend angle is measured
// at B.
type AngleTriple struct {
	Joint string
	A     landmark.Part
	B     landmark.Part
	C     landmark.Part
}

// angleCatalogue is the fixed set of joints compared between two poses.
var angleCatalogue = []AngleTriple{
	{Joint: "left_elbow", A: landmark.LeftShoulder, B: landmark.LeftElbow, C: landmark.LeftWrist},
	{Joint: "right_elbow", A: landmark.RightShoulder, B: landmark.RightElbow, C: landmark.RightWrist},
	{Joint: "left_shoulder", A: landmark.LeftElbow, B: landmark.LeftShoulder, C: landmark.LeftHip},
	{Joint: "right_shoulder", A: landmark.RightElbow, B: landmark.RightShoulder, C: landmark.RightHip},
	{Joint: "left_hip", A: landmark.LeftShoulder, B: landmark.LeftHip, C: landmark.LeftKnee},
	{Joint: "right_hip", A: landmark.RightShoulder, B: landmark.RightHip, C: landmark.RightKnee},
	{Joint: "left_knee", A: landmark.LeftHip, B: landmark.LeftKnee, C: landmark.LeftAnkle},
	{Joint: "right_knee", A: landmark.RightHip, B: landmark.RightKnee, C: landmark.RightAnkle},
	{Joint: "left_ankle", A: landmark.LeftKnee, B: landmark.LeftAnkle, C: landmark.LeftBigToe},
	{Joint: "right_ankle", A: landmark.RightKnee, B: landmark.RightAnkle, C: landmark.RightBigToe},
	{Joint: "neck", A: landmark.Nose, B: landmark.Neck, C: landmark.MidHip},
	{Joint: "neck_tilt", A: landmark.LeftShoulder, B: landmark.Neck, C: landmark.RightShoulder},
}

// positionCatalogue is the fixed set of points compared after torso
// normalization.
var positionCatalogue = []landmark.Part{
	landmark.Nose,
	landmark.Neck,
	landmark.LeftShoulder,
	landmark.RightShoulder,
	landmark.LeftElbow,
	landmark.RightElbow,
	landmark.LeftWrist,
	landmark.RightWrist,
	landmark.LeftHip,
	landmark.RightHip,
	landmark.LeftKnee,
	landmark.RightKnee,
	landmark.LeftAnkle,
	landmark.RightAnkle,
}

// AngleCatalogue returns a copy of the fixed joint catalogue.
func AngleCatalogue() []AngleTriple {
	out := make([]AngleTriple, len(angleCatalogue))
	copy(out, angleCatalogue)
	return out
}
