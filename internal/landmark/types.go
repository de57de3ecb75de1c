// Package landmark provides body keypoint extraction from images.
//
// Keypoints follow the OpenPose BODY_25 naming; only the subset consumed by
// pose comparison is exposed. Every consumer sees the same fixed schema.
package landmark

import (
	"pose-gate/pkg/geometry"
)

// Part identifies a named body keypoint.
type Part int

const (
	Nose Part = iota
	Neck
	RightShoulder
	RightElbow
	RightWrist
	LeftShoulder
	LeftElbow
	LeftWrist
	MidHip
	RightHip
	RightKnee
	RightAnkle
	LeftHip
	LeftKnee
	LeftAnkle
	RightEye
	LeftEye
	RightEar
	LeftEar
	LeftBigToe
	RightBigToe

	partCount
)

// heatmapChannel maps a Part to its BODY_25 network output channel.
var heatmapChannel = [partCount]int{
	Nose:          0,
	Neck:          1,
	RightShoulder: 2,
	RightElbow:    3,
	RightWrist:    4,
	LeftShoulder:  5,
	LeftElbow:     6,
	LeftWrist:     7,
	MidHip:        8,
	RightHip:      9,
	RightKnee:     10,
	RightAnkle:    11,
	LeftHip:       12,
	LeftKnee:      13,
	LeftAnkle:     14,
	RightEye:      15,
	LeftEye:       16,
	RightEar:      17,
	LeftEar:       18,
	LeftBigToe:    19,
	RightBigToe:   22,
}

var partNames = [partCount]string{
	Nose:          "nose",
	Neck:          "neck",
	RightShoulder: "right_shoulder",
	RightElbow:    "right_elbow",
	RightWrist:    "right_wrist",
	LeftShoulder:  "left_shoulder",
	LeftElbow:     "left_elbow",
	LeftWrist:     "left_wrist",
	MidHip:        "mid_hip",
	RightHip:      "right_hip",
	RightKnee:     "right_knee",
	RightAnkle:    "right_ankle",
	LeftHip:       "left_hip",
	LeftKnee:      "left_knee",
	LeftAnkle:     "left_ankle",
	RightEye:      "right_eye",
	LeftEye:       "left_eye",
	RightEar:      "right_ear",
	LeftEar:       "left_ear",
	LeftBigToe:    "left_big_toe",
	RightBigToe:   "right_big_toe",
}

func (p Part) String() string {
	if p < 0 || p >= partCount {
		return "unknown"
	}
	return partNames[p]
}

// Parts returns every part in the fixed schema, in channel order.
func Parts() []Part {
	parts := make([]Part, partCount)
	for i := range parts {
		parts[i] = Part(i)
	}
	return parts
}

// Landmark is a single detected keypoint. X and Y are normalized to [0,1]
// relative to the image; Visibility is the detector's confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// Point returns the landmark position as a geometry point.
func (l Landmark) Point() geometry.Point2D {
	return geometry.Point2D{X: l.X, Y: l.Y}
}

// Set is an immutable mapping of part to detected landmark for one image.
type Set struct {
	landmarks map[Part]Landmark
}

// NewSet builds a Set from detected landmarks. The input map is copied, so
// callers may reuse it.
func NewSet(landmarks map[Part]Landmark) *Set {
	m := make(map[Part]Landmark, len(landmarks))
	for p, l := range landmarks {
		m[p] = l
	}
	return &Set{landmarks: m}
}

// Get returns the landmark for a part and whether it was detected.
func (s *Set) Get(p Part) (Landmark, bool) {
	l, ok := s.landmarks[p]
	return l, ok
}

// Len returns the number of detected parts.
func (s *Set) Len() int {
	return len(s.landmarks)
}

// Visible reports whether the part was detected with at least the given
// visibility.
func (s *Set) Visible(p Part, minVisibility float64) bool {
	l, ok := s.landmarks[p]
	return ok && l.Visibility >= minVisibility
}
