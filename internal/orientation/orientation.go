package orientation

import (
	"math"
)

// Pose is the walker's dead-reckoned state in the tracker's world frame.
//
// X and Y are meters from the start position. Heading is radians in [0, 2π),
// 0 being the device's initial facing direction (+y) and increasing clockwise.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// HeadingDegrees returns Heading in degrees.
func (p Pose) HeadingDegrees() float64 {
	return p.Heading * 180.0 / math.Pi
}

// WrapRadians maps any angle onto [0, 2π). NaN stays NaN.
func WrapRadians(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	// A tiny negative input rounds up to exactly 2π after the shift.
	if h >= 2*math.Pi {
		h = 0
	}
	return h
}
