package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/tracker"
)

func TestFormatPose(t *testing.T) {
	line := formatPose(PoseMessage{
		Pose:       orientation.Pose{X: 1.25, Y: -3},
		HeadingDeg: 90,
		Confidence: 12.5,
		Stats:      tracker.Stats{Accepted: 4, Suppressed: 1},
	})
	assert.Equal(t, "[POSE]  X=   1.25  Y=  -3.00  H=  90.0  conf= 12.5  steps=4/5", line)
}

func TestFormatGuidance(t *testing.T) {
	tests := []struct {
		name string
		in   navigation.Guidance
		want string
	}{
		{
			"turn with haptic",
			navigation.Guidance{Instruction: "Turn left 60 degrees", Event: navigation.EventLeft,
				Distance: 4, Bearing: 300, AngleDiff: -60, State: navigation.StateRotating},
			"[NAV ]  ROTATING dist=  4.00 bearing= 300.0 diff= -60.0  >> Turn left 60 degrees [left]",
		},
		{
			"voice only",
			navigation.Guidance{Instruction: "Turn right 15 degrees", Distance: 2, Bearing: 15,
				AngleDiff: 15, State: navigation.StateRotating},
			"[NAV ]  ROTATING dist=  2.00 bearing=  15.0 diff=  15.0  >> Turn right 15 degrees",
		},
		{
			"quiet",
			navigation.Guidance{State: navigation.StateIdle},
			"[NAV ]  IDLE     dist=  0.00 bearing=   0.0 diff=   0.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatGuidance(GuidanceMessage{Guidance: tt.in}))
		})
	}
}
