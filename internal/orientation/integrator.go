package orientation

import (
	"math"
	"time"
)

// Integrator turns gyroscope yaw rate into a running heading.
//
// It is open-loop: drift accumulates until Calibrate injects an absolute heading.
// Not safe for concurrent use; the caller owns it from a single sensor loop.
type Integrator struct {
	heading    float64
	last       time.Time
	started    bool
	calibrated bool
}

// NewIntegrator returns an integrator at heading 0, uncalibrated.
func NewIntegrator() *Integrator {
	return &Integrator{}
}

// Update integrates yawRate (degrees/second, positive clockwise) up to t and
// returns the wrapped heading in radians.
//
// The first call only records t. Samples with a non-positive dt contribute nothing
// but still advance the reference time when later.
func (in *Integrator) Update(yawRate float64, t time.Time) float64 {
	if !in.started {
		in.started = true
		in.last = t
		return in.heading
	}

	dt := t.Sub(in.last).Seconds()
	if dt <= 0 {
		return in.heading
	}
	in.last = t

	in.heading = WrapRadians(in.heading + yawRate*(math.Pi/180.0)*dt)
	return in.heading
}

// Calibrate overwrites the heading with an absolute reading, e.g. from a compass.
func (in *Integrator) Calibrate(heading float64) {
	in.heading = WrapRadians(heading)
	in.calibrated = true
}

// Heading returns the current heading in radians.
func (in *Integrator) Heading() float64 {
	return in.heading
}

// Calibrated reports whether an absolute heading has been injected since the last Reset.
func (in *Integrator) Calibrated() bool {
	return in.calibrated
}

// Reset forgets the heading, the time reference and the calibration flag.
func (in *Integrator) Reset() {
	*in = Integrator{}
}
