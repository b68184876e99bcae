// Package pedometer detects walking steps from accelerometer samples.
//
// The detector is a single-threshold peak detector on the gravity-normalised
// magnitude of an exponentially smoothed acceleration vector, with a latch
// (one step per excursion) and a refractory interval (fastest plausible cadence).
package pedometer

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/imu"
)

// Config holds the step detector tunables.
type Config struct {
	Alpha           float64       // low-pass weight of the previous filtered value (0-1)
	Gravity         float64       // m/s² used to normalise the magnitude
	Threshold       float64       // normalised magnitude a peak must exceed
	MinStepInterval time.Duration // refractory interval between steps
}

// DefaultConfig returns the tuning used for handheld phones and IMU boards.
func DefaultConfig() Config {
	return Config{
		Alpha:           0.8,
		Gravity:         imu.StandardGravity,
		Threshold:       1.2,
		MinStepInterval: 350 * time.Millisecond,
	}
}

// StepEvent marks one detected footfall.
type StepEvent struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
}

// Detector is not safe for concurrent use.
type Detector struct {
	cfg Config

	fx, fy, fz  float64
	initialized bool

	peak     bool
	lastStep time.Time
	stepped  bool
	seq      uint64
	mag      float64
}

// New returns a detector with no filter history.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Update feeds one sample and reports whether it completed a step.
func (d *Detector) Update(s imu.AccelerationSample) (StepEvent, bool) {
	if !d.initialized {
		d.fx, d.fy, d.fz = s.X, s.Y, s.Z
		d.initialized = true
		d.mag = d.magnitude()
		return StepEvent{}, false
	}

	a := d.cfg.Alpha
	d.fx = a*d.fx + (1-a)*s.X
	d.fy = a*d.fy + (1-a)*s.Y
	d.fz = a*d.fz + (1-a)*s.Z
	d.mag = d.magnitude()

	if d.mag > d.cfg.Threshold {
		// The latch holds for the whole excursion, so a peak that starts inside
		// the refractory interval cannot fire once the interval runs out.
		wasPeak := d.peak
		d.peak = true
		if wasPeak || !d.refractoryElapsed(s.Time) {
			return StepEvent{}, false
		}
		d.stepped = true
		d.lastStep = s.Time
		d.seq++
		return StepEvent{Seq: d.seq, Time: s.Time}, true
	}

	if d.mag < d.cfg.Threshold {
		d.peak = false
	}
	return StepEvent{}, false
}

func (d *Detector) refractoryElapsed(t time.Time) bool {
	return !d.stepped || t.Sub(d.lastStep) >= d.cfg.MinStepInterval
}

func (d *Detector) magnitude() float64 {
	return math.Sqrt(d.fx*d.fx+d.fy*d.fy+d.fz*d.fz) / d.cfg.Gravity
}

// Magnitude returns the last filtered, gravity-normalised magnitude.
func (d *Detector) Magnitude() float64 {
	return d.mag
}

// Steps returns the number of steps detected since construction or Reset.
func (d *Detector) Steps() uint64 {
	return d.seq
}

// Reset drops the filter state, latch and step count.
func (d *Detector) Reset() {
	*d = Detector{cfg: d.cfg}
}
