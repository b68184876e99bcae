// Package tracker owns the dead-reckoned pose.
//
// Steps advance the position by a fixed stride along the current heading. When a
// Confirmer is wired in, a step is only accepted while it reports visual motion.
package tracker

import (
	"math"
	"sync"

	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

// Config holds the tracker tunables.
type Config struct {
	StepLength float64 // meters per accepted step
}

// DefaultConfig uses a population-average stride.
func DefaultConfig() Config {
	return Config{StepLength: 0.7}
}

// Confirmer reports whether the device is actually translating.
// *vision.Gate satisfies it.
type Confirmer interface {
	Moving() bool
}

// Stats counts step decisions since construction or Reset.
type Stats struct {
	Accepted   int `json:"accepted"`
	Suppressed int `json:"suppressed"`
}

// Tracker is safe for concurrent use: the pose is read and written under one lock,
// so readers always see a consistent (x, y, heading) triple.
type Tracker struct {
	cfg  Config
	gate Confirmer

	mu    sync.RWMutex
	pose  orientation.Pose
	stats Stats
}

// New returns a tracker at the origin. A nil gate confirms every step.
func New(cfg Config, gate Confirmer) *Tracker {
	return &Tracker{cfg: cfg, gate: gate}
}

// OnStep advances the position by one stride unless the gate reports a static
// scene. It reports whether the step was accepted.
//
// The gate is consulted outside the pose lock; callers that share the gate between
// goroutines must serialise it themselves.
func (t *Tracker) OnStep() bool {
	confirmed := t.gate == nil || t.gate.Moving()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !confirmed {
		t.stats.Suppressed++
		return false
	}
	h := t.pose.Heading
	t.pose.X += t.cfg.StepLength * math.Sin(h)
	t.pose.Y += t.cfg.StepLength * math.Cos(h)
	t.stats.Accepted++
	return true
}

// SetHeading replaces the heading, normally with the integrator output.
func (t *Tracker) SetHeading(h float64) {
	h = orientation.WrapRadians(h)
	t.mu.Lock()
	t.pose.Heading = h
	t.mu.Unlock()
}

// CurrentPose returns a snapshot of the pose.
func (t *Tracker) CurrentPose() orientation.Pose {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pose
}

// Stats returns a snapshot of the step counters.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// Reset moves the tracker back to the origin with heading 0 and clears the counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.pose = orientation.Pose{}
	t.stats = Stats{}
	t.mu.Unlock()
}
