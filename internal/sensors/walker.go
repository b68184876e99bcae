// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/imu"
)

// Leg is one straight walk followed by an in-place turn (degrees, positive right).
type Leg struct {
	Steps int
	Turn  float64
}

// WalkerConfig shapes the synthetic signals.
type WalkerConfig struct {
	SampleInterval time.Duration // virtual time between samples
	Lead           time.Duration // standing still before the first leg
	Cadence        float64       // steps per second
	PulseDuration  time.Duration // heel-strike pulse length
	PulseAccel     float64       // m/s² added on Z during the pulse
	TurnRate       float64       // degrees per second while turning
	Start          time.Time
}

// DefaultWalkerConfig is a relaxed indoor walk sampled at 50 Hz.
func DefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		SampleInterval: 20 * time.Millisecond,
		Lead:           time.Second,
		Cadence:        1.8,
		PulseDuration:  120 * time.Millisecond,
		PulseAccel:     8,
		TurnRate:       90,
		Start:          time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

type walkPhase int

const (
	phaseStanding walkPhase = iota
	phaseWalking
	phaseTurning
	phaseDone
)

// Walker replays a route as accelerometer step pulses and gyroscope yaw rates on
// a virtual clock that advances by SampleInterval per read. It never fails.
type Walker struct {
	cfg  WalkerConfig
	legs []Leg

	t       time.Time
	phase   walkPhase
	leg     int
	inPhase time.Duration
	steps   int
	turnRem float64
}

// NewWalker returns a walker standing at the start of route.
func NewWalker(cfg WalkerConfig, route []Leg) *Walker {
	return &Walker{cfg: cfg, legs: route, t: cfg.Start}
}

// ReadMotion advances the virtual clock and returns the sample for the elapsed interval.
func (w *Walker) ReadMotion() (imu.Motion, error) {
	dt := w.cfg.SampleInterval
	w.t = w.t.Add(dt)

	z := imu.StandardGravity
	yaw := 0.0

	switch w.phase {
	case phaseStanding:
		w.inPhase += dt
		if w.inPhase >= w.cfg.Lead {
			w.startLeg(0)
		}

	case phaseWalking:
		if w.inPhase < w.cfg.PulseDuration {
			z += w.cfg.PulseAccel
		}
		w.inPhase += dt
		if w.inPhase >= w.stepPeriod() {
			w.inPhase -= w.stepPeriod()
			w.steps++
			if w.steps >= w.legs[w.leg].Steps {
				w.startTurn()
			}
		}

	case phaseTurning:
		step := w.cfg.TurnRate * dt.Seconds()
		if math.Abs(w.turnRem) <= step {
			yaw = w.turnRem / dt.Seconds()
			w.turnRem = 0
			w.startLeg(w.leg + 1)
		} else {
			yaw = math.Copysign(w.cfg.TurnRate, w.turnRem)
			w.turnRem -= math.Copysign(step, w.turnRem)
		}
	}

	return imu.Motion{
		Accel:    imu.AccelerationSample{Z: z, Time: w.t},
		Rotation: imu.RotationSample{YawRate: yaw, Time: w.t},
	}, nil
}

func (w *Walker) stepPeriod() time.Duration {
	return time.Duration(float64(time.Second) / w.cfg.Cadence)
}

func (w *Walker) startLeg(i int) {
	w.leg = i
	w.inPhase = 0
	w.steps = 0
	if i >= len(w.legs) {
		w.phase = phaseDone
		return
	}
	w.phase = phaseWalking
	if w.legs[i].Steps <= 0 {
		w.startTurn()
	}
}

func (w *Walker) startTurn() {
	w.turnRem = w.legs[w.leg].Turn
	if w.turnRem == 0 {
		w.startLeg(w.leg + 1)
		return
	}
	w.phase = phaseTurning
}

// Moving reports whether the walker is walking or turning.
func (w *Walker) Moving() bool {
	return w.phase == phaseWalking || w.phase == phaseTurning
}

// Done reports whether the route is finished.
func (w *Walker) Done() bool {
	return w.phase == phaseDone
}

// Now returns the walker's virtual time.
func (w *Walker) Now() time.Time {
	return w.t
}
