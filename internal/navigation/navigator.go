// Package navigation turns pose and target into turn/walk/arrival guidance.
//
// The navigator is a four-state machine with asymmetric deadbands: it enters
// MOVING under MoveDeadband but only leaves it above RotationDeadband, and it only
// leaves ARRIVED beyond twice the arrival radius.
package navigation

import (
	"fmt"
	"math"

	"github.com/relabs-tech/inertial_nav/internal/geometry"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

// Config holds the guidance tunables. Angles are degrees, distances meters.
type Config struct {
	ArrivalRadius        float64
	RotationDeadband     float64 // |angleDiff| above which MOVING falls back to ROTATING
	MoveDeadband         float64 // |angleDiff| below which ROTATING becomes MOVING
	HapticTurnAngle      float64 // turn instructions above this also vibrate
	ObstacleStopDistance float64 // obstacles closer than this stop the walker
}

// DefaultConfig returns the recommended guidance thresholds.
func DefaultConfig() Config {
	return Config{
		ArrivalRadius:        1.5,
		RotationDeadband:     20,
		MoveDeadband:         10,
		HapticTurnAngle:      45,
		ObstacleStopDistance: 1.0,
	}
}

const (
	msgDestinationSet = "Destination set"
	msgWalkForward    = "Walk forward"
	msgArrived        = "You have arrived"
)

// Navigator is not safe for concurrent use.
type Navigator struct {
	cfg Config

	state     State
	target    geometry.Point
	hasTarget bool
	obstacle  *Obstacle
}

// New returns an idle navigator.
func New(cfg Config) *Navigator {
	return &Navigator{cfg: cfg}
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.state
}

// Target returns the current target, if any.
func (n *Navigator) Target() (geometry.Point, bool) {
	return n.target, n.hasTarget
}

// SetTarget replaces the goal and restarts guidance in ROTATING.
func (n *Navigator) SetTarget(x, y float64) Guidance {
	n.target = geometry.Point{X: x, Y: y}
	n.hasTarget = true
	n.state = StateRotating
	n.obstacle = nil
	return Guidance{
		Instruction: msgDestinationSet,
		Event:       EventInfo,
		State:       n.state,
	}
}

// ClearTarget drops the goal; the navigator goes IDLE.
func (n *Navigator) ClearTarget() {
	n.hasTarget = false
	n.state = StateIdle
	n.obstacle = nil
}

// Reset returns the navigator to its constructed state.
func (n *Navigator) Reset() {
	*n = Navigator{cfg: n.cfg}
}

// ObserveObstacle records a detection to be considered by the next Update.
// A nearer detection replaces a farther pending one.
func (n *Navigator) ObserveObstacle(o Obstacle) {
	if n.obstacle != nil && n.obstacle.Distance <= o.Distance {
		return
	}
	n.obstacle = &o
}

// Update evaluates the transitions for pose and returns the guidance for this tick.
func (n *Navigator) Update(pose orientation.Pose) Guidance {
	obstacle := n.obstacle
	n.obstacle = nil

	if !n.hasTarget {
		n.state = StateIdle
		return Guidance{State: n.state}
	}

	here := geometry.Point{X: pose.X, Y: pose.Y}
	dist := geometry.Distance(here, n.target)
	bearing := geometry.Bearing(here, n.target)
	diff := geometry.AngleDiff(pose.HeadingDegrees(), bearing)

	out := Guidance{Distance: dist, Bearing: bearing, AngleDiff: diff}

	switch {
	case dist < n.cfg.ArrivalRadius:
		if n.state != StateArrived {
			n.state = StateArrived
			out.Instruction = msgArrived
			out.Event = EventArrived
		}

	case n.state == StateArrived:
		if dist > 2*n.cfg.ArrivalRadius {
			n.state = StateRotating
			if math.Abs(diff) >= n.cfg.MoveDeadband {
				n.turn(&out)
			}
		}

	case n.state == StateMoving:
		if math.Abs(diff) > n.cfg.RotationDeadband {
			n.state = StateRotating
			n.turn(&out)
		} else if obstacle != nil && obstacle.Distance < n.cfg.ObstacleStopDistance {
			out.Instruction = fmt.Sprintf("Stop, %s ahead", obstacle.Label)
			out.Event = EventStop
		}

	default:
		n.state = StateRotating
		n.rotate(&out)
	}

	out.State = n.state
	return out
}

// rotate handles a ROTATING tick: walk once aligned, keep turning otherwise.
func (n *Navigator) rotate(out *Guidance) {
	if math.Abs(out.AngleDiff) < n.cfg.MoveDeadband {
		n.state = StateMoving
		out.Instruction = msgWalkForward
		out.Event = EventStraight
		return
	}
	n.turn(out)
}

func (n *Navigator) turn(out *Guidance) {
	dir, ev := "right", EventRight
	if out.AngleDiff <= 0 {
		dir, ev = "left", EventLeft
	}
	out.Instruction = fmt.Sprintf("Turn %s %d degrees", dir, int(math.Round(math.Abs(out.AngleDiff))))
	if math.Abs(out.AngleDiff) > n.cfg.HapticTurnAngle {
		out.Event = ev
	}
}
