package app

import (
	"time"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/geometry"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/pedometer"
	"github.com/relabs-tech/inertial_nav/internal/tracker"
	"github.com/relabs-tech/inertial_nav/internal/vision"
)

// Tick is the result of one fusion step.
type Tick struct {
	Time       time.Time
	Pose       orientation.Pose
	Guidance   navigation.Guidance
	Confidence float64 // gate score, 0 without a camera
	Stats      tracker.Stats
}

// Pipeline wires step detection, heading, the motion gate, the tracker and the
// navigator. Sense and Calibrate belong to the sensor loop; Track, SetTarget,
// ClearTarget and ObserveObstacle belong to the fusion loop.
type Pipeline struct {
	steps   *pedometer.Detector
	heading *orientation.Integrator
	gate    *vision.Gate
	camera  vision.FrameSource
	tracker *tracker.Tracker
	nav     *navigation.Navigator
}

// NewPipeline builds a pipeline from cfg. With a nil camera or the gate disabled
// every detected step is accepted.
func NewPipeline(cfg *config.Config, camera vision.FrameSource) *Pipeline {
	p := &Pipeline{
		steps:   pedometer.New(cfg.Pedometer()),
		heading: orientation.NewIntegrator(),
		nav:     navigation.New(cfg.Navigation()),
	}
	if cfg.GateEnabled && camera != nil {
		p.gate = vision.NewGate(cfg.Gate())
		p.camera = camera
		p.tracker = tracker.New(cfg.Tracker(), p.gate)
	} else {
		p.tracker = tracker.New(cfg.Tracker(), nil)
	}
	return p
}

// Sense feeds one IMU sample and reports a detected step.
func (p *Pipeline) Sense(m imu.Motion) (pedometer.StepEvent, bool) {
	ev, ok := p.steps.Update(m.Accel)
	p.tracker.SetHeading(p.heading.Update(m.Rotation.YawRate, m.Rotation.Time))
	return ev, ok
}

// Calibrate overrides the heading with an absolute one in degrees.
func (p *Pipeline) Calibrate(headingDeg float64) {
	p.heading.Calibrate(geometry.Radians(headingDeg))
	p.tracker.SetHeading(p.heading.Heading())
}

// Track samples the camera, applies steps detected since the last call and runs
// the navigator on the resulting pose.
func (p *Pipeline) Track(now time.Time, steps int) Tick {
	var score float64
	if p.gate != nil {
		score = p.gate.Sample(p.camera)
	}
	for i := 0; i < steps; i++ {
		p.tracker.OnStep()
	}
	pose := p.tracker.CurrentPose()
	return Tick{
		Time:       now,
		Pose:       pose,
		Guidance:   p.nav.Update(pose),
		Confidence: score,
		Stats:      p.tracker.Stats(),
	}
}

// SetTarget hands a new goal to the navigator.
func (p *Pipeline) SetTarget(x, y float64) navigation.Guidance {
	return p.nav.SetTarget(x, y)
}

// ClearTarget drops the goal.
func (p *Pipeline) ClearTarget() {
	p.nav.ClearTarget()
}

// ObserveObstacle forwards a detection to the navigator.
func (p *Pipeline) ObserveObstacle(o navigation.Obstacle) {
	p.nav.ObserveObstacle(o)
}

// Target returns the navigator's goal.
func (p *Pipeline) Target() (x, y float64, ok bool) {
	t, ok := p.nav.Target()
	return t.X, t.Y, ok
}

// Steps returns the number of steps detected so far, accepted or not.
func (p *Pipeline) Steps() uint64 {
	return p.steps.Steps()
}
