// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/pedometer"
	"github.com/relabs-tech/inertial_nav/internal/sensors"
	"github.com/relabs-tech/inertial_nav/internal/trail"
	"github.com/relabs-tech/inertial_nav/internal/vision"
)

// lockedWalker lets the sensor loop advance the walker while the scene camera
// polls it from the fusion loop.
type lockedWalker struct {
	mu sync.Mutex
	w  *sensors.Walker
}

func (l *lockedWalker) ReadMotion() (imu.Motion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.ReadMotion()
}

func (l *lockedWalker) Moving() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Moving()
}

// navigatorLoops is the state shared by the sensor and fusion loops. Everything
// that crosses between them goes through the channels.
type navigatorLoops struct {
	cfg      *config.Config
	pipeline *Pipeline
	reader   sensors.MotionReader
	publish  publishFunc
	rec      *trail.DB
	session  string
	now      func() time.Time

	steps     chan pedometer.StepEvent
	targets   chan TargetRequest
	obstacles chan navigation.Obstacle
	compass   chan CompassFix

	targetID string
	lastLog  time.Time
}

func newNavigatorLoops(cfg *config.Config, reader sensors.MotionReader, cam vision.FrameSource, publish publishFunc) *navigatorLoops {
	return &navigatorLoops{
		cfg:       cfg,
		pipeline:  NewPipeline(cfg, cam),
		reader:    reader,
		publish:   publish,
		now:       time.Now,
		steps:     make(chan pedometer.StepEvent, 64),
		targets:   make(chan TargetRequest, 8),
		obstacles: make(chan navigation.Obstacle, 8),
		compass:   make(chan CompassFix, 8),
	}
}

// sense reads one IMU sample and applies pending compass fixes.
func (n *navigatorLoops) sense() {
	select {
	case fix := <-n.compass:
		n.pipeline.Calibrate(fix.HeadingDeg)
		log.Printf("navigator: heading calibrated to %.1f° (%s)", fix.HeadingDeg, fix.Sentence)
	default:
	}

	m, err := n.reader.ReadMotion()
	if err != nil {
		log.Printf("navigator: IMU read error: %v", err)
		return
	}

	if ev, ok := n.pipeline.Sense(m); ok {
		select {
		case n.steps <- ev:
		default:
			log.Printf("navigator: step queue full, dropping step %d", ev.Seq)
		}
	}

	if raw, ok := n.reader.(*sensors.RawMotion); ok {
		now := n.now()
		if now.Sub(n.lastLog) >= time.Duration(n.cfg.ConsoleLogInterval)*time.Millisecond {
			n.lastLog = now
			r := raw.LastRaw()
			if err := n.publish(n.cfg.TopicIMURaw, r); err != nil {
				log.Printf("navigator: %v", err)
			}
			log.Printf("%s tick: accel ax=%d ay=%d az=%d | gyro gx=%d gy=%d gz=%d | steps=%d",
				now.Format(time.RFC3339), r.Ax, r.Ay, r.Az, r.Gx, r.Gy, r.Gz, n.pipeline.Steps())
		}
	}
}

// handleTarget applies a target request and publishes the resulting guidance.
func (n *navigatorLoops) handleTarget(req TargetRequest) {
	if req.Clear {
		n.pipeline.ClearTarget()
		n.targetID = ""
		log.Println("navigator: target cleared")
		return
	}

	n.targetID = req.ID
	g := n.pipeline.SetTarget(req.X, req.Y)
	log.Printf("navigator: target %s set to (%.2f, %.2f)", req.ID, req.X, req.Y)
	n.publishGuidance(g, n.now())
}

// fuse drains the queued steps, runs one pipeline tick and publishes the result.
func (n *navigatorLoops) fuse(now time.Time) Tick {
	pending := 0
drain:
	for {
		select {
		case <-n.steps:
			pending++
		default:
			break drain
		}
	}

	tick := n.pipeline.Track(now, pending)

	if err := n.publish(n.cfg.TopicPose, newPoseMessage(tick)); err != nil {
		log.Printf("navigator: %v", err)
	}
	n.publishGuidance(tick.Guidance, now)

	if !tick.Guidance.Empty() {
		log.Printf("navigator: %s [%s] dist=%.2f state=%s",
			tick.Guidance.Instruction, tick.Guidance.Event, tick.Guidance.Distance, tick.Guidance.State)
	}

	if n.rec != nil {
		x, y, ok := n.pipeline.Target()
		err := n.rec.Record(trail.Sample{
			Session:  n.session,
			Time:     now,
			Pose:     tick.Pose,
			Guidance: tick.Guidance,
			TargetX:  x,
			TargetY:  y,
			Target:   ok,
		})
		if err != nil {
			log.Printf("navigator: %v", err)
		}
	}
	return tick
}

func (n *navigatorLoops) publishGuidance(g navigation.Guidance, now time.Time) {
	msg := GuidanceMessage{Guidance: g, TargetID: n.targetID, Time: now}
	if err := n.publish(n.cfg.TopicGuidance, msg); err != nil {
		log.Printf("navigator: %v", err)
	}
}

func (n *navigatorLoops) sensorLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(n.cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n.sense()
		}
	}
}

func (n *navigatorLoops) fusionLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(n.cfg.TrackInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-n.targets:
			n.handleTarget(req)
		case o := <-n.obstacles:
			n.pipeline.ObserveObstacle(o)
		case t := <-ticker.C:
			n.fuse(t)
		}
	}
}

// openMotionSource returns the configured IMU and, for the walker, the mover the
// synthetic camera follows.
func openMotionSource(cfg *config.Config) (sensors.MotionReader, sensors.Mover, error) {
	switch cfg.IMUSource {
	case "mpu9250":
		raw, err := sensors.NewMPU9250(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUScale())
		if err != nil {
			return nil, nil, err
		}
		log.Printf("navigator: using MPU9250 on %s", cfg.IMUSPIDevice)
		return sensors.NewRawMotion(raw, cfg.IMUScale()), nil, nil
	default:
		wcfg := sensors.DefaultWalkerConfig()
		wcfg.SampleInterval = time.Duration(cfg.IMUSampleInterval) * time.Millisecond
		wcfg.Start = time.Now()
		lw := &lockedWalker{w: sensors.NewWalker(wcfg, demoRoute)}
		log.Printf("navigator: using simulated walker (%d legs)", len(demoRoute))
		return lw, lw, nil
	}
}

// CameraOpener opens a capture device and returns it with its close function.
// The OpenCV-backed opener lives in cmd/navigator so this package builds without cgo.
type CameraOpener func(device string) (vision.FrameSource, func() error, error)

// openFrameSource returns the configured camera, or nil for inertial-only tracking.
func openFrameSource(cfg *config.Config, mover sensors.Mover, open CameraOpener) (vision.FrameSource, func() error, error) {
	noop := func() error { return nil }
	if !cfg.GateEnabled {
		log.Println("navigator: motion gate disabled, accepting every step")
		return nil, noop, nil
	}

	switch cfg.CameraDevice {
	case "", "none":
		log.Println("navigator: no camera, accepting every step")
		return nil, noop, nil
	case "sim":
		if mover == nil {
			log.Println("navigator: WARNING: sim camera needs the walker source, accepting every step")
			return nil, noop, nil
		}
		log.Println("navigator: using simulated scene camera")
		return sensors.NewSceneCamera(mover), noop, nil
	default:
		if open == nil {
			return nil, nil, fmt.Errorf("no camera driver for device %q", cfg.CameraDevice)
		}
		c, closeCam, err := open(cfg.CameraDevice)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("navigator: using camera %s", cfg.CameraDevice)
		return c, closeCam, nil
	}
}

// RunNavigator runs the sensor and fusion loops until ctx is cancelled. open is
// used for any CAMERA_DEVICE other than "", "none" and "sim".
func RunNavigator(ctx context.Context, open CameraOpener) error {
	log.Println("starting inertial-nav navigator")

	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("navigator: configuration not loaded")
	}

	reader, mover, err := openMotionSource(cfg)
	if err != nil {
		return fmt.Errorf("navigator: %w", err)
	}

	cam, closeCam, err := openFrameSource(cfg, mover, open)
	if err != nil {
		return fmt.Errorf("navigator: %w", err)
	}
	defer closeCam()

	client, err := connectMQTT("navigator", cfg.MQTTBroker, cfg.MQTTClientIDNavigator)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	loops := newNavigatorLoops(cfg, reader, cam, telemetryPublisher(client))

	if cfg.TrailDBPath != "" {
		rec, err := trail.Open(cfg.TrailDBPath)
		if err != nil {
			return fmt.Errorf("navigator: %w", err)
		}
		defer rec.Close()
		session, err := rec.NewSession()
		if err != nil {
			return fmt.Errorf("navigator: %w", err)
		}
		loops.rec = rec
		loops.session = session
		log.Printf("navigator: recording session %s to %s", session, cfg.TrailDBPath)
	}

	if err := subscribeJSON(client, "navigator", cfg.TopicTarget, func(req TargetRequest) {
		select {
		case loops.targets <- req:
		default:
			log.Println("navigator: target queue full, dropping request")
		}
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, "navigator", cfg.TopicObstacle, func(o navigation.Obstacle) {
		select {
		case loops.obstacles <- o:
		default:
		}
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, "navigator", cfg.TopicCompass, func(fix CompassFix) {
		select {
		case loops.compass <- fix:
		default:
		}
	}); err != nil {
		return err
	}

	log.Println("navigator: starting sensor and fusion loops")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loops.sensorLoop(ctx) })
	g.Go(func() error { return loops.fusionLoop(ctx) })
	err = g.Wait()

	log.Println("navigator: shutting down")
	return err
}
