// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/geometry"
	"github.com/relabs-tech/inertial_nav/internal/sensors"
	"github.com/relabs-tech/inertial_nav/internal/vision"
)

// demoRoute walks an L-shaped corridor: 10 steps ahead, right turn, 5 steps.
var demoRoute = []sensors.Leg{{Steps: 10, Turn: 90}, {Steps: 5}}

// SimulateWalk replays route through a pipeline on the walker's virtual clock.
// The first tick carries the guidance from setting target; the rest are fusion
// ticks every TrackInterval. camera may be nil for inertial-only tracking.
func SimulateWalk(cfg *config.Config, route []sensors.Leg, target geometry.Point,
	camera func(*sensors.Walker) vision.FrameSource) ([]Tick, error) {

	wcfg := sensors.DefaultWalkerConfig()
	wcfg.SampleInterval = time.Duration(cfg.IMUSampleInterval) * time.Millisecond
	w := sensors.NewWalker(wcfg, route)

	var cam vision.FrameSource
	if camera != nil {
		cam = camera(w)
	}
	p := NewPipeline(cfg, cam)

	every := cfg.TrackInterval / cfg.IMUSampleInterval
	if every < 1 {
		every = 1
	}

	ticks := []Tick{{Time: w.Now(), Guidance: p.SetTarget(target.X, target.Y)}}
	pending := 0
	for n := 1; ; n++ {
		m, err := w.ReadMotion()
		if err != nil {
			return ticks, fmt.Errorf("simulate: %w", err)
		}
		if _, ok := p.Sense(m); ok {
			pending++
		}
		if n%every == 0 || w.Done() {
			ticks = append(ticks, p.Track(w.Now(), pending))
			pending = 0
			if w.Done() {
				return ticks, nil
			}
		}
	}
}

func RunMockConsole() error {
	cfg := config.Get()
	if cfg == nil {
		cfg = config.Default()
	}

	target := geometry.Point{X: 3.5, Y: 7}
	log.Printf("console: simulating %d legs toward (%.1f, %.1f)", len(demoRoute), target.X, target.Y)

	ticks, err := SimulateWalk(cfg, demoRoute, target, func(w *sensors.Walker) vision.FrameSource {
		return sensors.NewSceneCamera(w)
	})
	if err != nil {
		return err
	}

	for _, t := range ticks {
		fmt.Printf(
			"[POSE] X=%6.2f  Y=%6.2f  H=%6.1f  conf=%5.1f  | %-8s dist=%5.2f",
			t.Pose.X, t.Pose.Y, t.Pose.HeadingDegrees(), t.Confidence,
			t.Guidance.State, t.Guidance.Distance,
		)
		if !t.Guidance.Empty() {
			fmt.Printf("  >> %s [%s]", t.Guidance.Instruction, t.Guidance.Event)
		}
		fmt.Println()
	}

	last := ticks[len(ticks)-1]
	log.Printf("console: %d steps accepted, %d suppressed", last.Stats.Accepted, last.Stats.Suppressed)
	return nil
}
