package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/vision"
)

func drain(t *testing.T, w *Walker, limit int) []imu.Motion {
	t.Helper()
	var out []imu.Motion
	for i := 0; i < limit && !w.Done(); i++ {
		m, err := w.ReadMotion()
		require.NoError(t, err)
		out = append(out, m)
	}
	require.True(t, w.Done(), "route did not finish within %d samples", limit)
	return out
}

func TestWalkerTurnIntegratesToRequestedAngle(t *testing.T) {
	cfg := DefaultWalkerConfig()
	w := NewWalker(cfg, []Leg{{Steps: 2, Turn: 100}, {Steps: 1, Turn: -35}})
	samples := drain(t, w, 10000)

	total := 0.0
	for _, m := range samples {
		total += m.Rotation.YawRate * cfg.SampleInterval.Seconds()
	}
	assert.InDelta(t, 65.0, total, 1e-9)
}

func TestWalkerTimestampsAdvance(t *testing.T) {
	cfg := DefaultWalkerConfig()
	w := NewWalker(cfg, []Leg{{Steps: 1}})
	samples := drain(t, w, 1000)
	for i, m := range samples {
		assert.Equal(t, cfg.Start.Add(time.Duration(i+1)*cfg.SampleInterval), m.Accel.Time)
		assert.Equal(t, m.Accel.Time, m.Rotation.Time)
	}
}

func TestWalkerPulsesOncePerStep(t *testing.T) {
	w := NewWalker(DefaultWalkerConfig(), []Leg{{Steps: 4}})
	samples := drain(t, w, 1000)

	pulses := 0
	inPulse := false
	for _, m := range samples {
		high := m.Accel.Z > imu.StandardGravity
		if high && !inPulse {
			pulses++
		}
		inPulse = high
	}
	assert.Equal(t, 4, pulses)
	assert.False(t, w.Moving())
}

func TestSceneCameraFollowsWalker(t *testing.T) {
	w := NewWalker(DefaultWalkerConfig(), []Leg{{Steps: 3}})
	cam := NewSceneCamera(w)
	gate := vision.NewGate(vision.DefaultConfig())

	gate.Sample(cam)
	gate.Sample(cam)
	assert.False(t, gate.Moving(), "standing walker should look static")

	for !w.Moving() {
		_, err := w.ReadMotion()
		require.NoError(t, err)
	}
	gate.Sample(cam)
	assert.True(t, gate.Moving())

	cam.Ready = false
	assert.Zero(t, gate.Sample(cam))
}

func TestSceneCameraMovesOnEveryWalkingTick(t *testing.T) {
	cfg := DefaultWalkerConfig()
	w := NewWalker(cfg, []Leg{{Steps: 6, Turn: 90}, {Steps: 4}})
	cam := NewSceneCamera(w)
	gate := vision.NewGate(vision.DefaultConfig())

	// One gate sample every 10 IMU samples, as the fusion loop does at defaults.
	gate.Sample(cam)
	walking, ticks := 0, 0
	for i := 1; !w.Done(); i++ {
		_, err := w.ReadMotion()
		require.NoError(t, err)
		if i%10 != 0 {
			continue
		}
		moving := w.Moving()
		score := gate.Sample(cam)
		ticks++
		if moving {
			walking++
			assert.True(t, gate.Moving(), "tick %d: walker moving but score %.2f", ticks, score)
		} else {
			assert.False(t, gate.Moving(), "tick %d: walker standing but score %.2f", ticks, score)
		}
	}
	assert.Greater(t, walking, 10)
}
