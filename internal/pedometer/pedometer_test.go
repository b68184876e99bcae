package pedometer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/imu"
)

const sampleEvery = 20 * time.Millisecond

var t0 = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

// feed pushes one Z-axis sample per entry (in g) at 50 Hz and returns the steps.
func feed(d *Detector, start int, gs ...float64) []StepEvent {
	var steps []StepEvent
	for i, g := range gs {
		s := imu.AccelerationSample{
			Z:    g * imu.StandardGravity,
			Time: t0.Add(time.Duration(start+i) * sampleEvery),
		}
		if ev, ok := d.Update(s); ok {
			steps = append(steps, ev)
		}
	}
	return steps
}

func repeat(g float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestSubThresholdNeverSteps(t *testing.T) {
	d := New(DefaultConfig())
	steps := feed(d, 0, repeat(1.1, 500)...)
	assert.Empty(t, steps)
	assert.InDelta(t, 1.1, d.Magnitude(), 1e-9)
}

func TestFirstSampleOnlyInitializes(t *testing.T) {
	d := New(DefaultConfig())
	assert.Empty(t, feed(d, 0, 3.0))
	assert.InDelta(t, 3.0, d.Magnitude(), 1e-9)

	steps := feed(d, 1, 3.0)
	require.Len(t, steps, 1)
	assert.Equal(t, uint64(1), steps[0].Seq)
}

func TestSingleExcursionFiresOnce(t *testing.T) {
	d := New(DefaultConfig())
	// Held well above threshold for two seconds: the latch keeps it to one step.
	steps := feed(d, 0, concat(repeat(1, 10), repeat(1.9, 100), repeat(1, 20))...)
	require.Len(t, steps, 1)
	assert.Equal(t, t0.Add(11*sampleEvery), steps[0].Time)
}

func TestRefractoryWindowSuppressesSecondPeak(t *testing.T) {
	d := New(DefaultConfig())
	pattern := concat(
		repeat(1, 10),
		repeat(1.9, 5), // step at sample 11
		repeat(1, 8), // falls back under threshold, latch clears
		repeat(1.9, 5), // within 350 ms of the first step
		repeat(1, 50),
	)
	steps := feed(d, 0, pattern...)
	require.Len(t, steps, 1)

	// A later excursion is accepted again.
	more := feed(d, len(pattern), concat(repeat(1.9, 5), repeat(1, 20))...)
	require.Len(t, more, 1)
	assert.Equal(t, uint64(2), more[0].Seq)
	assert.Equal(t, uint64(2), d.Steps())
}

func TestExcursionStartedInsideRefractoryNeverFires(t *testing.T) {
	d := New(DefaultConfig())
	pattern := concat(
		repeat(1, 10),
		repeat(1.9, 3), // step at sample 11
		repeat(1, 6),
		repeat(1.9, 15), // crosses at 160 ms and stays above past 350 ms
		repeat(1, 20),
	)
	steps := feed(d, 0, pattern...)
	require.Len(t, steps, 1)
	assert.Equal(t, t0.Add(11*sampleEvery), steps[0].Time)
	assert.Equal(t, uint64(1), d.Steps())
}

func TestWalkingCadence(t *testing.T) {
	d := New(DefaultConfig())
	// 25 samples per stride at 50 Hz = 2 steps per second.
	stride := concat(repeat(1.8, 6), repeat(0.9, 19))
	var pattern []float64
	for i := 0; i < 10; i++ {
		pattern = append(pattern, stride...)
	}
	steps := feed(d, 0, concat(repeat(1, 5), pattern)...)
	require.Len(t, steps, 10)
	for i := 1; i < len(steps); i++ {
		assert.GreaterOrEqual(t, steps[i].Time.Sub(steps[i-1].Time), DefaultConfig().MinStepInterval)
		assert.Equal(t, steps[i-1].Seq+1, steps[i].Seq)
	}
}

func TestReset(t *testing.T) {
	d := New(DefaultConfig())
	feed(d, 0, concat(repeat(1, 5), repeat(1.9, 5))...)
	require.Equal(t, uint64(1), d.Steps())

	d.Reset()
	assert.Zero(t, d.Steps())
	assert.Zero(t, d.Magnitude())
	// First sample after reset only initializes again.
	assert.Empty(t, feed(d, 100, 3.0))
}

func TestNaNDoesNotPanic(t *testing.T) {
	d := New(DefaultConfig())
	feed(d, 0, 1, 1)
	_, ok := d.Update(imu.AccelerationSample{X: math.NaN(), Time: t0.Add(time.Second)})
	assert.False(t, ok)
	assert.True(t, math.IsNaN(d.Magnitude()))
}
