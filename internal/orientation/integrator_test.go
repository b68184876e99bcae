package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func TestWrapRadiansRange(t *testing.T) {
	for h := -20.0; h <= 20; h += 0.173 {
		w := WrapRadians(h)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.Less(t, w, 2*math.Pi)
	}
	assert.Equal(t, 0.0, WrapRadians(-1e-18))
	assert.Equal(t, 0.0, WrapRadians(2*math.Pi))
	assert.InDelta(t, math.Pi/2, WrapRadians(-3*math.Pi/2), 1e-12)
	assert.True(t, math.IsNaN(WrapRadians(math.NaN())))
}

func TestIntegratorFirstCallDoesNotIntegrate(t *testing.T) {
	in := NewIntegrator()
	assert.Zero(t, in.Update(500, t0))
	assert.Zero(t, in.Heading())
}

func TestIntegratorIntegratesClockwise(t *testing.T) {
	in := NewIntegrator()
	in.Update(90, t0)
	h := in.Update(90, t0.Add(time.Second))
	assert.InDelta(t, math.Pi/2, h, 1e-12)

	// Turning left past zero wraps to the top of the range.
	h = in.Update(-180, t0.Add(2*time.Second))
	assert.InDelta(t, 3*math.Pi/2, h, 1e-12)
}

func TestIntegratorZeroRateKeepsHeading(t *testing.T) {
	in := NewIntegrator()
	in.Calibrate(1.234)
	in.Update(0, t0)
	for i := 1; i <= 50; i++ {
		in.Update(0, t0.Add(time.Duration(i*37)*time.Millisecond))
	}
	assert.Equal(t, 1.234, in.Heading())
}

func TestIntegratorNonPositiveDt(t *testing.T) {
	in := NewIntegrator()
	in.Update(90, t0)
	in.Update(90, t0.Add(time.Second))
	before := in.Heading()

	assert.Equal(t, before, in.Update(1000, t0.Add(time.Second)))
	assert.Equal(t, before, in.Update(1000, t0))

	// The stale sample did not move the reference time backwards.
	h := in.Update(90, t0.Add(2*time.Second))
	assert.InDelta(t, math.Pi, h, 1e-12)
}

func TestIntegratorIrregularIntervals(t *testing.T) {
	in := NewIntegrator()
	in.Update(45, t0)
	ts := t0
	for _, ms := range []int{5, 120, 33, 842} {
		ts = ts.Add(time.Duration(ms) * time.Millisecond)
		in.Update(45, ts)
	}
	assert.InDelta(t, 45*1.0*math.Pi/180, in.Heading(), 1e-12)
}

func TestIntegratorCalibrate(t *testing.T) {
	in := NewIntegrator()
	require.False(t, in.Calibrated())

	in.Calibrate(-math.Pi / 2)
	assert.True(t, in.Calibrated())
	assert.InDelta(t, 3*math.Pi/2, in.Heading(), 1e-12)

	in.Reset()
	assert.False(t, in.Calibrated())
	assert.Zero(t, in.Heading())
}

func TestPoseHeadingDegrees(t *testing.T) {
	assert.InDelta(t, 90.0, Pose{Heading: math.Pi / 2}.HeadingDegrees(), 1e-12)
}
