package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearing(t *testing.T) {
	origin := Point{}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"forward", Point{X: 0, Y: 5}, 0},
		{"right", Point{X: 5, Y: 0}, 90},
		{"behind", Point{X: 0, Y: -5}, 180},
		{"left", Point{X: -5, Y: 0}, 270},
		{"forward right diagonal", Point{X: 1, Y: 1}, 45},
		{"same point", Point{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(origin, tt.to), 1e-9)
		})
	}
}

func TestBearingRange(t *testing.T) {
	for deg := 0; deg < 720; deg += 7 {
		r := Radians(float64(deg))
		b := Bearing(Point{}, Point{X: math.Sin(r), Y: math.Cos(r)})
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 360.0)
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		heading, bearing, want float64
	}{
		{0, 0, 0},
		{90, 0, -90},
		{0, 90, 90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
		{720, 45, 45},
		{-90, 90, 180},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, AngleDiff(tt.heading, tt.bearing), 1e-9,
			"AngleDiff(%v, %v)", tt.heading, tt.bearing)
	}
}

func TestAngleDiffRange(t *testing.T) {
	for h := -720.0; h <= 720; h += 13.5 {
		for b := -360.0; b <= 720; b += 17.25 {
			d := AngleDiff(h, b)
			assert.Greater(t, d, -180.0)
			assert.LessOrEqual(t, d, 180.0)
		}
	}
}

func TestAngleDiffNotAntisymmetricAt180(t *testing.T) {
	assert.Equal(t, 180.0, AngleDiff(0, 180))
	assert.Equal(t, 180.0, AngleDiff(180, 0))
}

func TestBearingRoundTrip(t *testing.T) {
	from := Point{X: 1.5, Y: -2}
	for _, to := range []Point{{X: 4, Y: 9}, {X: -3, Y: -7}, {X: 1.5, Y: 10}, {X: -8, Y: -2}} {
		b := Bearing(from, to)
		assert.Zero(t, AngleDiff(b, b))
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Point{}, Point{X: 3, Y: 4}), 1e-12)
	assert.InDelta(t, 5.0, Distance(Point{X: 3, Y: 4}, Point{}), 1e-12)
	assert.Zero(t, Distance(Point{X: 2, Y: 2}, Point{X: 2, Y: 2}))
}

func TestNaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(AngleDiff(math.NaN(), 0)))
	assert.True(t, math.IsNaN(Distance(Point{X: math.NaN()}, Point{})))
}
