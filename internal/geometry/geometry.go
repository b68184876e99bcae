// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geometry holds the planar helpers used by the navigator.
//
// Angles follow the compass convention: 0° is forward (+y), 90° is right (+x),
// increasing clockwise. All functions are pure.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in the tracker's world frame, in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Bearing returns the compass angle from `from` to `to` in [0, 360).
//
// The arguments to atan2 are swapped (Δx, Δy) so that +y maps to 0° and +x to 90°.
// Identical points yield 0.
func Bearing(from, to Point) float64 {
	deg := Degrees(math.Atan2(to.X-from.X, to.Y-from.Y))
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// AngleDiff returns the signed shortest turn from heading to bearing, in degrees,
// within (-180, 180]. Positive means turn right.
//
// Note that AngleDiff(a, b) == -AngleDiff(b, a) does not hold at exactly ±180.
func AngleDiff(heading, bearing float64) float64 {
	d := math.Mod(bearing-heading, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b.vec(), a.vec()))
}
