// Package rig computes camera optics and pose math for timeline synthesis.
// All angles are degrees, all distances host units (centimeters), matching
// the scene descriptor files.
package rig

import "math"

// FocalLength converts a horizontal field of view into the lens focal
// length that produces it on the given sensor width, both in millimeters.
//
//	focal = sensor / (2 * tan(hfov/2))
//
// A 24mm sensor at 90 degrees gives 12mm.
func FocalLength(sensorWidthMM, hfovDegrees float64) float64 {
	return sensorWidthMM / (2 * math.Tan(Radians(hfovDegrees)/2))
}

// RotateOffset rotates a planar offset about the vertical axis so a local
// attachment offset follows the parent's yaw.
func RotateOffset(x, y, yawDegrees float64) (float64, float64) {
	theta := Radians(yawDegrees)
	sin, cos := math.Sincos(theta)
	return x*cos - y*sin, x*sin + y*cos
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// NormalizeAngle wraps an angle in degrees into [-180, 180).
func NormalizeAngle(degrees float64) float64 {
	a := math.Mod(degrees+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
