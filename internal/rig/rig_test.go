package rig

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFocalLength_Reference(t *testing.T) {
	got := FocalLength(24, 90)
	if !almostEqual(got, 12.0) {
		t.Errorf("FocalLength(24, 90) = %v, want 12.0", got)
	}
}

func TestFocalLength_SixtyDegrees(t *testing.T) {
	// 24 / (2 * tan(30 deg))
	want := 24 / (2 * math.Tan(math.Pi/6))
	got := FocalLength(24, 60)
	if !almostEqual(got, want) {
		t.Errorf("FocalLength(24, 60) = %v, want %v", got, want)
	}
	if got < 20.78 || got > 20.79 {
		t.Errorf("FocalLength(24, 60) = %v, want ~20.785", got)
	}
}

func TestFocalLength_DecreasesWithWiderFOV(t *testing.T) {
	prev := math.Inf(1)
	for _, hfov := range []float64{10, 25, 39.6, 60, 65.5, 90, 110, 170} {
		got := FocalLength(24, hfov)
		if got >= prev {
			t.Fatalf("FocalLength not strictly decreasing: f(%v)=%v, previous %v", hfov, got, prev)
		}
		prev = got
	}
}

func TestRotateOffset(t *testing.T) {
	tests := []struct {
		name         string
		x, y, yaw    float64
		wantX, wantY float64
	}{
		{"quarter turn", 0.2, 0, 90, 0, 0.2},
		{"half turn", 0.2, 0, 180, -0.2, 0},
		{"zero yaw identity", 15, 10, 0, 15, 10},
		{"full turn identity", 15, 10, 360, 15, 10},
		{"negative quarter", 0.2, 0, -90, 0, -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := RotateOffset(tt.x, tt.y, tt.yaw)
			if !almostEqual(gotX, tt.wantX) || !almostEqual(gotY, tt.wantY) {
				t.Errorf("RotateOffset(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.y, tt.yaw, gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{0, 0},
		{180, -180},
		{-180, -180},
		{270, -90},
		{-270, 90},
		{360, 0},
		{540, -180},
		{-45, -45},
	}

	for _, tt := range tests {
		if got := NormalizeAngle(tt.input); !almostEqual(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
