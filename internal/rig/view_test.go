package rig

import (
	"testing"

	"github.com/bedlam-render/sequencer/pkg/core"
)

func intPtr(v int) *int { return &v }

func TestViewTableRotation(t *testing.T) {
	table := DefaultViewTable()

	tests := []struct {
		name    string
		id      *int
		wantYaw float64
		wantDir string
	}{
		{"front", intPtr(0), 0, "front_view"},
		{"back", intPtr(1), 180, "back_view"},
		{"left", intPtr(2), -90, "left_view"},
		{"right", intPtr(3), 90, "right_view"},
		{"absent id falls back to front", nil, 0, "front_view"},
		{"out of range falls back to front", intPtr(17), 0, "front_view"},
		{"negative falls back to front", intPtr(-2), 0, "front_view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Rotation(tt.id)
			if got.Yaw != tt.wantYaw {
				t.Errorf("Rotation yaw = %v, want %v", got.Yaw, tt.wantYaw)
			}
			if got.Description != tt.wantDir {
				t.Errorf("Rotation description = %q, want %q", got.Description, tt.wantDir)
			}
		})
	}
}

func TestViewTableVerticalViews(t *testing.T) {
	table := DefaultViewTable()

	up := table.Rotation(intPtr(4))
	if up.Pitch != -90 {
		t.Errorf("up view pitch = %v, want -90", up.Pitch)
	}
	down := table.Rotation(intPtr(5))
	if down.Pitch != 90 {
		t.Errorf("down view pitch = %v, want 90", down.Pitch)
	}
}

func TestViewRotationApply(t *testing.T) {
	pose := core.CameraPose{Yaw: 170, Pitch: 10}
	got := DefaultViewTable().Rotation(intPtr(1)).Apply(pose)

	// 170 + 180 wraps to -10
	if !almostEqual(got.Yaw, -10) {
		t.Errorf("applied yaw = %v, want -10", got.Yaw)
	}
	if !almostEqual(got.Pitch, 10) {
		t.Errorf("applied pitch = %v, want 10", got.Pitch)
	}
}
