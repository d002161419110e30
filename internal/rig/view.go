package rig

import "github.com/bedlam-render/sequencer/pkg/core"

// ViewRotation is the rotation delta that turns a forward-facing head
// camera toward one panoramic view direction.
type ViewRotation struct {
	Suffix      string  `mapstructure:"suffix"`
	Yaw         float64 `mapstructure:"yaw"`
	Pitch       float64 `mapstructure:"pitch"`
	Roll        float64 `mapstructure:"roll"`
	Description string  `mapstructure:"description"`
}

// ViewTable maps a view_id to its rotation delta. The slice index is the
// view id.
type ViewTable []ViewRotation

// DefaultViewTable returns the six-direction panoramic table used for
// cube-face captures.
func DefaultViewTable() ViewTable {
	return ViewTable{
		{Suffix: "_front", Yaw: 0, Pitch: 0, Roll: 0, Description: "front_view"},
		{Suffix: "_back", Yaw: 180, Pitch: 0, Roll: 0, Description: "back_view"},
		{Suffix: "_left", Yaw: -90, Pitch: 0, Roll: 0, Description: "left_view"},
		{Suffix: "_right", Yaw: 90, Pitch: 0, Roll: 0, Description: "right_view"},
		{Suffix: "_up", Yaw: 0, Pitch: -90, Roll: 0, Description: "up_view"},
		{Suffix: "_down", Yaw: 0, Pitch: 90, Roll: 0, Description: "down_view"},
	}
}

// Rotation returns the delta for a view id. Ids outside the table, or a
// nil id, fall back to the front view rather than failing.
func (t ViewTable) Rotation(id *int) ViewRotation {
	if len(t) == 0 {
		return ViewRotation{Description: "front_view"}
	}
	if id == nil || *id < 0 || *id >= len(t) {
		return t[0]
	}
	return t[*id]
}

// Apply adds the view delta to a camera pose and normalizes the angles.
func (v ViewRotation) Apply(p core.CameraPose) core.CameraPose {
	p.Yaw = NormalizeAngle(p.Yaw + v.Yaw)
	p.Pitch = NormalizeAngle(p.Pitch + v.Pitch)
	p.Roll = NormalizeAngle(p.Roll + v.Roll)
	return p
}
