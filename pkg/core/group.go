package core

// Location is a world-space position in host units.
type Location struct {
	X float64
	Y float64
	Z float64
}

// GroupConfig holds the key=value settings parsed from a Group row comment.
// Pointer fields distinguish "absent" from a meaningful zero: yaw 0 and
// view_id 0 are both valid settings.
type GroupConfig struct {
	SequenceName       string
	FrameCount         int
	HDRI               string // HDRI cubemap name, empty for none
	CameraHFOV         *float64
	POVCamera          bool
	ViewID             *int
	CameraRootYaw      *float64
	CameraRootLocation *Location
}
