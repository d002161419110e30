// pkg/core/row.go
package core

// RowKind tells what a scene descriptor row describes.
// The values match the Type column of the CSV.
type RowKind string

const (
	RowComment RowKind = "Comment"
	RowGroup   RowKind = "Group"
	RowBody    RowKind = "Body"
)

// CameraPose is a world-space pose in host units (centimeters, degrees).
type CameraPose struct {
	X     float64
	Y     float64
	Z     float64
	Yaw   float64
	Pitch float64
	Roll  float64
}

// SceneRow is one parsed row of a scene descriptor file.
// Group and BodyConfig are set only for the matching kind.
type SceneRow struct {
	Kind       RowKind
	Line       int // source line in the descriptor file
	Index      int
	Body       string // "<subject>_<animation_id>", Body rows only
	Pose       CameraPose
	Comment    string // raw comment column
	Group      *GroupConfig
	BodyConfig *BodyConfig
}
