package rig

import (
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// Geometry is stored WKB through gorm; points keep Z so camera height
// survives the round trip.

// PointFromPose converts a camera pose position to a geom.Point.
func PointFromPose(p core.CameraPose) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

// BodyPath builds a LineString through the body placements of a sequence,
// in body order. Sequences with fewer than two bodies produce an empty
// line, which stores as an empty geometry.
func BodyPath(bodies []core.SequenceBody) geom.LineString {
	if len(bodies) < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, len(bodies)*2)
	for i := range bodies {
		flat = append(flat, bodies[i].Pose.X, bodies[i].Pose.Y)
	}
	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq)
}
