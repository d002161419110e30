// Package convert builds catalog rows from synthesized sequences.
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/bedlam-render/sequencer/internal/model"
	"github.com/bedlam-render/sequencer/internal/run"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// poseToPoint converts a world-space pose to a PostGIS geom.Point.
func poseToPoint(p core.CameraPose) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}, Z: p.Z}
	return geom.NewPoint(coords)
}

// bodyPositions collects the body placements into one geometry: a point
// for a single body, a line string through all of them in spawn order.
func bodyPositions(bodies []core.SequenceBody) geom.Geometry {
	switch len(bodies) {
	case 0:
		return geom.Geometry{}
	case 1:
		return poseToPoint(bodies[0].Pose).AsGeometry()
	}
	coords := make([]float64, 0, len(bodies)*2)
	for i := range bodies {
		coords = append(coords, bodies[i].Pose.X, bodies[i].Pose.Y)
	}
	seq := geom.NewSequence(coords, geom.DimXY)
	return geom.NewLineString(seq).AsGeometry()
}

// envelopeWKT returns the axis-aligned bounds of the body placements as
// a WKT polygon. Empty sequences get an empty string.
func envelopeWKT(bodies []core.SequenceBody) string {
	if len(bodies) == 0 {
		return ""
	}
	minX, maxX := bodies[0].Pose.X, bodies[0].Pose.X
	minY, maxY := bodies[0].Pose.Y, bodies[0].Pose.Y
	for i := range bodies[1:] {
		p := bodies[i+1].Pose
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return fmt.Sprintf("POLYGON((%g %g,%g %g,%g %g,%g %g,%g %g))",
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY)
}

// groupSnapshot serializes the group settings for the jsonb column.
func groupSnapshot(g core.GroupConfig) datatypes.JSON {
	data, err := json.Marshal(g)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// SequenceToRecord converts a synthesized sequence to its catalog row.
// The run foreign key is stamped by the batch writer when the row lands.
func SequenceToRecord(seq *core.Sequence, preset string, index int, assetPath string, buildTime time.Duration) model.SequenceRecord {
	return model.SequenceRecord{
		Name:           seq.Name,
		CSVIndex:       index,
		AssetPath:      assetPath,
		FrameCount:     seq.FrameCount,
		BodyCount:      len(seq.Bodies),
		CameraMode:     core.CameraModeFor(seq.Config, preset).String(),
		HDRI:           seq.Config.HDRI,
		HasHair:        seq.HasHair(),
		CameraPosition: poseToPoint(seq.Camera),
		BodyPositions:  bodyPositions(seq.Bodies),
		EnvelopeWKT:    envelopeWKT(seq.Bodies),
		GroupSnapshot:  groupSnapshot(seq.Config),
		BuildMs:        float32(buildTime.Seconds() * 1000),
	}
}

// RunToModel converts the live run context to its catalog row.
// EndTime stays zero until the run finishes.
func RunToModel(ctx *run.Context, hostKind, toolVersion string) model.Run {
	return model.Run{
		RunID:       ctx.ID(),
		CSVPath:     ctx.CSVPath(),
		Preset:      ctx.Preset(),
		HostKind:    hostKind,
		ToolVersion: toolVersion,
		StartTime:   ctx.Started(),
		Total:       ctx.Total(),
		Built:       ctx.Built.Value(),
		Failed:      ctx.Failed.Value(),
	}
}
