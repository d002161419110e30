// internal/timeline/pov.go
package timeline

import (
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/internal/rig"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// finalizePOV spawns the first-person camera and attaches it to the
// hidden rig's head socket. This runs after body population because the
// attach constraint needs the rig binding of body 0.
//
// The filmback is forced square and the field of view fixed, both from
// calibration; the head offset is rotated into the socket frame by the
// host body's yaw, then the view rotation selects one of the six
// panoramic directions. The small attach scale counters the host's
// socket scale inheritance.
func (s *Synthesizer) finalizePOV(b *build) error {
	if b.mode.Kind != core.CameraPOV {
		return nil
	}
	if b.povRig == nil {
		return &SequencingInvariantError{
			Sequence: b.seq.Name,
			Violated: "pov camera requested but no skeletal rig binding was produced",
		}
	}

	camera := b.tl.SpawnFromClass("CineCameraActor", s.hostCfg.POVCameraName)
	camera.Spawned.SetProperty("filmback.sensorWidth", s.cal.POVSensorWidth)
	camera.Spawned.SetProperty("filmback.sensorHeight", s.cal.POVSensorWidth)

	focal := camera.AddTrack(ops.TrackFloat, propertyPOVFocalLength).AddSection(nil)
	focal.Channel("value").Default = rig.FocalLength(s.cal.POVSensorWidth, s.cal.POVCameraHFOV)

	hostBody := b.seq.Bodies[0]
	offsetX, offsetY := rig.RotateOffset(s.cal.POVOffsetX, s.cal.POVOffsetY, hostBody.Pose.Yaw)
	view := s.cal.ViewTable.Rotation(b.seq.Config.ViewID)
	s.logger.Debug("attaching pov camera",
		"view", view.Description,
		"yaw", hostBody.Pose.Yaw,
		"socket", headSocket)

	sec := camera.Attach(b.povRig, headSocket, &document.Range{Start: -b.warmup, End: b.end})
	sec.Attach.Location = core.Location{X: offsetX, Y: offsetY, Z: s.cal.POVOffsetZ}
	sec.Attach.Rotation = [3]float64{view.Yaw, view.Pitch, view.Roll}
	scale := s.cal.POVAttachScale
	sec.Attach.Scale = [3]float64{scale, scale, scale}

	b.tl.CameraCutTo(camera, -b.warmup, b.end)
	return nil
}
