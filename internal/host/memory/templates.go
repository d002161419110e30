// internal/host/memory/templates.go
package memory

import (
	"strings"

	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// Template seeding builds stand-in documents for the project templates a
// real host would have as assets, so dry runs can duplicate them. The
// binding names match what the synthesizer manipulates.

const templateEndFrame = 150

// seedTemplate builds a template for the given asset path based on its
// name. Caller holds the lock.
func seedTemplate(path string) *document.Timeline {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	switch {
	case strings.HasPrefix(base, "LS_Camera_"):
		return cameraTemplate(path)
	case strings.HasPrefix(base, "LS_Template_HDRI"):
		return hdriTemplate(path)
	default:
		return document.NewTimeline(path)
	}
}

// cameraTemplate mirrors the movement template sequences: a camera
// blueprint with keyed transforms, its camera component with a keyed
// focal length, and the camera root the orbit rig revolves around.
// Every keyed channel carries exactly two keys so end re-timing works.
func cameraTemplate(path string) *document.Timeline {
	t := document.NewTimeline(path)
	t.DisplayRate = 30
	t.SetPlaybackRange(0, templateEndFrame)

	cam := t.SpawnFromClass("BE_CineCameraActor_Blueprint", "BE_CineCameraActor_Blueprint")
	camSec := cam.AddTrack(ops.TrackTransform, "").AddSection(&document.Range{Start: 0, End: templateEndFrame})
	camSec.SetTransformDefaults(core.CameraPose{})
	for _, name := range []string{"location.x", "location.y", "location.z"} {
		ch := camSec.Channel(name)
		ch.AddKey(0, 0.0)
		ch.AddKey(templateEndFrame, 0.0)
	}

	comp := t.PossessComponent(cam, "CameraComponent")
	focal := comp.AddTrack(ops.TrackFloat, "CurrentFocalLength").AddSection(&document.Range{Start: 0, End: templateEndFrame})
	fc := focal.Channel("value")
	fc.AddKey(0, 35.0)
	fc.AddKey(templateEndFrame, 12.0)

	root := t.SpawnFromClass("BE_CameraRoot", "BE_CameraRoot")
	rootSec := root.AddTrack(ops.TrackTransform, "").AddSection(&document.Range{Start: 0, End: templateEndFrame})
	rootSec.SetTransformDefaults(core.CameraPose{})
	yaw := rootSec.Channel("rotation.yaw")
	yaw.AddKey(0, 0.0)
	yaw.AddKey(templateEndFrame, 360.0)

	t.CameraCutTo(cam, 0, templateEndFrame)
	return t
}

// hdriTemplate mirrors the lighting template: a possessed skylight with
// a cubemap track whose channel default the synthesizer points at the
// chosen HDRI.
func hdriTemplate(path string) *document.Timeline {
	t := document.NewTimeline(path)
	t.DisplayRate = 30

	sky := t.Possess(&document.Actor{Class: "SkyLight", Label: "Skylight"})
	cubemap := sky.AddTrack(ops.TrackObject, "Cubemap").AddSection(nil)
	cubemap.Channel("cubemap")
	return t
}
