// internal/timeline/timeline.go

// Package timeline synthesizes one host timeline per completed sequence:
// camera setup, per-body geometry, clothing and hair bindings, ground
// truth keying and the final save.
package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host"
	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/internal/rig"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// Binding and property names the movement and lighting templates are
// authored with.
const (
	bindingCameraBlueprint = "BE_CineCameraActor_Blueprint"
	bindingCameraComponent = "CameraComponent"
	bindingCameraRoot      = "BE_CameraRoot"
	bindingSkylight        = "Skylight"

	propertyFocalLength    = "CurrentFocalLength"
	propertyPOVFocalLength = "CineCameraComponent.CurrentFocalLength"
	propertyFrame          = "Frame"
	propertySequenceName   = "SequenceName"

	headSocket  = "head"
	layerPrefix = "be_actor"
)

// Synthesizer builds timelines against a scene host. It is single
// threaded and cooperates with the host: every call blocks, and a
// failure aborts the run without rolling back partial host state.
type Synthesizer struct {
	logger  *slog.Logger
	host    host.Host
	preset  string // run-wide camera movement preset
	roots   config.RootsConfig
	cal     config.CalibrationConfig
	hostCfg config.HostConfig
	metrics instruments
}

// New creates a synthesizer driving the given host. preset is the
// run-wide camera movement preset; empty means a static camera.
func New(logger *slog.Logger, h host.Host, preset string) *Synthesizer {
	if preset == "" {
		preset = core.StaticPreset
	}
	return &Synthesizer{
		logger:  logger,
		host:    h,
		preset:  preset,
		roots:   config.GetRoots(),
		cal:     config.GetCalibration(),
		hostCfg: config.GetHostConfig(),
		metrics: newInstruments(logger),
	}
}

// build carries the in-flight state for one sequence's timeline.
type build struct {
	seq    *core.Sequence
	mode   core.CameraMode
	tl     *document.Timeline
	warmup int
	end    int

	rootBind *document.Binding // camera root, from an Orbit template or possessed fresh
	povRig   *document.Binding // hidden skeletal rig driving the pov camera
}

// Synthesize builds and saves the timeline for one sequence. The
// per-body segmentation layers are removed after the save, even when
// the build fails partway.
func (s *Synthesizer) Synthesize(seq *core.Sequence) error {
	mode := core.CameraModeFor(seq.Config, s.preset)
	s.logger.Info("generating level sequence",
		"name", seq.Name,
		"frames", seq.FrameCount,
		"bodies", len(seq.Bodies),
		"hdri", seq.Config.HDRI,
		"camera", mode.String())

	b := &build{
		seq:    seq,
		mode:   mode,
		warmup: s.cal.WarmupFrames,
		end:    seq.FrameCount,
	}
	defer s.removeActorLayers()

	if err := s.run(b); err != nil {
		return fmt.Errorf("sequence %q: %w", seq.Name, err)
	}
	s.metrics.sequences.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("camera", mode.String())))
	return nil
}

func (s *Synthesizer) run(b *build) error {
	if err := s.createTimeline(b); err != nil {
		return err
	}
	if err := s.setupCamera(b); err != nil {
		return err
	}
	if err := s.overrideCameraRoot(b); err != nil {
		return err
	}
	b.tl.SetPlaybackRange(-b.warmup, b.end)
	s.addGroundTruthLogger(b)
	if err := s.populateBodies(b); err != nil {
		return err
	}
	if err := s.finalizePOV(b); err != nil {
		return err
	}
	if err := s.host.SaveTimeline(b.tl); err != nil {
		return err
	}
	s.metrics.saves.Add(context.Background(), 1)
	return nil
}

// createTimeline replaces any previous timeline at the sequence path and
// instantiates the new one, duplicating the HDRI lighting template or
// the camera movement template when the sequence asks for one.
func (s *Synthesizer) createTimeline(b *build) error {
	seq := b.seq
	ref := core.NewAssetRef("LevelSequence", s.roots.SequencesRoot, seq.Name)
	path := ref.PackagePath()

	if s.host.AssetExists(ref) {
		s.logger.Info("deleting existing level sequence", "path", path)
		if err := s.host.DeleteAsset(path); err != nil {
			return err
		}
	}

	template := ""
	switch {
	case seq.Config.HDRI != "":
		template = s.roots.HDRITemplate
		if seq.HasHair() {
			template += "_Hair"
		}
	case b.mode.Kind == core.CameraTemplated:
		template = s.roots.CameraMovementRoot + "LS_Camera_" + b.mode.Preset
	}

	tl, err := s.host.CreateTimeline(path, template)
	if err != nil {
		if template != "" {
			return &HostStateError{Expected: "template timeline " + template, Err: err}
		}
		return err
	}
	tl.DisplayRate = s.cal.FrameRate
	b.tl = tl

	if seq.Config.HDRI != "" {
		return s.applyHDRI(b)
	}
	return nil
}

// applyHDRI loads the requested cubemap and points the lighting
// template's skylight channels at it.
func (s *Synthesizer) applyHDRI(b *build) error {
	ref := core.NewAssetRef("TextureCube", s.roots.HDRIRoot, b.seq.Config.HDRI+s.roots.HDRISuffix)
	s.logger.Debug("loading hdri", "path", ref.PackagePath())
	asset, err := s.loadAsset(ref)
	if err != nil {
		return err
	}

	sky, ok := b.tl.FindBinding(bindingSkylight)
	if !ok {
		return nil
	}
	for _, tr := range sky.Tracks {
		for _, sec := range tr.Sections {
			for _, ch := range sec.Channels {
				ch.Default = asset.Ref.String()
			}
		}
	}
	return nil
}

func (s *Synthesizer) setupCamera(b *build) error {
	switch b.mode.Kind {
	case core.CameraPOV:
		// Placeholder cut only; the camera itself is attached after
		// body processing produced the rig binding.
		b.tl.CameraCutTo(nil, -b.warmup, b.end)
		return nil
	case core.CameraTemplated:
		return s.retargetTemplateCamera(b)
	default:
		return s.addStaticCamera(b)
	}
}

// addStaticCamera possesses the level cine camera at the group pose and
// points the camera cut at it.
func (s *Synthesizer) addStaticCamera(b *build) error {
	camera, ok := s.host.FindLevelActor(s.hostCfg.CameraActorClass)
	if !ok {
		return &HostStateError{Expected: s.hostCfg.CameraActorClass + " in current map"}
	}
	binding := b.tl.Possess(camera)
	addTransformTrack(binding, b.seq.Camera)

	if hfov := b.seq.Config.CameraHFOV; hfov != nil {
		component := b.tl.PossessComponent(binding, bindingCameraComponent)
		sec := component.AddTrack(ops.TrackFloat, propertyFocalLength).AddSection(nil)
		sec.Channel("value").Default = rig.FocalLength(s.cal.SensorWidth, *hfov)
	}

	b.tl.CameraCutTo(binding, -b.warmup, b.end)
	return nil
}

// retargetTemplateCamera restarts the duplicated movement template's
// camera cut at the warmup frame. Zoom and Orbit templates additionally
// get the group pose and their end keyframes re-timed to the sequence
// length; the Orbit root binding is kept for the camera-root override.
func (s *Synthesizer) retargetTemplateCamera(b *build) error {
	if b.tl.CameraCut == nil || len(b.tl.CameraCut.Sections) == 0 {
		return &HostStateError{Expected: "camera cut track in template " + b.tl.Template}
	}
	b.tl.CameraCut.Sections[0].Range = &document.Range{Start: -b.warmup, End: b.end}

	zoom := strings.HasPrefix(b.mode.Preset, "Zoom")
	orbit := strings.HasPrefix(b.mode.Preset, "Orbit")
	if !zoom && !orbit {
		return nil
	}

	if camera, ok := b.tl.FindBinding(bindingCameraBlueprint); ok {
		addTransformTrack(camera, b.seq.Camera)
	}
	if component, ok := b.tl.FindBinding(bindingCameraComponent); ok {
		if hfov := b.seq.Config.CameraHFOV; hfov != nil {
			if tr, ok := component.FindTrack(ops.TrackFloat, propertyFocalLength); ok && len(tr.Sections) > 0 {
				tr.Sections[0].Channel("value").Default = rig.FocalLength(s.cal.SensorWidth, *hfov)
			}
		}
		if zoom {
			s.retimeEndKeys(component, b.end)
		}
	}
	if orbit {
		if root, ok := b.tl.FindBinding(bindingCameraRoot); ok {
			b.rootBind = root
			s.retimeEndKeys(root, b.end)
		}
	}
	return nil
}

// retimeEndKeys moves each channel's end keyframe to frame. The movement
// templates are authored as start/end keyframe pairs; channels with any
// other key count keep their timing.
func (s *Synthesizer) retimeEndKeys(binding *document.Binding, frame int) {
	for _, tr := range binding.Tracks {
		for _, sec := range tr.Sections {
			for _, ch := range sec.Channels {
				if len(ch.Keys) == 0 {
					continue
				}
				if len(ch.Keys) != 2 {
					s.logger.Warn("channel does not have two keyframes, leaving end keyframe in place",
						"binding", binding.Name, "channel", ch.Name, "keys", len(ch.Keys))
					continue
				}
				ch.Keys[1].Frame = frame
			}
		}
	}
}

// overrideCameraRoot applies the group's camera-root yaw and location.
// An Orbit template already carries the root binding with keyed yaw; the
// group yaw is then added onto every key, never overwritten. Otherwise
// the camera's attach parent is possessed fresh with static defaults,
// falling back to the actor's level location.
func (s *Synthesizer) overrideCameraRoot(b *build) error {
	cfg := b.seq.Config
	if cfg.CameraRootYaw == nil && cfg.CameraRootLocation == nil {
		return nil
	}

	camera, ok := s.host.FindLevelActor(s.hostCfg.CameraActorClass)
	if !ok {
		return &HostStateError{Expected: s.hostCfg.CameraActorClass + " in current map"}
	}
	root := camera.AttachParent
	if root == nil {
		return &HostStateError{Expected: "camera root actor attached to " + s.hostCfg.CameraActorClass}
	}

	var sec *document.Section
	if b.rootBind == nil {
		b.rootBind = b.tl.Possess(root)
		sec = b.rootBind.AddTrack(ops.TrackTransform, "").AddSection(nil)
		yaw := 0.0
		if cfg.CameraRootYaw != nil {
			yaw = *cfg.CameraRootYaw
		}
		sec.Channel("rotation.yaw").Default = yaw
	} else {
		tr, ok := b.rootBind.FindTrack(ops.TrackTransform, "")
		if !ok || len(tr.Sections) == 0 {
			return &HostStateError{Expected: "transform track on template binding " + bindingCameraRoot}
		}
		sec = tr.Sections[0]
		if cfg.CameraRootYaw != nil {
			yawCh := sec.Channel("rotation.yaw")
			for i, key := range yawCh.Keys {
				if v, ok := key.Value.(float64); ok {
					yawCh.Keys[i].Value = v + *cfg.CameraRootYaw
				}
			}
		}
	}

	location := root.Location
	if cfg.CameraRootLocation != nil {
		location = *cfg.CameraRootLocation
	}
	sec.Channel("location.x").Default = location.X
	sec.Channel("location.y").Default = location.Y
	sec.Channel("location.z").Default = location.Z
	return nil
}

// addGroundTruthLogger keys per-frame metadata into the logger actor so
// rendered frames can be matched back to sequence frames. Warmup frames
// are keyed -1 and dropped by the post-render pipeline. The logger is
// optional level furniture; a map without one is fine.
func (s *Synthesizer) addGroundTruthLogger(b *build) {
	if s.hostCfg.LoggerActorClass == "" {
		return
	}
	logger, ok := s.host.FindLevelActor(s.hostCfg.LoggerActorClass)
	if !ok {
		return
	}
	binding := b.tl.Possess(logger)

	frames := binding.AddTrack(ops.TrackInteger, propertyFrame).
		AddSection(&document.Range{Start: -b.warmup, End: b.end})
	ch := frames.Channel("value")
	if b.warmup > 0 {
		ch.AddKey(-b.warmup, -1)
	}
	for frame := 0; frame < b.end; frame++ {
		ch.AddKey(frame, frame)
	}

	name := binding.AddTrack(ops.TrackString, propertySequenceName).AddSection(nil)
	name.Channel("value").Default = b.seq.Name
}

// removeActorLayers deletes the per-body segmentation layers. They are
// transient naming state for the mask exporter, not level content.
func (s *Synthesizer) removeActorLayers() {
	for _, name := range s.host.LayerNames() {
		if !strings.HasPrefix(name, layerPrefix) {
			continue
		}
		if err := s.host.DeleteLayer(name); err != nil {
			s.logger.Warn("error deleting actor layer", "layer", name, "error", err)
		}
	}
}

// loadAsset resolves a reference through the host, typing failures as
// asset resolution errors.
func (s *Synthesizer) loadAsset(ref core.AssetRef) (*document.Asset, error) {
	asset, err := s.host.LoadAsset(ref)
	if err != nil {
		return nil, &AssetResolutionError{Ref: ref, Err: err}
	}
	return asset, nil
}

func addTransformTrack(binding *document.Binding, pose core.CameraPose) {
	binding.AddTrack(ops.TrackTransform, "").AddSection(nil).SetTransformDefaults(pose)
}
