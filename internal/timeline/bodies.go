// internal/timeline/bodies.go
package timeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

// populateBodies spawns and binds every body of the sequence in order,
// with clothing and hair where configured.
func (s *Synthesizer) populateBodies(b *build) error {
	for i := range b.seq.Bodies {
		if err := s.addBody(b, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) addBody(b *build, index int) error {
	body := &b.seq.Bodies[index]
	start := -body.StartFrame
	clothing := core.ClothingModeFor(*body)
	s.logger.Debug("processing body",
		"index", index,
		"body", body.BodyRef.PackagePath(),
		"clothing", clothing.String(),
		"hair", body.HairMeshRef != nil)

	if _, err := s.loadAsset(body.BodyRef); err != nil {
		return err
	}

	var binding *document.Binding
	var err error
	if clothing == core.ClothingOverlay {
		binding, err = s.addOverlayBody(b, index, body, start)
	} else {
		binding, err = s.addGeometryBody(b, index, body, start)
	}
	if err != nil {
		return err
	}

	if b.mode.Kind == core.CameraPOV && index == 0 {
		if err := s.addPOVRig(b, binding, body, start); err != nil {
			return err
		}
	}

	if clothing != core.ClothingOverlay && body.ClothingRef != nil {
		if err := s.addClothing(b, index, body, start); err != nil {
			return err
		}
	}

	if body.HairMeshRef != nil {
		if err := s.addHair(b, index, body, start); err != nil {
			return err
		}
	}
	s.metrics.bodies.Add(context.Background(), 1)
	return nil
}

// addGeometryBody binds the body's geometry cache with its skin
// material instance.
func (s *Synthesizer) addGeometryBody(b *build, index int, body *core.SequenceBody, start int) (*document.Binding, error) {
	spec := geometrySpec("GeometryCacheActor", &body.BodyRef)

	if body.TextureBody != "" {
		material := core.NewAssetRef("MaterialInstanceConstant", s.roots.MaterialBodyRoot, "MI_"+body.TextureBody)
		if _, err := s.loadAsset(material); err != nil {
			return nil, err
		}
		spec.SetProperty("material", material.String())
	}

	return s.bindGeometry(b, spec, layerName(index, "body"), body.Pose, start)
}

// addOverlayBody binds the body's geometry cache as the clothing
// overlay actor, which composites skin and clothing textures in its
// construction script instead of using a clothing mesh.
func (s *Synthesizer) addOverlayBody(b *build, index int, body *core.SequenceBody, start int) (*document.Binding, error) {
	gender := "male"
	if strings.HasPrefix(body.TextureBody, "skin_f") {
		gender = "female"
	}
	bodyTexture := core.NewAssetRef("Texture2D", s.roots.TextureBodyRoot+"/"+gender+"/skin", body.TextureBody)
	overlayTexture := core.NewAssetRef("Texture2D", s.roots.TextureOverlayRoot, body.TextureClothingOverlay)

	spec := geometrySpec(s.roots.OverlayActorClass, &body.BodyRef)
	spec.SetProperty("bodytexture", bodyTexture.String())
	spec.SetProperty("clothingtextureoverlay", overlayTexture.String())

	return s.bindGeometry(b, spec, layerName(index, "body"), body.Pose, start)
}

// addPOVRig spawns the hidden skeletal rig behind the pov host body.
// The camera attaches to the rig's head socket; the visible geometry
// cache is suppressed for the whole playback range so the camera never
// sits inside the host's render mesh.
func (s *Synthesizer) addPOVRig(b *build, hostBinding *document.Binding, body *core.SequenceBody, start int) error {
	if body.SkeletalMeshRef == nil || body.SkeletalAnimationRef == nil {
		s.logger.Warn("pov camera requested but body has no skeletal rig references",
			"body", body.BodyRef.PackagePath())
		return nil
	}

	mesh, err := s.loadAsset(*body.SkeletalMeshRef)
	if err != nil {
		return err
	}
	if _, err := s.loadAsset(*body.SkeletalAnimationRef); err != nil {
		return err
	}

	spec := document.ActorSpec{
		Class:  "SkeletalMeshActor",
		Label:  mesh.Ref.ObjectName() + "_POV",
		Asset:  body.SkeletalMeshRef,
		Hidden: true,
	}
	rigBinding, err := s.bindSpawnable(b.tl, spec, "")
	if err != nil {
		return err
	}
	anim := rigBinding.AddTrack(ops.TrackSkeletalAnimation, "").
		AddSection(&document.Range{Start: start, End: b.end})
	anim.Asset = body.SkeletalAnimationRef
	addTransformTrack(rigBinding, body.Pose)
	b.povRig = rigBinding

	visibility := hostBinding.AddTrack(ops.TrackVisibility, "").
		AddSection(&document.Range{Start: -b.warmup, End: b.end})
	visibility.Channel("value").Default = false
	return nil
}

// addClothing binds the simulated clothing geometry cache over the body
// with its per-subject material instance.
func (s *Synthesizer) addClothing(b *build, index int, body *core.SequenceBody, start int) error {
	if _, err := s.loadAsset(*body.ClothingRef); err != nil {
		return err
	}
	spec := geometrySpec("GeometryCacheActor", body.ClothingRef)

	if body.TextureClothing != "" {
		material := core.NewAssetRef("MaterialInstanceConstant",
			s.roots.MaterialClothingRoot+"/"+body.Subject,
			"MI_"+body.Subject+"_"+body.TextureClothing)
		if _, err := s.loadAsset(material); err != nil {
			return err
		}
		spec.SetProperty("material", material.String())
	}

	_, err := s.bindGeometry(b, spec, layerName(index, "clothing"), body.Pose, start)
	return err
}

// addHair binds a movable static hair mesh attached to the head socket
// of a hidden skeletal driver that replays the body animation.
func (s *Synthesizer) addHair(b *build, index int, body *core.SequenceBody, start int) error {
	s.logger.Debug("adding hair", "mesh", body.HairMeshRef.PackagePath())
	if _, err := s.loadAsset(*body.HairMeshRef); err != nil {
		return err
	}
	if _, err := s.loadAsset(*body.HairAnimationRef); err != nil {
		return err
	}
	if _, err := s.loadAsset(*body.HairDriverMeshRef); err != nil {
		return err
	}

	driverSpec := document.ActorSpec{
		Class: "SkeletalMeshActor",
		Label: body.HairAnimationRef.ObjectName(),
		Asset: body.HairDriverMeshRef,
	}
	if hidden, err := s.hiddenMaterial(); err == nil {
		driverSpec.SetProperty("material", hidden.String())
	}

	hairSpec := document.ActorSpec{
		Class:   "StaticMeshActor",
		Label:   body.HairMeshRef.ObjectName(),
		Asset:   body.HairMeshRef,
		Movable: true,
	}

	driver, err := s.bindSpawnable(b.tl, driverSpec, "")
	if err != nil {
		return err
	}
	hair, err := s.bindSpawnable(b.tl, hairSpec, layerName(index, "hair"))
	if err != nil {
		return err
	}

	anim := driver.AddTrack(ops.TrackSkeletalAnimation, "").
		AddSection(&document.Range{Start: start, End: b.end})
	anim.Asset = body.HairAnimationRef
	addTransformTrack(driver, body.Pose)

	hair.Attach(driver, headSocket, &document.Range{Start: start, End: b.end})
	return nil
}

// hiddenMaterial resolves the material that keeps driver meshes out of
// the render. Resolution failure is logged but not fatal; the driver
// then renders with its import material.
func (s *Synthesizer) hiddenMaterial() (core.AssetRef, error) {
	path := s.roots.HiddenMaterial
	dir, name := "", path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	ref := core.NewAssetRef("Material", dir, name)
	if _, err := s.host.LoadAsset(ref); err != nil {
		s.logger.Error("cannot load hidden material", "path", path, "error", err)
		return core.AssetRef{}, err
	}
	return ref, nil
}

// bindGeometry runs the spawnable lifecycle for a geometry cache actor
// and lays down its playback and transform tracks.
func (s *Synthesizer) bindGeometry(b *build, spec document.ActorSpec, layer string, pose core.CameraPose, start int) (*document.Binding, error) {
	binding, err := s.bindSpawnable(b.tl, spec, layer)
	if err != nil {
		return nil, err
	}
	binding.AddTrack(ops.TrackGeometryCache, "").
		AddSection(&document.Range{Start: start, End: b.end})
	addTransformTrack(binding, pose)
	return binding, nil
}

// bindSpawnable spawns a template actor, tags it, snapshots it into a
// spawnable binding and destroys the template again. The layer tag
// rides into the binding's actor spec for segmentation mask naming.
func (s *Synthesizer) bindSpawnable(tl *document.Timeline, spec document.ActorSpec, layer string) (*document.Binding, error) {
	actor, err := s.host.SpawnActor(spec)
	if err != nil {
		return nil, err
	}
	if layer != "" {
		s.host.TagLayer(actor, layer)
	}
	binding := tl.BindSpawnable(actor)
	if err := s.host.DestroyActor(actor); err != nil {
		return nil, err
	}
	return binding, nil
}

// geometrySpec is the spawn template shared by body and clothing
// caches. Looping and automatic ticking are off; the playback section
// alone drives the cache, keeping frame 0 temporally clean.
func geometrySpec(class string, ref *core.AssetRef) document.ActorSpec {
	spec := document.ActorSpec{
		Class: class,
		Label: ref.ObjectName(),
		Asset: ref,
	}
	spec.SetProperty("looping", false)
	spec.SetProperty("manualTick", true)
	return spec
}

func layerName(index int, role string) string {
	return fmt.Sprintf("%s_%02d_%s", layerPrefix, index, role)
}
