// internal/timeline/bodies_test.go
package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/internal/host/document"
	"github.com/bedlam-render/sequencer/pkg/core"
	"github.com/bedlam-render/sequencer/pkg/ops"
)

func withClothing(body core.SequenceBody, texture string) core.SequenceBody {
	body.TextureClothing = texture
	ref := core.NewAssetRef("GeometryCache",
		"/Engine/PS/Bedlam/Clothing/"+body.Subject,
		body.Subject+"_"+body.AnimationID+"_clo")
	body.ClothingRef = &ref
	return body
}

func withHair(body core.SequenceBody, hair string) core.SequenceBody {
	mesh := core.NewAssetRef("StaticMesh", "/Engine/PS/Bedlam/Hair/CC/Meshes/"+hair, hair)
	animation := core.NewAssetRef("AnimSequence",
		"/Engine/PS/Bedlam/SMPLX_batch01_hand_animations/"+body.Subject,
		body.Subject+"_"+body.AnimationID+"_Anim")
	driver := core.NewAssetRef("SkeletalMesh",
		"/Engine/PS/Bedlam/SMPLX_batch01_hand_animations/"+body.Subject,
		body.Subject+"_"+body.AnimationID)
	body.HairMeshRef = &mesh
	body.HairAnimationRef = &animation
	body.HairDriverMeshRef = &driver
	return body
}

func TestSynthesize_BodyBindings(t *testing.T) {
	backend := newTestBackend()
	body := testBody("rp_aaron_posed_002", "0000")
	body.TextureBody = "skin_m01"
	second := testBody("rp_alexandra_posed_023", "1017")
	second.StartFrame = 17

	tl := synthesize(t, backend, "", testSequence(100, body, second))

	binding, ok := tl.FindBinding("rp_aaron_posed_002_0000")
	require.True(t, ok)
	require.NotNil(t, binding.Spawned)
	spec := binding.Spawned
	assert.Equal(t, "GeometryCacheActor", spec.Class)
	assert.Equal(t, body.BodyRef, *spec.Asset)
	assert.Equal(t, false, spec.Properties["looping"])
	assert.Equal(t, true, spec.Properties["manualTick"])
	assert.Equal(t,
		"MaterialInstanceConstant'/Engine/PS/Meshcapade/SMPL/Materials/MI_skin_m01.MI_skin_m01'",
		spec.Properties["material"])
	assert.Equal(t, []string{"be_actor_00_body"}, spec.Layers)

	playback := findSection(t, binding, ops.TrackGeometryCache, "")
	assert.Equal(t, &document.Range{Start: 0, End: 100}, playback.Range)
	pose := findSection(t, binding, ops.TrackTransform, "")
	assert.Equal(t, 120.0, pose.Channel("location.x").Default)
	assert.Equal(t, 45.0, pose.Channel("rotation.yaw").Default)

	// The second body starts offset into its animation and gets its own
	// layer index.
	offset, ok := tl.FindBinding("rp_alexandra_posed_023_1017")
	require.True(t, ok)
	assert.Equal(t, []string{"be_actor_01_body"}, offset.Spawned.Layers)
	cache := findSection(t, offset, ops.TrackGeometryCache, "")
	assert.Equal(t, &document.Range{Start: -17, End: 100}, cache.Range)

	assert.Zero(t, backend.LiveActorCount(), "spawn templates must be destroyed after binding")
	assert.Empty(t, backend.LayerNames(), "segmentation layers must be removed after the save")
}

func TestSynthesize_MissingBodyMaterial(t *testing.T) {
	backend := strictBackend()
	body := testBody("rp_aaron_posed_002", "0000")
	body.TextureBody = "skin_m02"
	backend.RegisterAsset(body.BodyRef)

	err := synthesizeErr(backend, "", testSequence(10, body))
	var resErr *AssetResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "MI_skin_m02", resErr.Ref.ObjectName())
}

func TestSynthesize_Clothing(t *testing.T) {
	backend := newTestBackend()
	body := withClothing(testBody("rp_aaron_posed_002", "0000"), "c02")

	tl := synthesize(t, backend, "", testSequence(40, body))

	binding, ok := tl.FindBinding("rp_aaron_posed_002_0000_clo")
	require.True(t, ok)
	require.NotNil(t, binding.Spawned)
	assert.Equal(t, "GeometryCacheActor", binding.Spawned.Class)
	assert.Equal(t,
		"MaterialInstanceConstant'/Engine/PS/Bedlam/Clothing/Materials/rp_aaron_posed_002/MI_rp_aaron_posed_002_c02.MI_rp_aaron_posed_002_c02'",
		binding.Spawned.Properties["material"])
	assert.Equal(t, []string{"be_actor_00_clothing"}, binding.Spawned.Layers)

	playback := findSection(t, binding, ops.TrackGeometryCache, "")
	assert.Equal(t, &document.Range{Start: 0, End: 40}, playback.Range)
}

func TestSynthesize_ClothingOverlay(t *testing.T) {
	backend := newTestBackend()
	female := withClothing(testBody("rp_claudia_posed_034", "0104"), "c01")
	female.TextureBody = "skin_f04"
	female.TextureClothingOverlay = "rp_claudia_posed_034_overlay"
	male := testBody("rp_aaron_posed_002", "0000")
	male.TextureBody = "skin_m03"
	male.TextureClothingOverlay = "rp_aaron_posed_002_overlay"

	tl := synthesize(t, backend, "", testSequence(40, female, male))

	binding, ok := tl.FindBinding("rp_claudia_posed_034_0104")
	require.True(t, ok)
	spec := binding.Spawned
	assert.Equal(t, "/Engine/PS/Bedlam/Core/Materials/BE_ClothingOverlayActor.BE_ClothingOverlayActor_C", spec.Class)
	assert.Equal(t,
		"Texture2D'/Engine/PS/Meshcapade/SMPL/MC_texture_skintones/female/skin/skin_f04.skin_f04'",
		spec.Properties["bodytexture"])
	assert.Equal(t,
		"Texture2D'/Engine/PS/Bedlam/Clothing/MaterialsSMPLX/Textures/rp_claudia_posed_034_overlay.rp_claudia_posed_034_overlay'",
		spec.Properties["clothingtextureoverlay"])
	assert.NotContains(t, spec.Properties, "material")
	assert.Equal(t, []string{"be_actor_00_body"}, spec.Layers)

	// The overlay composites clothing in its construction script; the
	// simulated clothing mesh stays out even when the body has one.
	_, ok = tl.FindBinding("rp_claudia_posed_034_0104_clo")
	assert.False(t, ok)

	other, ok := tl.FindBinding("rp_aaron_posed_002_0000")
	require.True(t, ok)
	assert.Equal(t,
		"Texture2D'/Engine/PS/Meshcapade/SMPL/MC_texture_skintones/male/skin/skin_m03.skin_m03'",
		other.Spawned.Properties["bodytexture"])
}

func TestSynthesize_Hair(t *testing.T) {
	backend := newTestBackend()
	body := withHair(testBody("rp_aaron_posed_002", "0000"), "f_mid")

	tl := synthesize(t, backend, "", testSequence(60, body))

	driver, ok := tl.FindBinding("rp_aaron_posed_002_0000_Anim")
	require.True(t, ok)
	require.NotNil(t, driver.Spawned)
	assert.Equal(t, "SkeletalMeshActor", driver.Spawned.Class)
	assert.Equal(t,
		"Material'/Engine/PS/Bedlam/Core/Materials/M_SMPLX_Hidden.M_SMPLX_Hidden'",
		driver.Spawned.Properties["material"])
	assert.Empty(t, driver.Spawned.Layers, "the driver stays out of the segmentation layers")

	animation := findSection(t, driver, ops.TrackSkeletalAnimation, "")
	assert.Equal(t, &document.Range{Start: 0, End: 60}, animation.Range)
	assert.Equal(t, body.HairAnimationRef, animation.Asset)

	hair, ok := tl.FindBinding("f_mid")
	require.True(t, ok)
	assert.Equal(t, "StaticMeshActor", hair.Spawned.Class)
	assert.True(t, hair.Spawned.Movable)
	assert.Equal(t, []string{"be_actor_00_hair"}, hair.Spawned.Layers)

	attach := findSection(t, hair, ops.TrackAttach, "")
	require.NotNil(t, attach.Attach)
	assert.Same(t, driver, attach.Attach.Parent)
	assert.Equal(t, "head", attach.Attach.Socket)
	assert.Equal(t, &document.Range{Start: 0, End: 60}, attach.Range)
	assert.Equal(t, [3]float64{1, 1, 1}, attach.Attach.Scale)
}

func TestSynthesize_HairMissingHiddenMaterial(t *testing.T) {
	backend := strictBackend()
	body := withHair(testBody("rp_aaron_posed_002", "0000"), "f_mid")
	backend.RegisterAsset(body.BodyRef)
	backend.RegisterAsset(*body.HairMeshRef)
	backend.RegisterAsset(*body.HairAnimationRef)
	backend.RegisterAsset(*body.HairDriverMeshRef)

	tl := synthesize(t, backend, "", testSequence(20, body))

	driver, ok := tl.FindBinding("rp_aaron_posed_002_0000_Anim")
	require.True(t, ok)
	assert.NotContains(t, driver.Spawned.Properties, "material",
		"a missing hidden material falls back to the import material")
}

func TestSynthesize_LayersRemovedOnFailure(t *testing.T) {
	backend := strictBackend()
	body := withClothing(testBody("rp_aaron_posed_002", "0000"), "c02")
	backend.RegisterAsset(body.BodyRef) // clothing cache left unregistered

	err := synthesizeErr(backend, "", testSequence(10, body))
	require.Error(t, err)
	assert.Empty(t, backend.LayerNames(), "segmentation layers must be cleaned up on failure")
	assert.Zero(t, backend.LiveActorCount())
	assert.Zero(t, backend.SavedCount())
}
