// pkg/core/modes.go
package core

// CameraModeKind discriminates how a sequence's camera is driven.
type CameraModeKind int

const (
	// CameraStatic possesses the level camera and keys a fixed pose.
	CameraStatic CameraModeKind = iota
	// CameraTemplated duplicates a movement template sequence.
	CameraTemplated
	// CameraPOV attaches a spawned camera to the first body's head.
	CameraPOV
)

// CameraMode is the resolved camera strategy for one sequence.
// Preset is the movement template name and is set for Templated only.
type CameraMode struct {
	Kind   CameraModeKind
	Preset string
}

// StaticPreset is the movement preset name meaning "no movement template".
const StaticPreset = "Static"

// CameraModeFor resolves the camera mode from the group settings and the
// run-wide movement preset. pov_camera wins over any preset.
func CameraModeFor(g GroupConfig, preset string) CameraMode {
	switch {
	case g.POVCamera:
		return CameraMode{Kind: CameraPOV}
	case preset != "" && preset != StaticPreset:
		return CameraMode{Kind: CameraTemplated, Preset: preset}
	default:
		return CameraMode{Kind: CameraStatic}
	}
}

func (m CameraMode) String() string {
	switch m.Kind {
	case CameraTemplated:
		return "templated:" + m.Preset
	case CameraPOV:
		return "pov"
	default:
		return "static"
	}
}

// ClothingMode discriminates how a body is dressed.
type ClothingMode int

const (
	// ClothingNone renders the bare body mesh.
	ClothingNone ClothingMode = iota
	// ClothingMaterial adds a simulated clothing mesh with a material
	// instance picked by texture_clothing.
	ClothingMaterial
	// ClothingOverlay spawns the dynamic overlay actor that composites
	// body and clothing textures at render time.
	ClothingOverlay
)

// ClothingModeFor resolves the clothing mode for one body. The overlay
// texture wins over the clothing mesh texture.
func ClothingModeFor(b SequenceBody) ClothingMode {
	switch {
	case b.TextureClothingOverlay != "":
		return ClothingOverlay
	case b.TextureClothing != "":
		return ClothingMaterial
	default:
		return ClothingNone
	}
}

func (m ClothingMode) String() string {
	switch m {
	case ClothingMaterial:
		return "material"
	case ClothingOverlay:
		return "overlay"
	default:
		return "none"
	}
}
