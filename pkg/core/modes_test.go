package core

import "testing"

func TestCameraModeFor(t *testing.T) {
	tests := []struct {
		name   string
		group  GroupConfig
		preset string
		want   CameraModeKind
	}{
		{"static preset", GroupConfig{}, "Static", CameraStatic},
		{"empty preset", GroupConfig{}, "", CameraStatic},
		{"movement template", GroupConfig{}, "Zoom", CameraTemplated},
		{"pov flag wins over template", GroupConfig{POVCamera: true}, "Orbit", CameraPOV},
		{"pov flag with static", GroupConfig{POVCamera: true}, "Static", CameraPOV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CameraModeFor(tt.group, tt.preset)
			if got.Kind != tt.want {
				t.Errorf("CameraModeFor() kind = %v, want %v", got.Kind, tt.want)
			}
			if tt.want == CameraTemplated && got.Preset != tt.preset {
				t.Errorf("CameraModeFor() preset = %q, want %q", got.Preset, tt.preset)
			}
		})
	}
}

func TestClothingModeFor(t *testing.T) {
	tests := []struct {
		name string
		body SequenceBody
		want ClothingMode
	}{
		{"bare body", SequenceBody{}, ClothingNone},
		{"clothing mesh", SequenceBody{TextureClothing: "gap_02"}, ClothingMaterial},
		{"overlay", SequenceBody{TextureClothingOverlay: "subj_gap_02"}, ClothingOverlay},
		{
			"overlay wins over mesh",
			SequenceBody{TextureClothing: "gap_02", TextureClothingOverlay: "subj_gap_02"},
			ClothingOverlay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClothingModeFor(tt.body); got != tt.want {
				t.Errorf("ClothingModeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
