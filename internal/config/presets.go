package config

import "github.com/spf13/viper"

// CameraPreset bounds the randomized camera pose the seqmod camera verb
// writes into Group rows. Position offsets are drawn uniformly from
// [-max, max] and added to the starting position; yaw, pitch and roll
// are drawn from their ranges and replace the source rotation. HFOV
// above zero rewrites the camera_hfov comment entry, otherwise the
// source value is kept.
//
// With PitchFromHeight the camera height is drawn from [ZMin, ZMax] and
// the base pitch interpolates from PitchZMin at ZMin to PitchZMax at
// ZMax, so higher cameras look further down.
type CameraPreset struct {
	HFOV             float64 `json:"hfov" mapstructure:"hfov"`
	XOffsetMax       float64 `json:"xOffsetMax" mapstructure:"xOffsetMax"`
	YOffsetMax       float64 `json:"yOffsetMax" mapstructure:"yOffsetMax"`
	ZOffsetMax       float64 `json:"zOffsetMax" mapstructure:"zOffsetMax"`
	YawMin           float64 `json:"yawMin" mapstructure:"yawMin"`
	YawMax           float64 `json:"yawMax" mapstructure:"yawMax"`
	PitchMin         float64 `json:"pitchMin" mapstructure:"pitchMin"`
	PitchMax         float64 `json:"pitchMax" mapstructure:"pitchMax"`
	RollMin          float64 `json:"rollMin" mapstructure:"rollMin"`
	RollMax          float64 `json:"rollMax" mapstructure:"rollMax"`
	OverridePosition bool    `json:"overridePosition" mapstructure:"overridePosition"`
	X                float64 `json:"x" mapstructure:"x"`
	Y                float64 `json:"y" mapstructure:"y"`
	Z                float64 `json:"z" mapstructure:"z"`
	PitchFromHeight  bool    `json:"pitchFromHeight" mapstructure:"pitchFromHeight"`
	ZMin             float64 `json:"zMin" mapstructure:"zMin"`
	ZMax             float64 `json:"zMax" mapstructure:"zMax"`
	PitchZMin        float64 `json:"pitchZMin" mapstructure:"pitchZMin"`
	PitchZMax        float64 `json:"pitchZMax" mapstructure:"pitchZMax"`
}

// defaultCameraPresets returns the built-in preset table.
// An hfov of 65.470451 is a 28mm lens on a 36x20.25 DSLR filmback.
func defaultCameraPresets() map[string]CameraPreset {
	return map[string]CameraPreset{
		"cam_default": {},

		"cam_random_a": {XOffsetMax: 100, YOffsetMax: 100, ZOffsetMax: 15, YawMin: -5, YawMax: 5, PitchMin: -15, PitchMax: 5, RollMin: -3, RollMax: 3},
		"cam_random_b": {PitchMin: -18, PitchMax: 3, RollMin: -3, RollMax: 3},
		"cam_random_c": {XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -18, PitchMax: 3, RollMin: -3, RollMax: 3},
		"cam_random_d": {XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -5, PitchMax: 3, RollMin: -3, RollMax: 3},
		"cam_random_e": {XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -10, PitchMax: 3, RollMin: -3, RollMax: 3},
		"cam_random_f": {OverridePosition: true, X: -1000, Z: 170, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -10, PitchMax: 3, RollMin: -3, RollMax: 3},
		"cam_random_g": {HFOV: 25, OverridePosition: true, X: -1000, Z: 170, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -1, YawMax: 1, PitchMin: -5, PitchMax: 2, RollMin: -3, RollMax: 3},
		"cam_random_h": {XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -18, PitchMax: -10, RollMin: -3, RollMax: 3},
		"cam_random_i": {XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: 0, PitchMax: 3, RollMin: -3, RollMax: 3},

		// Stadium level, world ground plane at height 263.75.
		"cam_stadium_a": {OverridePosition: true, X: -1000, Z: 263.75 + 15.0, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: 5, PitchMax: 15, RollMin: -3, RollMax: 3},
		"cam_stadium_b": {OverridePosition: true, X: -1000, Z: 263.75 + 300.0, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -20, PitchMax: -10, RollMin: -3, RollMax: 3},
		"cam_stadium_c": {HFOV: 65.470451, OverridePosition: true, X: -1000, Z: 263.75 + 300.0, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -25, PitchMax: -5, RollMin: -3, RollMax: 3},
		"cam_stadium_d": {OverridePosition: true, X: -1000, Z: 263.75 + 170.0, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -10, PitchMax: 3, RollMin: -3, RollMax: 3},

		// Closeup at 2m, cam_closeup_a in portrait mode via roll.
		"cam_closeup_a": {HFOV: 65.470451, OverridePosition: true, X: -200, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -2, YawMax: 2, PitchMin: -2, PitchMax: 2, RollMin: 87, RollMax: 93, PitchFromHeight: true, ZMin: 100, ZMax: 250, PitchZMin: 5, PitchZMax: -40},
		"cam_closeup_b": {HFOV: 39.597752, OverridePosition: true, X: -200, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -2, YawMax: 2, PitchMin: -2, PitchMax: 2, RollMin: -3, RollMax: 3, PitchFromHeight: true, ZMin: 100, ZMax: 250, PitchZMin: 5, PitchZMax: -25},

		"cam_zoom_a": {OverridePosition: true, X: -1000, Z: 170, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -10, PitchMax: 0, RollMin: -3, RollMax: 3},

		"cam_orbit_a": {OverridePosition: true, X: -450, Z: 170, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -15, PitchMax: -5, RollMin: -3, RollMax: 3},
		"cam_orbit_b": {OverridePosition: true, X: -450, Z: 100, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -10, PitchMax: 10, RollMin: -3, RollMax: 3},

		"cam_bigoffice_a": {OverridePosition: true, X: -350, Z: 170, XOffsetMax: 10, YOffsetMax: 10, ZOffsetMax: 5, YawMin: -3, YawMax: 3, PitchMin: -15, PitchMax: -5, RollMin: -3, RollMax: 3},
	}
}

// GetCameraPresets returns the camera preset table: the built-in
// presets merged with any seqmod.cameras entries from the config file.
// A configured preset replaces a built-in of the same name whole, but
// omitted height interpolation bounds fall back to the standard range.
func GetCameraPresets() map[string]CameraPreset {
	presets := defaultCameraPresets()

	overrides := map[string]CameraPreset{}
	_ = viper.UnmarshalKey("seqmod.cameras", &overrides)
	for name, p := range overrides {
		if p.PitchFromHeight && p.ZMin == 0 && p.ZMax == 0 {
			p.ZMin, p.ZMax = 100, 250
		}
		if p.PitchFromHeight && p.PitchZMin == 0 && p.PitchZMax == 0 {
			p.PitchZMin, p.PitchZMax = 5, -40
		}
		presets[name] = p
	}
	return presets
}
