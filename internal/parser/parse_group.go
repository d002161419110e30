package parser

import (
	"fmt"
	"strconv"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// groupKeys are the keys the typed parse consumes. Anything else in a
// group comment is tool provenance, like the angle stamps the rewrite
// verbs leave behind.
var groupKeys = map[string]bool{
	"sequence_name":  true,
	"frames":         true,
	"hdri":           true,
	"camera_hfov":    true,
	"pov_camera":     true,
	"view_id":        true,
	"cameraroot_yaw": true,
	"cameraroot_x":   true,
	"cameraroot_y":   true,
	"cameraroot_z":   true,
}

// ParseGroupConfig parses a Group row comment into its typed settings.
// sequence_name and frames are required; everything else is optional.
func (p *Parser) ParseGroupConfig(comment string) (*core.GroupConfig, error) {
	config, err := parseComment(comment)
	if err != nil {
		return nil, err
	}
	p.logUnknownKeys(config, groupKeys)

	name, ok := config["sequence_name"]
	if !ok || name == "" {
		return nil, fmt.Errorf("group comment missing required key %q", "sequence_name")
	}
	framesValue, ok := config["frames"]
	if !ok {
		return nil, fmt.Errorf("group comment missing required key %q", "frames")
	}
	frames, err := strconv.Atoi(framesValue)
	if err != nil {
		return nil, fmt.Errorf("error converting frames to int: %w", err)
	}

	group := &core.GroupConfig{
		SequenceName: name,
		FrameCount:   frames,
		HDRI:         config["hdri"],
	}

	if value, ok := config["camera_hfov"]; ok {
		hfov, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("error converting camera_hfov to float: %w", err)
		}
		group.CameraHFOV = &hfov
	}

	// pov_camera must equal the exact sentinel; anything else means off.
	group.POVCamera = config["pov_camera"] == "true"

	if value, ok := config["view_id"]; ok {
		id, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("error converting view_id to int: %w", err)
		}
		group.ViewID = &id
	}

	if value, ok := config["cameraroot_yaw"]; ok {
		yaw, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("error converting cameraroot_yaw to float: %w", err)
		}
		group.CameraRootYaw = &yaw
	}

	location, err := parseCameraRootLocation(config)
	if err != nil {
		return nil, err
	}
	group.CameraRootLocation = location

	return group, nil
}

// parseCameraRootLocation reads the cameraroot_x/y/z triple. The keys
// travel together; a partial triple is an error rather than a guess at
// the missing axes.
func parseCameraRootLocation(config map[string]string) (*core.Location, error) {
	keys := []string{"cameraroot_x", "cameraroot_y", "cameraroot_z"}
	present := 0
	for _, key := range keys {
		if _, ok := config[key]; ok {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(keys) {
		return nil, fmt.Errorf("cameraroot location needs all of cameraroot_x, cameraroot_y, cameraroot_z")
	}

	var location core.Location
	for _, part := range []struct {
		key string
		dst *float64
	}{
		{"cameraroot_x", &location.X},
		{"cameraroot_y", &location.Y},
		{"cameraroot_z", &location.Z},
	} {
		v, err := strconv.ParseFloat(config[part.key], 64)
		if err != nil {
			return nil, fmt.Errorf("error converting %s to float: %w", part.key, err)
		}
		*part.dst = v
	}
	return &location, nil
}
