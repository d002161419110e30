package parser

import (
	"fmt"
	"strconv"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// bodyKeys are the keys the typed parse consumes from a body comment.
var bodyKeys = map[string]bool{
	"start_frame":              true,
	"texture_body":             true,
	"texture_clothing":         true,
	"texture_clothing_overlay": true,
	"hair":                     true,
}

// ParseBodyConfig parses a Body row comment into its typed settings.
// Every key is optional; an empty comment means defaults.
func (p *Parser) ParseBodyConfig(comment string) (*core.BodyConfig, error) {
	config, err := parseComment(comment)
	if err != nil {
		return nil, err
	}
	p.logUnknownKeys(config, bodyKeys)

	body := &core.BodyConfig{
		TextureBody:            config["texture_body"],
		TextureClothing:        config["texture_clothing"],
		TextureClothingOverlay: config["texture_clothing_overlay"],
		Hair:                   config["hair"],
	}

	if value, ok := config["start_frame"]; ok {
		start, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("error converting start_frame to int: %w", err)
		}
		body.StartFrame = start
	}

	return body, nil
}
