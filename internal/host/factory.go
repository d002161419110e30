// internal/host/factory.go
package host

import (
	"fmt"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/memory"
	"github.com/bedlam-render/sequencer/internal/host/remote"
	"github.com/bedlam-render/sequencer/internal/host/script"
)

// NewHost creates a host backend based on configuration
func NewHost(cfg config.HostConfig) (Host, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg), nil
	case "script":
		return script.New(cfg), nil
	case "remote":
		return remote.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown host type: %s", cfg.Type)
	}
}
