// internal/host/factory_test.go
package host

import (
	"testing"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/memory"
	"github.com/bedlam-render/sequencer/internal/host/remote"
	"github.com/bedlam-render/sequencer/internal/host/script"
)

// Every backend satisfies the Host boundary.
var (
	_ Host = (*memory.Backend)(nil)
	_ Host = (*script.Backend)(nil)
	_ Host = (*remote.Backend)(nil)
)

func TestNewHost_Memory(t *testing.T) {
	h, err := NewHost(config.HostConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}
	if _, ok := h.(*memory.Backend); !ok {
		t.Errorf("expected memory backend, got %T", h)
	}
}

func TestNewHost_Script(t *testing.T) {
	h, err := NewHost(config.HostConfig{Type: "script", OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}
	if _, ok := h.(*script.Backend); !ok {
		t.Errorf("expected script backend, got %T", h)
	}
}

func TestNewHost_Remote(t *testing.T) {
	h, err := NewHost(config.HostConfig{Type: "remote", ServerURL: "http://localhost:30010"})
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}
	if _, ok := h.(*remote.Backend); !ok {
		t.Errorf("expected remote backend, got %T", h)
	}
}

func TestNewHost_Unknown(t *testing.T) {
	_, err := NewHost(config.HostConfig{Type: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown host type")
	}
}
