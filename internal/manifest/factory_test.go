package manifest

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/manifest/memory"
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := NewBackend(config.ManifestConfig{Type: "memory"}, zerolog.Nop(), logging.NewSlogManager())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)
}

func TestNewBackend_UnknownType(t *testing.T) {
	_, err := NewBackend(config.ManifestConfig{Type: "etcd"}, zerolog.Nop(), logging.NewSlogManager())
	require.Error(t, err)
}

func TestNewBackend_Sqlite(t *testing.T) {
	viper.Set("manifest.type", "sqlite")
	viper.Set("manifest.path", filepath.Join(t.TempDir(), "catalog.db"))
	t.Cleanup(func() {
		viper.Set("manifest.type", nil)
		viper.Set("manifest.path", nil)
	})

	b, err := NewBackend(config.ManifestConfig{Type: "sqlite"}, zerolog.Nop(), logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
}
