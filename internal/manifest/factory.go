// internal/manifest/factory.go
package manifest

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/database"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/manifest/gormdb"
	"github.com/bedlam-render/sequencer/internal/manifest/memory"
)

// Compile-time interface checks
var (
	_ Backend = (*gormdb.Backend)(nil)
	_ Backend = (*memory.Backend)(nil)
)

// NewBackend creates a catalog backend based on configuration. For the
// database-backed types this dials the catalog; the returned backend owns
// the connection and closes it.
func NewBackend(cfg config.ManifestConfig, log zerolog.Logger, lm *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "postgres", "sqlite":
		mgr := database.NewManager(log)
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to catalog: %w", err)
		}
		return gormdb.New(gormdb.Dependencies{
			Manager:    mgr,
			LogManager: lm,
		}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown manifest type: %s", cfg.Type)
	}
}
