// internal/manifest/manifest.go
package manifest

import (
	"github.com/google/uuid"

	"github.com/bedlam-render/sequencer/internal/model"
)

// Backend is the interface all run catalog implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run lifecycle (StartRun assigns the catalog ID to the passed pointer)
	StartRun(r *model.Run) error
	EndRun(r *model.Run) error

	// Sequence recording
	RecordSequence(rec *model.SequenceRecord) error

	// Catalog queries
	LatestRun() (*model.Run, error)
	ListSequences(runID uuid.UUID) ([]model.SequenceRecord, error)
}
