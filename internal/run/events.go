package run

import (
	"time"

	"github.com/google/uuid"

	"github.com/bedlam-render/sequencer/pkg/core"
)

// Run lifecycle event names published by the generator.
const (
	EventRunStarted     = "run_started"
	EventSequenceBuilt  = "sequence_built"
	EventSequenceFailed = "sequence_failed"
	EventRunFinished    = "run_finished"
)

// Started is the run_started payload.
type Started struct {
	RunID   uuid.UUID
	CSVPath string
	Preset  string
	Total   int
}

// SequenceBuilt is the sequence_built payload. AssetPath is the host path
// the timeline was saved to.
type SequenceBuilt struct {
	RunID     uuid.UUID
	Index     int
	Sequence  *core.Sequence
	AssetPath string
	Duration  time.Duration
}

// SequenceFailed is the sequence_failed payload.
type SequenceFailed struct {
	RunID    uuid.UUID
	Index    int
	Sequence string
	Err      error
}

// Finished is the run_finished payload. Aborted is set when the run
// stopped before attempting every sequence.
type Finished struct {
	RunID    uuid.UUID
	Built    int
	Failed   int
	Aborted  bool
	Duration time.Duration
}
