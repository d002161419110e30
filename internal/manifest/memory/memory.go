// internal/manifest/memory/memory.go
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bedlam-render/sequencer/internal/model"
)

// Backend stores the run catalog in memory. It backs tests and dry runs
// where no database is wanted.
type Backend struct {
	runs      []model.Run
	sequences []model.SequenceRecord

	currentID uint
	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun records a new run and assigns its catalog ID.
func (b *Backend) StartRun(r *model.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	r.ID = b.idCounter
	b.currentID = r.ID
	b.runs = append(b.runs, *r)
	return nil
}

// EndRun finalizes the stored run entry.
func (b *Backend) EndRun(r *model.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.runs {
		if b.runs[i].RunID == r.RunID {
			b.runs[i].EndTime = r.EndTime
			b.runs[i].Built = r.Built
			b.runs[i].Failed = r.Failed
			b.runs[i].Aborted = r.Aborted
			return nil
		}
	}
	return fmt.Errorf("run %s not in catalog", r.RunID)
}

// RecordSequence appends a sequence row stamped with the active run.
func (b *Backend) RecordSequence(rec *model.SequenceRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rec.RunID == 0 {
		rec.RunID = b.currentID
	}
	b.sequences = append(b.sequences, *rec)
	return nil
}

// LatestRun returns the most recently started run.
func (b *Backend) LatestRun() (*model.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.runs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	latest := b.runs[0]
	for _, r := range b.runs[1:] {
		if r.StartTime.After(latest.StartTime) {
			latest = r
		}
	}
	return &latest, nil
}

// ListSequences returns the sequences recorded for a run in CSV order.
func (b *Backend) ListSequences(runID uuid.UUID) ([]model.SequenceRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var id uint
	found := false
	for i := range b.runs {
		if b.runs[i].RunID == runID {
			id = b.runs[i].ID
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("run %s not in catalog", runID)
	}

	var out []model.SequenceRecord
	for i := range b.sequences {
		if b.sequences[i].RunID == id {
			out = append(out, b.sequences[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CSVIndex < out[j].CSVIndex })
	return out, nil
}
