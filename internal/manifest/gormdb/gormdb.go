// Package gormdb implements the manifest.Backend interface over GORM with
// an internal queue and a background catalog writer goroutine.
package gormdb

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bedlam-render/sequencer/internal/database"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/model"
	"github.com/bedlam-render/sequencer/internal/queue"
)

// writeInterval is how often the background writer drains the queue.
const writeInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM catalog backend.
type Dependencies struct {
	DB         *gorm.DB          // injected directly in tests
	Manager    *database.Manager // owns the connection and the local fallback dump
	LogManager *logging.SlogManager
}

// Backend implements the run catalog over GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	pending  *queue.Queue[model.SequenceRecord]
	runID    atomic.Uint64
	stopChan chan struct{}
	wg       sync.WaitGroup
	dbReady  bool
}

// New creates a new GORM catalog backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

func (b *Backend) log() *slog.Logger {
	if b.deps.LogManager != nil {
		return b.deps.LogManager.Logger()
	}
	return slog.Default()
}

// Init creates the internal queue, runs schema migration, and starts the
// catalog writer goroutine.
func (b *Backend) Init() error {
	b.pending = queue.New[model.SequenceRecord]()
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil && b.deps.Manager != nil {
		b.deps.DB = b.deps.Manager.DB
	}
	if b.deps.DB == nil {
		return fmt.Errorf("no catalog connection")
	}

	if b.deps.Manager != nil {
		if err := b.deps.Manager.Setup(); err != nil {
			return fmt.Errorf("failed to setup catalog: %w", err)
		}
	} else if err := b.deps.DB.AutoMigrate(model.DatabaseModelsSQLite...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	b.dbReady = true

	b.startWriter()
	return nil
}

// Close stops the writer, drains what is left, and releases the
// connection. The in-memory fallback catalog is dumped to disk here.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
	}
	if b.dbReady {
		b.flush()
	}
	if b.deps.Manager != nil {
		if b.deps.Manager.ShouldSaveLocal {
			if err := b.deps.Manager.DumpMemoryToDisk(); err != nil {
				return err
			}
		}
		return b.deps.Manager.Close()
	}
	return nil
}

// StartRun inserts the run row and remembers its catalog ID for stamping
// queued sequence rows.
func (b *Backend) StartRun(r *model.Run) error {
	if b.deps.DB == nil {
		return nil
	}
	if err := b.deps.DB.Create(r).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	b.runID.Store(uint64(r.ID))
	return nil
}

// EndRun drains pending sequence rows and finalizes the run's entry.
func (b *Backend) EndRun(r *model.Run) error {
	if b.deps.DB == nil {
		return nil
	}
	b.flush()

	updates := map[string]interface{}{
		"end_time": r.EndTime,
		"built":    r.Built,
		"failed":   r.Failed,
		"aborted":  r.Aborted,
	}
	err := b.deps.DB.Model(&model.Run{}).Where("id = ?", uint(b.runID.Load())).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	return nil
}

// RecordSequence pushes a sequence row onto the write queue.
func (b *Backend) RecordSequence(rec *model.SequenceRecord) error {
	b.pending.Push(*rec)
	return nil
}

// LatestRun returns the most recently started run.
func (b *Backend) LatestRun() (*model.Run, error) {
	if b.deps.DB == nil {
		return nil, fmt.Errorf("no catalog connection")
	}
	var r model.Run
	if err := b.deps.DB.Order("start_time DESC").First(&r).Error; err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &r, nil
}

// ListSequences returns the sequences recorded for a run in CSV order.
func (b *Backend) ListSequences(runID uuid.UUID) ([]model.SequenceRecord, error) {
	if b.deps.DB == nil {
		return nil, fmt.Errorf("no catalog connection")
	}
	var r model.Run
	if err := b.deps.DB.Where("run_id = ?", runID).First(&r).Error; err != nil {
		return nil, fmt.Errorf("run %s not in catalog: %w", runID, err)
	}
	var recs []model.SequenceRecord
	if err := b.deps.DB.Where("run_id = ?", r.ID).Order("csv_index ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to query sequences: %w", err)
	}
	return recs, nil
}

// writeQueue writes all items from a queue to the catalog in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T), onSuccess func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Catalog write failed", "queue", name, "error", err)
		tx.Rollback()
		q.Requeue(items)
		return
	}

	tx.Commit()
	if onSuccess != nil {
		onSuccess(items)
	}
}

// flush drains the pending queue, stamping rows with the active run.
func (b *Backend) flush() {
	runID := uint(b.runID.Load())
	stamp := func(items []model.SequenceRecord) {
		for i := range items {
			items[i].RunID = runID
		}
	}
	writeQueue(b.deps.DB, b.pending, "sequence records", b.log(), stamp, nil)
}

// startWriter starts the background goroutine that periodically drains
// the queue into the catalog.
func (b *Backend) startWriter() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(writeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				b.flush()
			}
		}
	}()
}
