package monitor

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/run"
)

// Dependencies holds what the status monitor reads each tick.
type Dependencies struct {
	LogManager *logging.SlogManager
	Run        *run.Context
	StatusFile string
	Interval   time.Duration
}

// Status is the snapshot written to the status file. The render farm
// supervisor polls it to track batch progress.
type Status struct {
	RunID       string    `json:"runId"`
	CSVPath     string    `json:"csvPath"`
	Preset      string    `json:"preset,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Total       int       `json:"total"`
	Built       int       `json:"built"`
	Failed      int       `json:"failed"`
	LastBuildMs float32   `json:"lastBuildMs"`
}

// Service periodically writes run progress to the status file.
type Service struct {
	deps      Dependencies
	isRunning bool
	stopping  bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewService creates a new monitor service. Interval defaults to one second.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot builds the current status from the run context.
func (s *Service) Snapshot() Status {
	r := s.deps.Run
	return Status{
		RunID:       r.ID().String(),
		CSVPath:     r.CSVPath(),
		Preset:      r.Preset(),
		StartedAt:   r.Started(),
		UpdatedAt:   time.Now(),
		Total:       r.Total(),
		Built:       r.Built.Value(),
		Failed:      r.Failed.Value(),
		LastBuildMs: float32(r.LastBuild().Milliseconds()),
	}
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopping = false
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	logger := s.deps.LogManager.Logger()

	statusFile, err := os.Create(s.deps.StatusFile)
	if err != nil {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}

	logger.Debug("Starting status monitor", "file", s.deps.StatusFile)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer statusFile.Close()
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				// final snapshot so the file reflects the run outcome
				s.write(statusFile)
				return
			case <-ticker.C:
				s.write(statusFile)
			}
		}
	}()

	return nil
}

func (s *Service) write(f *os.File) {
	snapshot, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		s.deps.LogManager.Logger().Error("Error marshaling status", "error", err)
		return
	}

	if _, err := f.Seek(0, 0); err != nil {
		return
	}
	if err := f.Truncate(0); err != nil {
		return
	}
	if _, err := f.Write(append(snapshot, '\n')); err != nil {
		s.deps.LogManager.Logger().Error("Error writing status file", "error", err)
	}
}

// Stop stops the status monitor and waits for the final write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning || s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
}
