// Package handlers connects run lifecycle events to the catalog backend,
// the metric exporters, and the shared progress counters. The generator
// only dispatches events; everything that happens as a consequence of a
// sequence being built lives here.
package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bedlam-render/sequencer/internal/dispatcher"
	"github.com/bedlam-render/sequencer/internal/influx"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/manifest"
	"github.com/bedlam-render/sequencer/internal/model/convert"
	"github.com/bedlam-render/sequencer/internal/run"
)

// Dependencies holds all the dependencies needed by the handlers service.
// Backend and Influx may be nil when the matching export is disabled.
type Dependencies struct {
	Run         *run.Context
	Backend     manifest.Backend
	Influx      *influx.Manager
	LogManager  *logging.SlogManager
	HostKind    string
	ToolVersion string
}

// Service holds the run event handlers.
type Service struct {
	deps Dependencies
}

// NewService creates a new handlers service.
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps}
}

func (s *Service) log() *slog.Logger {
	if s.deps.LogManager != nil {
		return s.deps.LogManager.Logger()
	}
	return slog.Default()
}

// RegisterHandlers registers every run event on the dispatcher. Catalog
// writes stay synchronous so that EndRun always sees the recorded rows.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(run.EventRunStarted, s.handleRunStarted, dispatcher.Logged())
	d.Register(run.EventSequenceBuilt, s.handleSequenceBuilt)
	d.Register(run.EventSequenceFailed, s.handleSequenceFailed, dispatcher.Logged())
	d.Register(run.EventRunFinished, s.handleRunFinished, dispatcher.Logged())
}

// handleRunStarted opens the catalog entry for the run.
func (s *Service) handleRunStarted(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(run.Started)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Name)
	}

	if s.deps.Backend != nil {
		m := convert.RunToModel(s.deps.Run, s.deps.HostKind, s.deps.ToolVersion)
		if err := s.deps.Backend.StartRun(&m); err != nil {
			return nil, fmt.Errorf("failed to open catalog entry: %w", err)
		}
	}

	s.log().Info("Run started",
		"runId", p.RunID,
		"csv", p.CSVPath,
		"preset", p.Preset,
		"total", p.Total,
	)
	return nil, nil
}

// handleSequenceBuilt advances the progress counters, records the sequence
// in the catalog, and queues its build timing point.
func (s *Service) handleSequenceBuilt(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(run.SequenceBuilt)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Name)
	}

	s.deps.Run.Built.Inc()
	s.deps.Run.SetLastBuild(p.Duration)

	if s.deps.Backend != nil {
		rec := convert.SequenceToRecord(p.Sequence, s.deps.Run.Preset(), p.Index, p.AssetPath, p.Duration)
		if err := s.deps.Backend.RecordSequence(&rec); err != nil {
			return nil, fmt.Errorf("failed to record sequence %q: %w", p.Sequence.Name, err)
		}
	}

	if s.deps.Influx != nil {
		point := influx.SequencePoint(p.RunID.String(), s.deps.Run.Preset(), p.Sequence, p.Duration)
		if !s.deps.Influx.QueuePoint(influx.BucketBuilds, point) {
			s.log().Debug("Dropped build timing point", "sequence", p.Sequence.Name)
		}
	}

	return nil, nil
}

// handleSequenceFailed advances the failure counter.
func (s *Service) handleSequenceFailed(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(run.SequenceFailed)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Name)
	}

	s.deps.Run.Failed.Inc()
	s.log().Error("Sequence build failed",
		"sequence", p.Sequence,
		"index", p.Index,
		"error", p.Err,
	)
	return nil, nil
}

// handleRunFinished closes the catalog entry and emits the run summary point.
func (s *Service) handleRunFinished(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(run.Finished)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Name)
	}

	if s.deps.Backend != nil {
		m := convert.RunToModel(s.deps.Run, s.deps.HostKind, s.deps.ToolVersion)
		m.EndTime = time.Now()
		m.Aborted = p.Aborted
		if err := s.deps.Backend.EndRun(&m); err != nil {
			return nil, fmt.Errorf("failed to close catalog entry: %w", err)
		}
	}

	if s.deps.Influx != nil {
		s.deps.Influx.QueuePoint(influx.BucketRuns, influx.RunPoint(p.RunID.String(), s.deps.Run.Preset(), p.Built, p.Failed, p.Duration))
	}

	s.log().Info("Run finished",
		"runId", p.RunID,
		"built", p.Built,
		"failed", p.Failed,
		"aborted", p.Aborted,
		"duration", p.Duration,
	)
	return nil, nil
}
