// Package generator drives one run end to end: parse the scene
// descriptor, assemble its sequences, synthesize a timeline per
// sequence against the active host, and publish the run lifecycle
// events. Synthesis is sequential and fail fast; the first failed
// sequence aborts the rest of the run.
package generator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bedlam-render/sequencer/internal/assembler"
	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/dispatcher"
	"github.com/bedlam-render/sequencer/internal/host"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/parser"
	"github.com/bedlam-render/sequencer/internal/run"
	"github.com/bedlam-render/sequencer/internal/timeline"
	"github.com/bedlam-render/sequencer/pkg/core"
)

// Dependencies holds all dependencies for the generator.
type Dependencies struct {
	LogManager *logging.SlogManager
	Run        *run.Context
	Dispatcher *dispatcher.Dispatcher
	Host       host.Host
}

// Generator owns the generate pipeline for a single run.
type Generator struct {
	deps Dependencies
}

// New creates a generator.
func New(deps Dependencies) *Generator {
	return &Generator{deps: deps}
}

func (g *Generator) log() *slog.Logger {
	if g.deps.LogManager != nil {
		return g.deps.LogManager.Logger()
	}
	return slog.Default()
}

// Generate builds every sequence described by the scene descriptor at
// csvPath. preset selects the run-wide camera movement template; empty
// means a static camera. The returned error is the failure that
// aborted the run.
func (g *Generator) Generate(csvPath, preset string) error {
	if preset == "" {
		preset = core.StaticPreset
	}
	log := g.log()

	rows, err := parser.NewParser(log).ParseFile(csvPath)
	if err != nil {
		return fmt.Errorf("failed to parse scene descriptor: %w", err)
	}

	roots := config.GetRoots()
	sequences, err := assembler.New(log, roots).Assemble(filepath.Base(csvPath), rows)
	if err != nil {
		return fmt.Errorf("failed to assemble sequences: %w", err)
	}

	rc := g.deps.Run
	rc.Begin(csvPath, preset, len(sequences))
	g.publish(run.EventRunStarted, run.Started{
		RunID:   rc.ID(),
		CSVPath: csvPath,
		Preset:  preset,
		Total:   len(sequences),
	})

	synth := timeline.New(log, g.deps.Host, preset)

	runStart := time.Now()
	var abortErr error
	for i := range sequences {
		seq := &sequences[i]
		buildStart := time.Now()

		if err := synth.Synthesize(seq); err != nil {
			g.publish(run.EventSequenceFailed, run.SequenceFailed{
				RunID:    rc.ID(),
				Index:    i,
				Sequence: seq.Name,
				Err:      err,
			})
			abortErr = err
			break
		}

		g.publish(run.EventSequenceBuilt, run.SequenceBuilt{
			RunID:     rc.ID(),
			Index:     i,
			Sequence:  seq,
			AssetPath: core.NewAssetRef("LevelSequence", roots.SequencesRoot, seq.Name).PackagePath(),
			Duration:  time.Since(buildStart),
		})
	}

	g.publish(run.EventRunFinished, run.Finished{
		RunID:    rc.ID(),
		Built:    rc.Built.Value(),
		Failed:   rc.Failed.Value(),
		Aborted:  abortErr != nil,
		Duration: time.Since(runStart),
	})

	return abortErr
}

// publish dispatches one lifecycle event. Handler failures are logged
// and do not stop the run; the catalog and metric sinks are
// supplementary to the host-side output.
func (g *Generator) publish(name string, payload any) {
	if g.deps.Dispatcher == nil {
		return
	}
	e := dispatcher.Event{Name: name, Payload: payload, Timestamp: time.Now()}
	if _, err := g.deps.Dispatcher.Dispatch(e); err != nil {
		g.log().Warn("Event handler failed", "event", name, "error", err)
	}
}
