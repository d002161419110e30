package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bedlam-render/sequencer/internal/dispatcher"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/manifest"
	"github.com/bedlam-render/sequencer/internal/model"
	"github.com/bedlam-render/sequencer/internal/run"
	"github.com/bedlam-render/sequencer/pkg/core"

	"github.com/rs/zerolog"
)

// mockBackend implements manifest.Backend for testing
type mockBackend struct {
	runStarted bool
	runEnded   bool
	startedRun *model.Run
	endedRun   *model.Run
	records    []model.SequenceRecord
	recordErr  error
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) StartRun(r *model.Run) error {
	b.runStarted = true
	b.startedRun = r
	return nil
}

func (b *mockBackend) EndRun(r *model.Run) error {
	b.runEnded = true
	b.endedRun = r
	return nil
}

func (b *mockBackend) RecordSequence(rec *model.SequenceRecord) error {
	if b.recordErr != nil {
		return b.recordErr
	}
	b.records = append(b.records, *rec)
	return nil
}

func (b *mockBackend) LatestRun() (*model.Run, error) { return nil, nil }
func (b *mockBackend) ListSequences(runID uuid.UUID) ([]model.SequenceRecord, error) {
	return nil, nil
}

var _ manifest.Backend = (*mockBackend)(nil)

func newTestService(backend manifest.Backend) (*Service, *run.Context) {
	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "info", nil)

	ctx := run.NewContext()
	ctx.Begin("be_seq.csv", "orbit_archviz", 3)

	deps := Dependencies{
		Run:         ctx,
		Backend:     backend,
		LogManager:  logManager,
		HostKind:    "memory",
		ToolVersion: "1.0.0",
	}
	return NewService(deps), ctx
}

func testSequence() *core.Sequence {
	return &core.Sequence{
		Name:       "seq_000042",
		FrameCount: 120,
		Camera:     core.CameraPose{X: 10, Y: 20, Z: 170, Pitch: -5},
		Config:     core.GroupConfig{SequenceName: "seq_000042", FrameCount: 120, HDRI: "studio_small_09"},
		Bodies: []core.SequenceBody{
			{Subject: "rp_aaron_posed_002", AnimationID: "0017", Pose: core.CameraPose{X: 11, Y: 21}},
			{Subject: "rp_alvin_posed_016", AnimationID: "0003", Pose: core.CameraPose{X: 14, Y: 19}},
		},
	}
}

func TestHandleRunStarted(t *testing.T) {
	backend := &mockBackend{}
	svc, ctx := newTestService(backend)

	_, err := svc.handleRunStarted(dispatcher.Event{
		Name:    run.EventRunStarted,
		Payload: run.Started{RunID: ctx.ID(), CSVPath: "be_seq.csv", Preset: "orbit_archviz", Total: 3},
	})
	if err != nil {
		t.Fatalf("handleRunStarted failed: %v", err)
	}

	if !backend.runStarted {
		t.Fatal("expected a catalog entry to be opened")
	}
	if backend.startedRun.RunID != ctx.ID() {
		t.Errorf("catalog entry run id = %s, want %s", backend.startedRun.RunID, ctx.ID())
	}
	if backend.startedRun.Total != 3 {
		t.Errorf("catalog entry total = %d, want 3", backend.startedRun.Total)
	}
	if backend.startedRun.HostKind != "memory" {
		t.Errorf("catalog entry host kind = %q, want memory", backend.startedRun.HostKind)
	}
}

func TestHandleRunStarted_WrongPayload(t *testing.T) {
	svc, _ := newTestService(&mockBackend{})

	_, err := svc.handleRunStarted(dispatcher.Event{Name: run.EventRunStarted, Payload: "bogus"})
	if err == nil {
		t.Fatal("expected an error for a mistyped payload")
	}
}

func TestHandleSequenceBuilt(t *testing.T) {
	backend := &mockBackend{}
	svc, ctx := newTestService(backend)

	_, err := svc.handleSequenceBuilt(dispatcher.Event{
		Name: run.EventSequenceBuilt,
		Payload: run.SequenceBuilt{
			RunID:     ctx.ID(),
			Index:     0,
			Sequence:  testSequence(),
			AssetPath: "/Game/Sequences/seq_000042",
			Duration:  250 * time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("handleSequenceBuilt failed: %v", err)
	}

	if got := ctx.Built.Value(); got != 1 {
		t.Errorf("built counter = %d, want 1", got)
	}
	if got := ctx.LastBuild(); got != 250*time.Millisecond {
		t.Errorf("last build = %s, want 250ms", got)
	}
	if len(backend.records) != 1 {
		t.Fatalf("expected 1 recorded sequence, got %d", len(backend.records))
	}

	rec := backend.records[0]
	if rec.Name != "seq_000042" {
		t.Errorf("record name = %q, want seq_000042", rec.Name)
	}
	if rec.CameraMode != "templated:orbit_archviz" {
		t.Errorf("record camera mode = %q, want templated:orbit_archviz", rec.CameraMode)
	}
	if rec.BodyCount != 2 {
		t.Errorf("record body count = %d, want 2", rec.BodyCount)
	}
}

func TestHandleSequenceBuilt_NilExports(t *testing.T) {
	svc, ctx := newTestService(nil)

	_, err := svc.handleSequenceBuilt(dispatcher.Event{
		Name: run.EventSequenceBuilt,
		Payload: run.SequenceBuilt{
			RunID:    ctx.ID(),
			Sequence: testSequence(),
			Duration: time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("handleSequenceBuilt without exports failed: %v", err)
	}
	if got := ctx.Built.Value(); got != 1 {
		t.Errorf("built counter = %d, want 1", got)
	}
}

func TestHandleSequenceBuilt_BackendError(t *testing.T) {
	backend := &mockBackend{recordErr: errors.New("catalog down")}
	svc, _ := newTestService(backend)

	_, err := svc.handleSequenceBuilt(dispatcher.Event{
		Name: run.EventSequenceBuilt,
		Payload: run.SequenceBuilt{
			Sequence: testSequence(),
			Duration: time.Millisecond,
		},
	})
	if err == nil {
		t.Fatal("expected the backend error to surface")
	}
}

func TestHandleSequenceFailed(t *testing.T) {
	svc, ctx := newTestService(&mockBackend{})

	_, err := svc.handleSequenceFailed(dispatcher.Event{
		Name: run.EventSequenceFailed,
		Payload: run.SequenceFailed{
			RunID:    ctx.ID(),
			Index:    1,
			Sequence: "seq_000043",
			Err:      errors.New("missing body mesh"),
		},
	})
	if err != nil {
		t.Fatalf("handleSequenceFailed failed: %v", err)
	}
	if got := ctx.Failed.Value(); got != 1 {
		t.Errorf("failed counter = %d, want 1", got)
	}
}

func TestHandleRunFinished(t *testing.T) {
	backend := &mockBackend{}
	svc, ctx := newTestService(backend)
	ctx.Built.Set(2)
	ctx.Failed.Set(1)

	_, err := svc.handleRunFinished(dispatcher.Event{
		Name: run.EventRunFinished,
		Payload: run.Finished{
			RunID:    ctx.ID(),
			Built:    2,
			Failed:   1,
			Aborted:  true,
			Duration: 3 * time.Second,
		},
	})
	if err != nil {
		t.Fatalf("handleRunFinished failed: %v", err)
	}

	if !backend.runEnded {
		t.Fatal("expected the catalog entry to be closed")
	}
	if backend.endedRun.Built != 2 || backend.endedRun.Failed != 1 {
		t.Errorf("catalog entry counts = %d/%d, want 2/1", backend.endedRun.Built, backend.endedRun.Failed)
	}
	if !backend.endedRun.Aborted {
		t.Error("expected the catalog entry to be marked aborted")
	}
	if backend.endedRun.EndTime.IsZero() {
		t.Error("expected an end time on the catalog entry")
	}
}

func TestRegisterHandlers_Dispatch(t *testing.T) {
	backend := &mockBackend{}
	svc, ctx := newTestService(backend)

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	defer d.Close()

	svc.RegisterHandlers(d)

	for _, name := range []string{run.EventRunStarted, run.EventSequenceBuilt, run.EventSequenceFailed, run.EventRunFinished} {
		if !d.HasHandler(name) {
			t.Errorf("expected a handler for %s", name)
		}
	}

	_, err = d.Dispatch(dispatcher.Event{
		Name: run.EventSequenceBuilt,
		Payload: run.SequenceBuilt{
			RunID:    ctx.ID(),
			Sequence: testSequence(),
			Duration: 10 * time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if got := ctx.Built.Value(); got != 1 {
		t.Errorf("built counter = %d, want 1", got)
	}
	if len(backend.records) != 1 {
		t.Errorf("expected 1 recorded sequence, got %d", len(backend.records))
	}
}
