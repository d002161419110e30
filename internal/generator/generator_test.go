package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/dispatcher"
	"github.com/bedlam-render/sequencer/internal/handlers"
	"github.com/bedlam-render/sequencer/internal/host/memory"
	"github.com/bedlam-render/sequencer/internal/logging"
	manifestmem "github.com/bedlam-render/sequencer/internal/manifest/memory"
	"github.com/bedlam-render/sequencer/internal/run"
)

const header = "Type,Index,Body,X,Y,Z,Yaw,Pitch,Roll,Comment\n"

func writeCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "be_seq.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+rows), 0o644))
	return path
}

// harness wires a generator to a memory host, a memory catalog, and a
// live dispatcher with the standard handlers registered.
type harness struct {
	gen     *Generator
	runCtx  *run.Context
	host    *memory.Backend
	catalog *manifestmem.Backend
	disp    *dispatcher.Dispatcher
}

func newHarness(t *testing.T, assumeAssets bool) *harness {
	t.Helper()
	config.LoadDefaults()

	hostCfg := config.GetHostConfig()
	hostCfg.AssumeAssets = assumeAssets
	hostBackend := memory.New(hostCfg)

	catalog := manifestmem.New()
	require.NoError(t, catalog.Init())

	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "error", nil)

	runCtx := run.NewContext()

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	handlers.NewService(handlers.Dependencies{
		Run:         runCtx,
		Backend:     catalog,
		LogManager:  logManager,
		HostKind:    "memory",
		ToolVersion: "test",
	}).RegisterHandlers(d)

	gen := New(Dependencies{
		LogManager: logManager,
		Run:        runCtx,
		Dispatcher: d,
		Host:       hostBackend,
	})
	return &harness{gen: gen, runCtx: runCtx, host: hostBackend, catalog: catalog, disp: d}
}

func TestGenerate_BuildsAllSequences(t *testing.T) {
	h := newHarness(t, true)
	csv := writeCSV(t,
		"Comment,0,,0,0,0,0,0,0,generator=test\n"+
			"Group,0,,-350,0,170,10,-5,0,sequence_name=seq_000000;frames=50\n"+
			"Body,0,rp_aaron_posed_002_0000,120,-40,0,45,0,0,\n"+
			"Group,1,,-350,0,170,10,-5,0,sequence_name=seq_000001;frames=25\n"+
			"Body,0,rp_alvin_posed_016_0003,80,10,0,0,0,0,\n")

	require.NoError(t, h.gen.Generate(csv, ""))

	assert.Equal(t, 2, h.host.SavedCount())
	assert.Equal(t, 2, h.runCtx.Built.Value())
	assert.Zero(t, h.runCtx.Failed.Value())
	assert.Equal(t, 2, h.runCtx.Total())

	latest, err := h.catalog.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, h.runCtx.ID(), latest.RunID)
	assert.Equal(t, 2, latest.Built)
	assert.False(t, latest.Aborted)
	assert.False(t, latest.EndTime.IsZero())

	records, err := h.catalog.ListSequences(h.runCtx.ID())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "seq_000000", records[0].Name)
	assert.Equal(t, "/Game/Bedlam/LevelSequences/seq_000000", records[0].AssetPath)
	assert.Equal(t, 50, records[0].FrameCount)
	assert.Equal(t, "seq_000001", records[1].Name)
}

func TestGenerate_FailFastAborts(t *testing.T) {
	h := newHarness(t, false) // assets resolve only when registered
	csv := writeCSV(t,
		"Group,0,,-350,0,170,10,-5,0,sequence_name=seq_000000;frames=50\n"+
			"Body,0,rp_aaron_posed_002_0000,120,-40,0,45,0,0,\n"+
			"Group,1,,-350,0,170,10,-5,0,sequence_name=seq_000001;frames=25\n"+
			"Body,0,rp_alvin_posed_016_0003,80,10,0,0,0,0,\n")

	err := h.gen.Generate(csv, "")
	require.Error(t, err)

	// first failure aborts before the second sequence is attempted
	assert.Zero(t, h.host.SavedCount())
	assert.Zero(t, h.runCtx.Built.Value())
	assert.Equal(t, 1, h.runCtx.Failed.Value())

	latest, lerr := h.catalog.LatestRun()
	require.NoError(t, lerr)
	require.NotNil(t, latest)
	assert.True(t, latest.Aborted)
	assert.Equal(t, 1, latest.Failed)
}

func TestGenerate_ParseErrorBeforeRunStart(t *testing.T) {
	h := newHarness(t, true)
	csv := writeCSV(t, "Group,0,,-350,0,170,10,-5,0,frames=50\n") // no sequence_name

	err := h.gen.Generate(csv, "")
	require.Error(t, err)

	_, lerr := h.catalog.LatestRun()
	assert.Error(t, lerr, "no catalog entry before the descriptor parses")
}

func TestGenerate_MissingFile(t *testing.T) {
	h := newHarness(t, true)
	err := h.gen.Generate(filepath.Join(t.TempDir(), "absent.csv"), "")
	require.Error(t, err)
}

func TestGenerate_NoDispatcher(t *testing.T) {
	config.LoadDefaults()
	hostBackend := memory.New(config.GetHostConfig())

	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "error", nil)

	gen := New(Dependencies{
		LogManager: logManager,
		Run:        run.NewContext(),
		Host:       hostBackend,
	})

	csv := writeCSV(t,
		"Group,0,,-350,0,170,10,-5,0,sequence_name=seq_000000;frames=10\n"+
			"Body,0,rp_aaron_posed_002_0000,120,-40,0,45,0,0,\n")

	require.NoError(t, gen.Generate(csv, ""))
	assert.Equal(t, 1, hostBackend.SavedCount())
}
