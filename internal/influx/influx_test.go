package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/pkg/core"
)

func lineProtocol(p *influxdb2_write.Point) string {
	return influxdb2_write.PointToLineProtocol(p, time.Duration(1*time.Nanosecond))
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestNewManager(t *testing.T) {
	m := NewManager(zerolog.Nop(), "/tmp/backup.gz")

	assert.False(t, m.IsValid)
	assert.Equal(t, DefaultBucketNames, m.BucketNames)
	assert.NotNil(t, m.Writers)
}

func TestConnect_Disabled(t *testing.T) {
	viper.Set("influx.enabled", false)
	t.Cleanup(func() { viper.Set("influx.enabled", nil) })

	m := NewManager(zerolog.Nop(), "/tmp/backup.gz")
	err := m.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx.enabled")
}

func TestSequencePoint(t *testing.T) {
	seq := &core.Sequence{
		Name:       "seq_000042",
		FrameCount: 120,
		Bodies:     []core.SequenceBody{{}, {}},
	}

	p := SequencePoint("r-1", "Static", seq, 250*time.Millisecond)
	line := lineProtocol(p)

	assert.Contains(t, line, "sequence_build,")
	assert.Contains(t, line, "camera_mode=static")
	assert.Contains(t, line, "run_id=r-1")
	assert.Contains(t, line, "frame_count=120i")
	assert.Contains(t, line, "body_count=2i")
	assert.Contains(t, line, "has_hair=false")
	assert.Contains(t, line, "build_ms=250")
}

func TestRunPoint(t *testing.T) {
	p := RunPoint("r-1", "orbit_archviz", 11, 1, 3*time.Second)
	line := lineProtocol(p)

	assert.Contains(t, line, "run,")
	assert.Contains(t, line, "preset=orbit_archviz")
	assert.Contains(t, line, "built=11i")
	assert.Contains(t, line, "failed=1i")
	assert.Contains(t, line, "duration_ms=3000")
}

func TestConnect_FallsBackToBackupAndShips(t *testing.T) {
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "1") // nothing listens here
	t.Cleanup(func() {
		viper.Set("influx.enabled", nil)
		viper.Set("influx.protocol", nil)
		viper.Set("influx.host", nil)
		viper.Set("influx.port", nil)
	})

	backupPath := filepath.Join(t.TempDir(), "influx_backup.gz")
	m := NewManager(zerolog.Nop(), backupPath)

	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	seq := &core.Sequence{Name: "seq_000001", FrameCount: 60}
	require.True(t, m.QueuePoint(BucketBuilds, SequencePoint("r-9", "Static", seq, 100*time.Millisecond)))
	require.NoError(t, m.Close())

	content := readBackup(t, backupPath)
	assert.Contains(t, content, "sequence_build")
	assert.Contains(t, content, "run_id=r-9")
}

func TestQueuePoint_DropsWhenFull(t *testing.T) {
	// no shipper running, so the buffer fills up
	m := NewManager(zerolog.Nop(), "/tmp/backup.gz")

	p := RunPoint("r-1", "Static", 1, 0, time.Second)
	for i := 0; i < pointBufferSize; i++ {
		require.True(t, m.QueuePoint(BucketRuns, p))
	}
	assert.False(t, m.QueuePoint(BucketRuns, p))
}

func TestWritePoint_NoSink(t *testing.T) {
	m := NewManager(zerolog.Nop(), "/tmp/backup.gz")

	err := m.WritePoint(context.Background(), BucketRuns, RunPoint("r-1", "Static", 0, 0, 0))
	require.Error(t, err)
}
