package otel

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithWriter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "bedlam-sequencer",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)

	assert.True(t, p.Enabled())
	require.NotNil(t, p.LoggerProvider())

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutSink(t *testing.T) {
	_, err := New(Config{
		Enabled:     true,
		ServiceName: "bedlam-sequencer",
	})
	assert.Error(t, err, "enabled provider needs a log writer or endpoint")
}

func TestFlush_DeliversBridgedRecords(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "bedlam-sequencer",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	logger := slog.New(otelslog.NewHandler("flush-test",
		otelslog.WithLoggerProvider(p.LoggerProvider())))
	logger.Info("sequence saved", "name", "seq_test_0000")

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "sequence saved")
}
