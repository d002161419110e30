package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// stdout is the console sink. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// SlogManager builds the slog pipeline for the sequencer: console plus an
// optional run log file, with GELF shipping and OTel export when configured.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	// GELF sink, set by Graylog before Setup
	gelfWriter *gelf.Writer

	// dynamic attributes stamped onto every record
	provider ContextProvider
}

// NewSlogManager creates an unconfigured logging manager. Logger returns
// slog.Default until Setup is called.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Graylog points the manager at a GELF UDP endpoint. The sink is attached
// on the next Setup call. The facility tags records with the shipping
// service name.
func (m *SlogManager) Graylog(addr, facility string) error {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return err
	}
	w.Facility = facility
	m.gelfWriter = w
	return nil
}

// SetContextProvider registers a source of dynamic attributes, typically the
// active run context. Takes effect on the next Setup call.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.provider = p
}

// Setup initializes the logging pipeline. Records always reach the console;
// file, GELF and OTel sinks are attached when available. Setup may be called
// again to switch log files mid-session.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	lvl := parseLevel(level)
	m.logProvider = provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	handlers = append(handlers, slog.NewTextHandler(stdout, handlerOpts))

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	}

	// Graylog expects one message per write, which the JSON handler
	// guarantees per record.
	if m.gelfWriter != nil {
		handlers = append(handlers, slog.NewJSONHandler(m.gelfWriter, handlerOpts))
	}

	if provider != nil {
		otelHandler := otelslog.NewHandler("bedlam-sequencer", otelslog.WithLoggerProvider(provider))
		handlers = append(handlers, otelHandler)
	}

	var root slog.Handler = NewMultiHandler(handlers...)
	if m.provider != nil {
		root = NewContextHandler(root, m.provider)
	}

	m.logger = slog.New(root)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Setup has not run yet
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
