package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/host/remote"
	"github.com/bedlam-render/sequencer/internal/logging"
	intOtel "github.com/bedlam-render/sequencer/internal/otel"
	"github.com/bedlam-render/sequencer/internal/run"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// tool defs - BuildDate can be set at build time via ldflags
var (
	CurrentToolVersion string = "0.0.1"
	BuildDate          string = "unknown"

	ToolName string = "sequencer"
)

// file paths
var (
	// RunLogFilePath is the session log file under logsDir.
	RunLogFilePath string
	RunLogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// runCtx is the active generation run, nil outside generate
	runCtx *run.Context
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	command := strings.ToLower(args[0])
	if command == "version" {
		fmt.Printf("%s %s (built %s)\n", ToolName, CurrentToolVersion, BuildDate)
		return
	}

	initLogging()

	var err error
	switch command {
	case "generate":
		err = runGenerate(args[1:])
	case "seqmod":
		err = runSeqmod(args[1:])
	case "catalog":
		err = runCatalog(args[1:])
	case "hostcheck":
		err = runHostcheck()
	default:
		fmt.Printf("Unknown command %q.\n\n", args[0])
		printUsage()
		shutdown()
		os.Exit(2)
	}

	if err != nil {
		Logger.Error("Command failed", "command", command, "error", err)
		shutdown()
		os.Exit(1)
	}
	shutdown()
}

func printUsage() {
	fmt.Println("Usage:", ToolName, "COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate CSV [PRESET]  synthesize every sequence in the scene descriptor")
	fmt.Println("  seqmod [-seed N] VERB  rewrite descriptors: camera PRESET, cameraroot,")
	fmt.Println("                         sequenceroot, overlayreplace, overlayadd, hairadd,")
	fmt.Println("                         povflag INPUT OUTPUT, sixviews INPUT OUTPUT")
	fmt.Println("  catalog latest|list    inspect the run catalog")
	fmt.Println("  hostcheck              probe the remote host healthcheck endpoint")
	fmt.Println("  version                print the tool version")
}

// initLogging loads configuration and stands up the logging pipeline:
// console, session log file, optional GELF and OTel sinks.
func initLogging() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err := loadConfig(); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	// create logs dir if it doesn't exist
	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
		}
	}

	RunLogFilePath = filepath.Join(logsDir, fmt.Sprintf(
		"%s.%s.log", ToolName, SessionStartTime.Format("20060102_150405"),
	))

	var err error
	RunLogFile, err = os.OpenFile(RunLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", RunLogFilePath)
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		if err := SlogManager.Graylog(graylogCfg.Address, ToolName); err != nil {
			Logger.Error("Failed to attach GELF sink", "error", err, "address", graylogCfg.Address)
		}
	}

	// Initialize OTel provider if enabled (after the log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    RunLogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else if otelCfg.Endpoint != "" {
			Logger.Info("OTel provider initialized", "file", RunLogFilePath, "endpoint", otelCfg.Endpoint)
		} else {
			Logger.Info("OTel provider initialized", "file", RunLogFilePath)
		}
	}

	// Stamp the active run onto every record once a run exists.
	SlogManager.SetContextProvider(func() []slog.Attr {
		if runCtx == nil {
			return nil
		}
		return []slog.Attr{
			slog.String("runId", runCtx.ID().String()),
			slog.Int("built", runCtx.Built.Value()),
			slog.Int("failed", runCtx.Failed.Value()),
		}
	})

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(RunLogFile, viper.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", RunLogFilePath)
}

func loadConfig() (err error) {
	return config.Load(".")
}

// zlogger builds the zerolog stream shared by the catalog manager, the
// metric shipper and the dispatcher. It mirrors the slog sinks: console
// plus the session log file.
func zlogger() zerolog.Logger {
	w := io.Writer(os.Stdout)
	if RunLogFile != nil {
		w = io.MultiWriter(os.Stdout, RunLogFile)
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// runHostcheck probes the remote host's healthcheck endpoint so farm
// scripts can gate a batch on the editor being up.
func runHostcheck() error {
	hostCfg := config.GetHostConfig()
	backend := remote.New(hostCfg)
	if err := backend.Healthcheck(); err != nil {
		Logger.Info("Render host is offline", "url", hostCfg.ServerURL, "error", err)
		return err
	}
	Logger.Info("Render host is online", "url", hostCfg.ServerURL)
	return nil
}

// shutdown flushes the export pipelines and releases the log file.
func shutdown() {
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if RunLogFile != nil {
		RunLogFile.Close()
	}
}
