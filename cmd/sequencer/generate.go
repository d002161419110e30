package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/dispatcher"
	"github.com/bedlam-render/sequencer/internal/generator"
	"github.com/bedlam-render/sequencer/internal/handlers"
	"github.com/bedlam-render/sequencer/internal/host"
	"github.com/bedlam-render/sequencer/internal/influx"
	"github.com/bedlam-render/sequencer/internal/logging"
	"github.com/bedlam-render/sequencer/internal/manifest"
	"github.com/bedlam-render/sequencer/internal/monitor"
	"github.com/bedlam-render/sequencer/internal/run"
)

// runGenerate wires the run services and drives the generate pipeline for
// one scene descriptor. The catalog and metric exports degrade to disabled
// when their backends cannot be reached; a failed host init aborts the run.
func runGenerate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s generate CSV [PRESET]", ToolName)
	}
	csvPath := args[0]
	preset := ""
	if len(args) > 1 {
		preset = args[1]
	}

	runCtx = run.NewContext()
	zlog := zlogger()

	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer eventDispatcher.Close()

	var backend manifest.Backend
	manifestCfg := config.GetManifestConfig()
	if manifestCfg.Enabled {
		backend, err = manifest.NewBackend(manifestCfg, zlog, SlogManager)
		if err != nil {
			Logger.Error("Run catalog unavailable, continuing without it", "error", err)
			backend = nil
		} else if err := backend.Init(); err != nil {
			Logger.Error("Run catalog setup failed, continuing without it", "error", err)
			backend = nil
		} else {
			defer backend.Close()
		}
	}

	var influxManager *influx.Manager
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		influxManager = influx.NewManager(zlog, influxCfg.BackupPath)
		if err := influxManager.Connect(); err != nil {
			Logger.Warn("Metric export unavailable, continuing without it", "error", err)
			influxManager = nil
		} else {
			defer influxManager.Close()
		}
	}

	hostCfg := config.GetHostConfig()
	sceneHost, err := host.NewHost(hostCfg)
	if err != nil {
		return fmt.Errorf("failed to create host backend: %w", err)
	}
	if err := sceneHost.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s host: %w", hostCfg.Type, err)
	}
	defer sceneHost.Close()
	Logger.Info("Host backend initialized", "type", hostCfg.Type)

	handlerService := handlers.NewService(handlers.Dependencies{
		Run:         runCtx,
		Backend:     backend,
		Influx:      influxManager,
		LogManager:  SlogManager,
		HostKind:    hostCfg.Type,
		ToolVersion: CurrentToolVersion,
	})
	handlerService.RegisterHandlers(eventDispatcher)

	monitorCfg := config.GetMonitorConfig()
	if monitorCfg.Enabled {
		monitorService := monitor.NewService(monitor.Dependencies{
			LogManager: SlogManager,
			Run:        runCtx,
			StatusFile: monitorCfg.StatusFile,
		})
		if err := monitorService.Start(); err != nil {
			Logger.Error("Failed to start status monitor", "error", err, "file", monitorCfg.StatusFile)
		} else {
			defer monitorService.Stop()
		}
	}

	gen := generator.New(generator.Dependencies{
		LogManager: SlogManager,
		Run:        runCtx,
		Dispatcher: eventDispatcher,
		Host:       sceneHost,
	})
	genErr := gen.Generate(csvPath, preset)

	// Push pending log exports out before the deferred closers run, so
	// collectors see the whole run even when it aborted.
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("Log export flush failed", "error", err)
		}
		cancel()
	}

	return genErr
}
