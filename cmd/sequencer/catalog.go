package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bedlam-render/sequencer/internal/config"
	"github.com/bedlam-render/sequencer/internal/manifest"
)

// runCatalog answers the catalog queries: the most recent run and the
// sequences it produced. Queries work even when catalog writes are
// disabled for runs, so an old database stays inspectable.
func runCatalog(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s catalog latest|list", ToolName)
	}

	backend, err := manifest.NewBackend(config.GetManifestConfig(), zlogger(), SlogManager)
	if err != nil {
		return fmt.Errorf("failed to open run catalog: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to set up run catalog: %w", err)
	}
	defer backend.Close()

	switch strings.ToLower(args[0]) {
	case "latest":
		return printLatestRun(backend)
	case "list":
		return printLatestSequences(backend)
	default:
		return fmt.Errorf("unknown catalog query %q", args[0])
	}
}

func printLatestRun(backend manifest.Backend) error {
	r, err := backend.LatestRun()
	if err != nil {
		return err
	}

	fmt.Println("Run      ", r.RunID)
	fmt.Println("CSV      ", r.CSVPath)
	fmt.Println("Preset   ", r.Preset)
	fmt.Println("Host     ", r.HostKind)
	fmt.Println("Version  ", r.ToolVersion)
	fmt.Println("Started  ", r.StartTime.Format(time.RFC3339))
	if !r.EndTime.IsZero() {
		fmt.Println("Finished ", r.EndTime.Format(time.RFC3339))
	}
	fmt.Printf("Built     %d/%d (%d failed)\n", r.Built, r.Total, r.Failed)
	if r.Aborted {
		fmt.Println("Aborted   yes")
	}
	return nil
}

func printLatestSequences(backend manifest.Backend) error {
	r, err := backend.LatestRun()
	if err != nil {
		return err
	}

	records, err := backend.ListSequences(r.RunID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No sequences recorded for run", r.RunID)
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%4d  %-32s  %4d frames  %2d bodies  %6.0f ms  %s\n",
			rec.CSVIndex, rec.Name, rec.FrameCount, rec.BodyCount, rec.BuildMs, rec.AssetPath)
	}
	fmt.Printf("%d sequences in run %s\n", len(records), r.RunID)
	return nil
}
