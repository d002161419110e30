package timeline

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/bedlam-render/sequencer/internal/timeline"

// instruments holds the build counters. They ride the global meter
// provider and stay no-ops unless the embedding process installs a
// real one.
type instruments struct {
	sequences metric.Int64Counter
	bodies    metric.Int64Counter
	saves     metric.Int64Counter
}

func newInstruments(logger *slog.Logger) instruments {
	m := otel.Meter(instrumentationName)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warn("Metric instrument unavailable", "name", name, "error", err)
			c, _ = noop.Meter{}.Int64Counter(name)
		}
		return c
	}
	return instruments{
		sequences: counter("timeline.sequences.built", "Timelines synthesized and saved"),
		bodies:    counter("timeline.bodies.bound", "Body bindings added across all timelines"),
		saves:     counter("timeline.host.saves", "Save calls issued to the scene host"),
	}
}
