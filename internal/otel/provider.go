package otel

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config selects the log sinks for a provider. At least one of
// LogWriter and Endpoint must be set when Enabled.
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	LogWriter    io.Writer // local sink, normally the run log file
	Endpoint     string    // OTLP/HTTP collector, empty to skip
	Insecure     bool
}

// Provider owns the OTel log pipeline behind the otelslog bridge. Farm
// collectors read the OTLP side; the writer sink keeps a local copy next
// to the run log. A disabled provider is inert and safe to flush or
// shut down.
type Provider struct {
	cfg  Config
	logs *sdklog.LoggerProvider
}

// New builds a provider from cfg. Disabled configs yield an inert
// provider and no error.
func New(cfg Config) (*Provider, error) {
	p := &Provider{cfg: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	ctx := context.Background()

	procs, err := cfg.processors(ctx)
	if err != nil {
		return nil, err
	}
	if len(procs) == 0 {
		return nil, fmt.Errorf("otel enabled without a log writer or endpoint")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, proc := range procs {
		opts = append(opts, sdklog.WithProcessor(proc))
	}
	p.logs = sdklog.NewLoggerProvider(opts...)

	return p, nil
}

// processors builds one batch processor per configured sink.
func (c Config) processors(ctx context.Context) ([]sdklog.Processor, error) {
	var procs []sdklog.Processor

	if c.LogWriter != nil {
		exp, err := stdoutlog.New(
			stdoutlog.WithWriter(c.LogWriter),
			stdoutlog.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("building writer log exporter: %w", err)
		}
		procs = append(procs, c.batch(exp))
	}

	if c.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(c.Endpoint)}
		if c.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("building OTLP log exporter: %w", err)
		}
		procs = append(procs, c.batch(exp))
	}

	return procs, nil
}

func (c Config) batch(exp sdklog.Exporter) sdklog.Processor {
	return sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(c.BatchTimeout))
}

// LoggerProvider returns the log provider for the otelslog bridge, nil
// when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Enabled reports whether the provider carries a live pipeline.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}

// Flush pushes pending records through every processor. Called when a
// run finishes so the exported logs cover the whole CSV before the
// catalog row lands.
func (p *Provider) Flush(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.ForceFlush(ctx); err != nil {
		return fmt.Errorf("otel flush: %w", err)
	}
	return nil
}

// Shutdown flushes and tears down the pipeline.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		return fmt.Errorf("otel shutdown: %w", err)
	}
	return nil
}
