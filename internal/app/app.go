// Package app assembles the diary application's dependencies from
// configuration. Both the HTTP server and the diaryctl CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/metrics"
	"github.com/phrazzld/diary-api/internal/platform/providers"
	"github.com/phrazzld/diary-api/internal/platform/tracing"
	"github.com/phrazzld/diary-api/internal/prompt"
	"github.com/phrazzld/diary-api/internal/service/auth"
	"github.com/phrazzld/diary-api/internal/service/diary"
)

// Dependencies holds the shared application components. All of them are safe
// for concurrent use and live for the whole process.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Registry   *generation.Registry
	Dispatcher *generation.Dispatcher
	Prompts    *prompt.Builder
	Diary      diary.Service

	// JWTService is nil when authentication is disabled.
	JWTService auth.JWTService

	// Metrics is nil when telemetry.metrics_enabled is false.
	Metrics *metrics.Recorder
	Tracing tracing.Runtime
}

// ServiceName identifies the process in traces.
const ServiceName = "diary-api"

// Close flushes telemetry. It is safe to call on partially built dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	if d == nil || d.Tracing.Shutdown == nil {
		return nil
	}
	if err := d.Tracing.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracing: %w", err)
	}
	return nil
}

// Options customizes Build.
type Options struct {
	// HTTPClient is shared by the provider adapters. Nil selects a client
	// without its own timeout; calls are bounded by llm.timeout_seconds.
	HTTPClient *http.Client

	// Factories replaces the configured provider factories. Used by tests to
	// register stub backends.
	Factories []generation.Factory

	// Version is reported as the service version on trace resources.
	Version string

	// TraceWriter receives spans from the stdout exporter. Nil selects os.Stdout.
	TraceWriter io.Writer
}

// Build constructs every dependency from cfg. Provider construction
// failures are logged and leave that provider unavailable rather than
// failing the build.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	factories := opts.Factories
	if factories == nil {
		factories = providers.Factories(cfg.LLM, httpClient, logger)
	}

	registry, err := generation.NewRegistry(ctx, logger, cfg.LLM.DefaultProvider, factories...)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	available := registry.ListAvailable()
	if len(available) == 0 {
		logger.Warn("no AI provider is configured; generation requests will fail",
			"providers", registry.Names())
	} else {
		logger.Info("AI providers ready",
			"available", available,
			"default", registry.DefaultName())
	}

	traceWriter := opts.TraceWriter
	if traceWriter == nil {
		traceWriter = os.Stdout
	}
	tracer, err := tracing.Setup(ctx, cfg.Telemetry, ServiceName, opts.Version, traceWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	if tracer.Enabled {
		logger.Info("tracing enabled",
			"exporter", cfg.Telemetry.TracingExporter,
			"sample_ratio", cfg.Telemetry.SampleRatio)
	}

	dispatchOpts := []generation.DispatcherOption{generation.WithTracer(tracer.Tracer)}

	var recorder *metrics.Recorder
	if cfg.Telemetry.MetricsEnabled {
		recorder, err = metrics.NewRecorder(metrics.NewRegistry())
		if err != nil {
			_ = tracer.Shutdown(ctx)
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		dispatchOpts = append(dispatchOpts, generation.WithObserver(recorder))
	}

	dispatcher, err := generation.NewDispatcher(registry,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, logger, dispatchOpts...)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	prompts, err := prompt.NewBuilder()
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	diaryService, err := diary.NewService(dispatcher, prompts, logger)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create diary service: %w", err)
	}

	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Registry:   registry,
		Dispatcher: dispatcher,
		Prompts:    prompts,
		Diary:      diaryService,
		Metrics:    recorder,
		Tracing:    tracer,
	}

	if cfg.Auth.Enabled() {
		deps.JWTService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, fmt.Errorf("failed to create JWT service: %w", err)
		}
		logger.Info("bearer token authentication enabled")
	}

	return deps, nil
}
