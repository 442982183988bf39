// Package main implements the entry point for the diary API server, which
// turns short notes into diary entries using a configurable set of LLM
// providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/diary-api/internal/app"
	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/platform/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := initializeApp(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.run(ctx); err != nil {
		application.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration, sets up logging and builds the
// application dependencies.
func initializeApp(ctx context.Context, configPath string) (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("default_provider", cfg.LLM.DefaultProvider),
		slog.Bool("auth_enabled", cfg.Auth.Enabled()),
		slog.Bool("metrics_enabled", cfg.Telemetry.MetricsEnabled),
		slog.String("tracing_exporter", cfg.Telemetry.TracingExporter),
		slog.String("version", version))

	deps, err := app.Build(ctx, cfg, l, app.Options{Version: version})
	if err != nil {
		return nil, err
	}

	return newApplication(deps, version), nil
}
