// Package cli implements diaryctl, a command line client that runs the diary
// generation pipeline locally, without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/diary-api/internal/app"
	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/phrazzld/diary-api/internal/cli.version=v0.1.0"
var version = "dev"

// Package-level variables for testability. Tests override these to avoid
// real provider calls and to capture output.
var (
	buildDeps           = defaultBuildDeps
	ioOut     io.Writer = os.Stdout
	ioErr     io.Writer = os.Stderr
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd returns the diaryctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "diaryctl",
		Short: "Turn short notes into diary entries",
		Long: `diaryctl expands a short note into a diary entry using the configured
AI providers. It reads the same configuration as the diary API server.

Examples:
  diaryctl generate saw a movie today, had fun
  diaryctl generate --style poetic --provider claude rainy walk home
  diaryctl regenerate --original "rainy walk home" --previous-file entry.txt
  diaryctl providers`,
		Version:           version,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		newGenerateCmd(opts),
		newRegenerateCmd(opts),
		newProvidersCmd(opts),
		newTokenCmd(opts),
	)

	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// defaultBuildDeps loads configuration and assembles the application. Logs go
// to stderr so they never mix with generated output.
func defaultBuildDeps(ctx context.Context, opts *rootOptions) (*app.Dependencies, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	serverCfg := cfg.Server
	serverCfg.LogLevel = "warn"
	if opts.verbose {
		serverCfg.LogLevel = "debug"
	}

	l, err := logger.SetupWithWriter(serverCfg, ioErr)
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}

	// Nothing scrapes a one-shot process.
	cfg.Telemetry.MetricsEnabled = false

	return app.Build(ctx, cfg, l, app.Options{Version: version, TraceWriter: ioErr})
}

// closeDeps flushes any buffered spans before the process exits.
func closeDeps(ctx context.Context, deps *app.Dependencies) {
	if err := deps.Close(context.WithoutCancel(ctx)); err != nil {
		_, _ = fmt.Fprintln(ioErr, "warning:", err)
	}
}
