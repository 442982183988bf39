package main

import (
	"log/slog"

	"github.com/phrazzld/diary-api/internal/app"
	"github.com/phrazzld/diary-api/internal/config"
)

// application holds the shared dependencies the server routes to.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	deps    *app.Dependencies
	version string
}

func newApplication(deps *app.Dependencies, version string) *application {
	return &application{
		config:  deps.Config,
		logger:  deps.Logger,
		deps:    deps,
		version: version,
	}
}
