// Package providers wires the configured LLM adapters into the generation
// core. It is the only place that knows the full set of provider packages.
package providers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/anthropic"
	"github.com/phrazzld/diary-api/internal/platform/gemini"
	"github.com/phrazzld/diary-api/internal/platform/ollama"
	"github.com/phrazzld/diary-api/internal/platform/openai"
)

// Factories returns one factory per supported provider. httpClient is shared
// by the REST adapters and may be nil.
func Factories(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) []generation.Factory {
	return []generation.Factory{
		{
			Name:  gemini.Name,
			Model: cfg.Gemini.Model,
			New: func(ctx context.Context) (generation.Backend, error) {
				b, err := gemini.New(ctx, cfg.Gemini, httpClient, logger)
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
		{
			Name:  openai.Name,
			Model: cfg.OpenAI.Model,
			New: func(context.Context) (generation.Backend, error) {
				b, err := openai.New(cfg.OpenAI, httpClient, logger)
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
		{
			Name:  anthropic.Name,
			Model: cfg.Claude.Model,
			New: func(context.Context) (generation.Backend, error) {
				b, err := anthropic.New(cfg.Claude, httpClient, logger)
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
		{
			Name:  ollama.Name,
			Model: cfg.Ollama.Model,
			New: func(context.Context) (generation.Backend, error) {
				b, err := ollama.New(cfg.Ollama, httpClient, logger)
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
	}
}

// NewRegistry builds the registry of every supported provider from cfg.
func NewRegistry(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (*generation.Registry, error) {
	return generation.NewRegistry(ctx, logger, cfg.DefaultProvider, Factories(cfg, httpClient, logger)...)
}
