// Package ollama provides a generation.Backend backed by a self-hosted Ollama
// server through the official github.com/ollama/ollama/api client.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/logger"
)

// Name is the provider name the backend is registered under.
const Name = config.ProviderOllama

// Backend implements generation.Backend using Ollama's generate endpoint.
type Backend struct {
	client *api.Client
	model  string
	reason string
	logger *slog.Logger
}

// New creates an Ollama backend. An empty host leaves the backend
// unavailable. A bare host[:port], as accepted by OLLAMA_HOST, is served over
// http. A host that still does not parse as an http(s) URL is a construction
// error. No request is made to the server.
func New(cfg config.OllamaConfig, httpClient *http.Client, log *slog.Logger) (*Backend, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	b := &Backend{
		model:  cfg.Model,
		logger: log.With("provider", Name),
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		b.reason = "OLLAMA host not configured"
		return b, nil
	}

	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("ollama host %q must be http or https", host)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("ollama host %q has no host name", host)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	b.client = api.NewClient(base, httpClient)

	return b, nil
}

// Available reports whether the client was constructed.
func (b *Backend) Available() bool {
	return b.client != nil
}

// UnavailableReason explains why Available returns false.
func (b *Backend) UnavailableReason() string {
	return b.reason
}

// ModelName returns the configured model.
func (b *Backend) ModelName() string {
	return b.model
}

// Generate runs a non-streaming completion and returns the response text.
func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("%w: ollama client not initialized", generation.ErrNotInitialized)
	}

	log := logger.FromContextOrDefault(ctx, b.logger)
	log.DebugContext(ctx, "calling Ollama API",
		"model", b.model,
		"prompt_length", len(prompt))

	stream := false
	req := &api.GenerateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := b.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: ollama API error: status %d: %s",
				generation.ErrRemoteCall, statusErr.StatusCode, statusErr.ErrorMessage)
		}
		return "", generation.RemoteError(ctx, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", generation.ErrInvalidResponse)
	}

	return generation.StripCodeFence(text), nil
}
