// Package anthropic provides a generation.Backend backed by the Anthropic
// Messages API. It is registered under the provider name "claude".
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/httpjson"
	"github.com/phrazzld/diary-api/internal/platform/logger"
)

// Name is the provider name the backend is registered under.
const Name = config.ProviderClaude

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Backend implements generation.Backend using the Messages API.
type Backend struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	reason    string
	logger    *slog.Logger
}

// New creates a Claude backend. A missing API key yields an unavailable
// backend; an unusable base URL is a construction error.
func New(cfg config.ClaudeConfig, httpClient *http.Client, log *slog.Logger) (*Backend, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	b := &Backend{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    log.With("provider", Name),
	}
	if b.maxTokens <= 0 {
		b.maxTokens = 1024
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		b.reason = "CLAUDE API key not configured"
		return b, nil
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("claude base URL %q must be http or https", base)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	b.client = httpClient
	b.endpoint = strings.TrimRight(base, "/") + "/v1/messages"
	b.apiKey = cfg.APIKey

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

// Generate sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("%w: claude client not initialized", generation.ErrNotInitialized)
	}

	log := logger.FromContextOrDefault(ctx, b.logger)
	log.DebugContext(ctx, "calling Anthropic API",
		"model", b.model,
		"prompt_length", len(prompt))

	headers := http.Header{}
	headers.Set("x-api-key", b.apiKey)
	headers.Set("anthropic-version", apiVersion)

	req := messagesRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	var resp messagesResponse
	if err := httpjson.Post(ctx, b.client, b.endpoint, headers, req, &resp); err != nil {
		return "", httpjson.RemoteError(ctx, Name, err)
	}

	if resp.StopReason == "refusal" {
		return "", fmt.Errorf("%w: model refused the request", generation.ErrContentBlocked)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: response contained no text", generation.ErrInvalidResponse)
	}

	return generation.StripCodeFence(text), nil
}
