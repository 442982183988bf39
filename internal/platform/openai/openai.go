// Package openai provides a generation.Backend backed by the OpenAI chat
// completions API.
package openai

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
const Name = config.ProviderOpenAI

const defaultBaseURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Backend implements generation.Backend using OpenAI chat completions.
type Backend struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	reason      string
	logger      *slog.Logger
}

// New creates an OpenAI backend. A missing API key yields an unavailable
// backend; an unusable base URL is a construction error.
func New(cfg config.OpenAIConfig, httpClient *http.Client, log *slog.Logger) (*Backend, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	b := &Backend{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log.With("provider", Name),
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		b.reason = "OPENAI API key not configured"
		return b, nil
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("openai base URL %q must be http or https", base)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	b.client = httpClient
	b.endpoint = strings.TrimRight(base, "/") + "/chat/completions"
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

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("%w: openai client not initialized", generation.ErrNotInitialized)
	}

	log := logger.FromContextOrDefault(ctx, b.logger)
	log.DebugContext(ctx, "calling OpenAI API",
		"model", b.model,
		"prompt_length", len(prompt))

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+b.apiKey)

	req := chatRequest{
		Model:       b.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
	}

	var resp chatResponse
	if err := httpjson.Post(ctx, b.client, b.endpoint, headers, req, &resp); err != nil {
		return "", httpjson.RemoteError(ctx, Name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrInvalidResponse)
	}
	if resp.Choices[0].FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: content filtered", generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty message content", generation.ErrInvalidResponse)
	}

	return generation.StripCodeFence(text), nil
}
