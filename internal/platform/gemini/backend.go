package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/logger"
	"google.golang.org/genai"
)

// Name is the provider name the backend is registered under.
const Name = config.ProviderGemini

// Backend implements generation.Backend using the Gemini API.
type Backend struct {
	// client is nil when the backend is unavailable
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// reason explains why client is nil
	reason string

	logger *slog.Logger
}

// New creates a Gemini backend from cfg. A missing API key yields an
// unavailable backend rather than an error; an error is returned only when the
// client library rejects the configuration.
//
// httpClient may be nil, in which case the library default is used.
func New(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client, log *slog.Logger) (*Backend, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	b := &Backend{
		model:  cfg.Model,
		logger: log.With("provider", Name),
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		b.reason = "GEMINI API key not configured"
		return b, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	b.client = client

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

// ModelName returns the configured Gemini model.
func (b *Backend) ModelName() string {
	return b.model
}

// Generate sends prompt to Gemini and returns the response text with any
// enclosing code fence removed.
func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.client == nil {
		return "", fmt.Errorf("%w: gemini client not initialized", generation.ErrNotInitialized)
	}

	log := logger.FromContextOrDefault(ctx, b.logger)
	log.DebugContext(ctx, "calling Gemini API",
		"model", b.model,
		"prompt_length", len(prompt))

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return "", generation.RemoteError(ctx, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}

	return generation.StripCodeFence(text), nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0 || resp.Candidates[0] == nil:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: response contained no text", generation.ErrInvalidResponse)
	}
	return text, nil
}
