package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) config.ClaudeConfig {
	return config.ClaudeConfig{
		APIKey:    "sk-ant-test",
		Model:     "claude-test",
		BaseURL:   baseURL,
		MaxTokens: 1024,
	}
}

func TestGenerate_SendsMessagesRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body.Model)
		assert.Equal(t, 1024, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "Dinner with friends", body.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Tonight "},{"type":"tool_use","text":"ignored"},{"type":"text","text":"was warm."}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	b, err := anthropic.New(testConfig(srv.URL), srv.Client(), discardLogger())
	require.NoError(t, err)
	require.True(t, b.Available())

	text, err := b.Generate(context.Background(), "Dinner with friends")
	require.NoError(t, err)
	assert.Equal(t, "Tonight was warm.", text)
}

func TestGenerate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"invalid key", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, generation.ErrRemoteCall},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, generation.ErrRemoteCall},
		{"no text blocks", http.StatusOK, `{"content":[]}`, generation.ErrInvalidResponse},
		{"refusal", http.StatusOK, `{"content":[],"stop_reason":"refusal"}`, generation.ErrContentBlocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			b, err := anthropic.New(testConfig(srv.URL), srv.Client(), discardLogger())
			require.NoError(t, err)

			_, err = b.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, generation.KindRemoteCall, generation.KindOf(err))
			assert.False(t, generation.IsTimeout(err))
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	b, err := anthropic.New(testConfig(srv.URL), srv.Client(), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = b.Generate(ctx, "prompt")
	assert.True(t, generation.IsTimeout(err), "expected timeout, got %v", err)
}

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()

	b, err := anthropic.New(config.ClaudeConfig{Model: "claude-test"}, nil, discardLogger())
	require.NoError(t, err)
	assert.False(t, b.Available())
	assert.Equal(t, "claude-test", b.ModelName())
	assert.Equal(t, "CLAUDE API key not configured", b.UnavailableReason())

	_, err = b.Generate(context.Background(), "prompt")
	assert.Equal(t, generation.KindNotInitialized, generation.KindOf(err))
}
