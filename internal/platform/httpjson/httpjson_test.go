package httpjson_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/platform/httpjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "hello", in["prompt"])

		_, _ = w.Write([]byte(`{"text":"world"}`))
	}))
	defer srv.Close()

	var out struct {
		Text string `json:"text"`
	}
	headers := http.Header{}
	headers.Set("x-api-key", "secret")

	err := httpjson.Post(context.Background(), srv.Client(), srv.URL, headers, map[string]string{"prompt": "hello"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "world", out.Text)
}

func TestPost_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		retryable   bool
	}{
		{
			name:        "nested provider message",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
			wantMessage: "Incorrect API key provided",
		},
		{
			name:        "flat message",
			status:      http.StatusTooManyRequests,
			body:        `{"error":"rate limited"}`,
			wantMessage: "rate limited",
			retryable:   true,
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "upstream exploded",

			retryable: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := httpjson.Post(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, nil)
			require.Error(t, err)

			var statusErr *httpjson.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tc.status, statusErr.StatusCode)
			assert.Equal(t, tc.wantMessage, statusErr.Message)
			assert.Equal(t, tc.body, statusErr.Body)
			assert.Equal(t, tc.retryable, statusErr.Retryable())
			assert.Contains(t, err.Error(), "status")
		})
	}
}

func TestPost_ErrorBodyIsTruncated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*httpjson.ErrorBodyLimit)))
	}))
	defer srv.Close()

	err := httpjson.Post(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, nil)

	var statusErr *httpjson.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Len(t, statusErr.Body, httpjson.ErrorBodyLimit)
}

func TestPost_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := httpjson.Post(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, &out)
	assert.ErrorIs(t, err, httpjson.ErrDecode)
}

func TestPost_ContextDeadline(t *testing.T) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := httpjson.Post(ctx, srv.Client(), srv.URL, nil, struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestRemoteError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	assert.NoError(t, httpjson.RemoteError(ctx, "openai", nil))

	statusErr := &httpjson.StatusError{StatusCode: http.StatusUnauthorized, Message: "bad key"}
	err := httpjson.RemoteError(ctx, "openai", fmt.Errorf("wrapped: %w", statusErr))
	assert.ErrorIs(t, err, generation.ErrRemoteCall)
	assert.False(t, generation.IsTimeout(err))
	var got *httpjson.StatusError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode)
	assert.Contains(t, err.Error(), "openai API error")

	err = httpjson.RemoteError(ctx, "claude", fmt.Errorf("%w: unexpected EOF", httpjson.ErrDecode))
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)

	err = httpjson.RemoteError(ctx, "claude", fmt.Errorf("http request failed: %w", context.DeadlineExceeded))
	assert.True(t, generation.IsTimeout(err))

	err = httpjson.RemoteError(ctx, "claude", errors.New("connection refused"))
	assert.Equal(t, generation.KindRemoteCall, generation.KindOf(err))
}
