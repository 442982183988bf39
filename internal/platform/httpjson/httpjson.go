// Package httpjson implements the JSON-over-HTTP round trip shared by the
// provider adapters that talk to REST APIs directly.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/phrazzld/diary-api/internal/generation"
)

// ErrorBodyLimit caps how much of a failed response body is kept for
// diagnostics.
const ErrorBodyLimit = 512

// StatusError is returned when the remote service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	// Message is the provider's own error message when the body carries one
	// in the common {"error": {"message": ...}} shape.
	Message string
	// Body is the raw response body, truncated to ErrorBodyLimit bytes.
	Body string
}

func (e *StatusError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, detail)
}

// Retryable reports whether the status suggests a transient condition.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ErrDecode wraps failures to decode a 2xx response body.
var ErrDecode = errors.New("decode response")

// Post marshals payload as JSON, posts it to url with the given headers and
// decodes a successful response into out. Transport errors are returned
// wrapped so that callers can inspect them with errors.Is and errors.As.
func Post(ctx context.Context, client *http.Client, url string, headers http.Header, payload, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func readStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, ErrorBodyLimit))
	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) != nil || len(envelope.Error) == 0 {
		return statusErr
	}

	// OpenAI and Anthropic nest the message; some gateways return a bare string.
	var nested struct {
		Message string `json:"message"`
	}
	var flat string
	switch {
	case json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "":
		statusErr.Message = nested.Message
	case json.Unmarshal(envelope.Error, &flat) == nil:
		statusErr.Message = flat
	}
	return statusErr
}

// RemoteError classifies a Post failure for the generation core. Status
// failures stay reachable through errors.As, undecodable bodies become
// invalid responses and transport failures are classified by
// generation.RemoteError.
func RemoteError(ctx context.Context, provider string, err error) error {
	var statusErr *StatusError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &statusErr):
		return fmt.Errorf("%w: %s API error: %w", generation.ErrRemoteCall, provider, statusErr)
	case errors.Is(err, ErrDecode):
		return fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	default:
		return generation.RemoteError(ctx, err)
	}
}
