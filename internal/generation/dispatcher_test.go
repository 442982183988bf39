package generation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestDispatcher(t *testing.T, timeout time.Duration, factories ...generation.Factory) *generation.Dispatcher {
	t.Helper()
	d, err := generation.NewDispatcher(newTestRegistry(t, "gemini", factories...), timeout, discardLogger())
	require.NoError(t, err)
	return d
}

func TestDispatcher_Success(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-2.5-flash", "Dear diary, the movie was wonderful.")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"))

	result, err := d.Generate(context.Background(), generation.Request{
		Backend: "Gemini",
		Prompt:  "Saw a movie today, had fun",
	})

	require.NoError(t, err)
	assert.Equal(t, &generation.Result{
		Text:    "Dear diary, the movie was wonderful.",
		Backend: "gemini",
		Model:   "gemini-2.5-flash",
	}, result)
	assert.Equal(t, "Saw a movie today, had fun", gemini.LastPrompt())
}

func TestDispatcher_DefaultBackend(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "entry")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"))

	result, err := d.Generate(context.Background(), generation.Request{Prompt: "note"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", result.Backend)
	assert.Equal(t, 1, gemini.CallCount())
}

func TestDispatcher_EmptyPromptNeverTouchesBackend(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "entry")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"))

	for _, prompt := range []string{"", "   ", "\n\t"} {
		result, err := d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: prompt})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
	}
	assert.Zero(t, gemini.CallCount())
}

func TestDispatcher_ResolutionFailures(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "entry")
	claude := mocks.NewUnavailableMockBackend("claude-test", "no key")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"), claude.Factory("claude"))

	_, err := d.Generate(context.Background(), generation.Request{Backend: "nonexistent", Prompt: "p"})
	assert.Equal(t, generation.KindUnknownBackend, generation.KindOf(err))

	_, err = d.Generate(context.Background(), generation.Request{Backend: "claude", Prompt: "p"})
	assert.Equal(t, generation.KindBackendUnavailable, generation.KindOf(err))

	assert.Zero(t, gemini.CallCount(), "no fallback to another provider")
	assert.Zero(t, claude.CallCount())
}

func TestDispatcher_RemoteFailureCarriesBackendContext(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithError("gemini-test", errors.New("connection reset by peer"))
	openai := mocks.NewMockBackendWithText("gpt-test", "entry")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"), openai.Factory("openai"))

	result, err := d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "p"})
	assert.Nil(t, result)
	require.Error(t, err)

	var backendErr *generation.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "gemini", backendErr.Backend)
	assert.Equal(t, "gemini-test", backendErr.Model)
	assert.Equal(t, generation.KindRemoteCall, generation.KindOf(err))
	assert.False(t, generation.IsTimeout(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Zero(t, openai.CallCount(), "no fallback to another provider")
}

func TestDispatcher_TimeoutIsClassified(t *testing.T) {
	t.Parallel()

	slow := mocks.NewBlockingMockBackend("gemini-test")
	d := newTestDispatcher(t, 20*time.Millisecond, slow.Factory("gemini"))

	done := make(chan error, 1)
	go func() {
		_, err := d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "p"})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, generation.KindRemoteCall, generation.KindOf(err))
		assert.True(t, generation.IsTimeout(err), "expected timeout sub-kind, got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not honor its timeout")
	}
}

func TestDispatcher_CallerCancellation(t *testing.T) {
	t.Parallel()

	slow := mocks.NewBlockingMockBackend("gemini-test")
	d := newTestDispatcher(t, time.Minute, slow.Factory("gemini"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Generate(ctx, generation.Request{Backend: "gemini", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrCanceled)
	assert.False(t, generation.IsTimeout(err))
}

func TestDispatcher_EmptyTextIsInvalidResponse(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "  \n ")
	d := newTestDispatcher(t, time.Second, gemini.Factory("gemini"))

	_, err := d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "p"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	assert.Equal(t, generation.KindRemoteCall, generation.KindOf(err))
}

func TestDispatcher_NotInitializedPassesThrough(t *testing.T) {
	t.Parallel()

	// Available but with a nil client: an adapter bug the taxonomy must still surface.
	broken := mocks.NewMockBackendWithError("gemini-test", generation.ErrNotInitialized)
	d := newTestDispatcher(t, time.Second, broken.Factory("gemini"))

	_, err := d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "p"})
	assert.Equal(t, generation.KindNotInitialized, generation.KindOf(err))
}

func TestNewDispatcher_Validation(t *testing.T) {
	t.Parallel()

	_, err := generation.NewDispatcher(nil, time.Second, discardLogger())
	assert.Error(t, err)

	r := newTestRegistry(t, "gemini")
	_, err = generation.NewDispatcher(r, time.Second, nil)
	assert.Error(t, err)

	d, err := generation.NewDispatcher(r, 0, discardLogger())
	require.NoError(t, err)
	assert.Same(t, r, d.Registry())
}

type observation struct {
	backend string
	kind    generation.Kind
	timeout bool
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveGeneration(backend string, kind generation.Kind, timeout bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{backend: backend, kind: kind, timeout: timeout})
}

func (o *recordingObserver) observations() []observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observation(nil), o.seen...)
}

func TestDispatcher_ReportsOutcomesToObserver(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "entry")
	openai := mocks.NewMockBackendWithError("gpt-4", errors.New("boom"))
	slow := mocks.NewBlockingMockBackend("llama3.2")
	obs := &recordingObserver{}

	registry := newTestRegistry(t, "gemini", gemini.Factory("gemini"), openai.Factory("openai"), slow.Factory("ollama"))
	d, err := generation.NewDispatcher(registry, 20*time.Millisecond, discardLogger(), generation.WithObserver(obs))
	require.NoError(t, err)

	_, err = d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "p"})
	require.NoError(t, err)
	_, err = d.Generate(context.Background(), generation.Request{Backend: "openai", Prompt: "p"})
	require.Error(t, err)
	_, err = d.Generate(context.Background(), generation.Request{Backend: "ollama", Prompt: "p"})
	require.Error(t, err)
	_, err = d.Generate(context.Background(), generation.Request{Backend: "bard", Prompt: "p"})
	require.Error(t, err)

	assert.Equal(t, []observation{
		{backend: "gemini", kind: generation.KindNone},
		{backend: "openai", kind: generation.KindRemoteCall},
		{backend: "ollama", kind: generation.KindRemoteCall, timeout: true},
	}, obs.observations(), "resolution failures never reach a backend and are not observed")
}

func TestDispatcher_RecordsSpans(t *testing.T) {
	t.Parallel()

	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	gemini := mocks.NewMockBackendWithText("gemini-test", "entry")
	claude := mocks.NewMockBackendWithError("claude-test", generation.RemoteError(context.Background(), errors.New("overloaded")))
	registry := newTestRegistry(t, "gemini", gemini.Factory("gemini"), claude.Factory("claude"))
	d, err := generation.NewDispatcher(registry, time.Second, discardLogger(),
		generation.WithTracer(provider.Tracer("test")))
	require.NoError(t, err)

	_, err = d.Generate(context.Background(), generation.Request{Backend: "gemini", Prompt: "four"})
	require.NoError(t, err)
	_, err = d.Generate(context.Background(), generation.Request{Backend: "claude", Prompt: "p"})
	require.Error(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 2)

	ok := ended[0]
	assert.Equal(t, "generation.dispatch", ok.Name())
	assert.Equal(t, codes.Unset, ok.Status().Code)
	assert.Contains(t, ok.Attributes(), attribute.String("generation.backend", "gemini"))
	assert.Contains(t, ok.Attributes(), attribute.String("generation.model", "gemini-test"))
	assert.Contains(t, ok.Attributes(), attribute.Int("generation.prompt_length", 4))

	failed := ended[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, string(generation.KindRemoteCall), failed.Status().Description)
	require.NotEmpty(t, failed.Events(), "the error is recorded as a span event")
	assert.Equal(t, "exception", failed.Events()[0].Name)
}
