package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/phrazzld/diary-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func failingFactory(name string, err error) generation.Factory {
	return generation.Factory{
		Name: name,
		New: func(context.Context) (generation.Backend, error) {
			return nil, err
		},
	}
}

func newTestRegistry(t *testing.T, defaultName string, factories ...generation.Factory) *generation.Registry {
	t.Helper()
	r, err := generation.NewRegistry(context.Background(), discardLogger(), defaultName, factories...)
	require.NoError(t, err)
	return r
}

func TestRegistry_ResolveIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "text")
	r := newTestRegistry(t, "gemini", gemini.Factory("gemini"))

	for _, name := range []string{"gemini", "Gemini", "GEMINI", "  gEmInI "} {
		backend, err := r.Resolve(name)
		require.NoError(t, err, "resolve %q", name)
		assert.Same(t, gemini, backend, "resolve %q should return the shared instance", name)
	}
}

func TestRegistry_ResolveEmptyNameUsesDefault(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "text")
	openai := mocks.NewMockBackendWithText("gpt-test", "text")
	r := newTestRegistry(t, "OpenAI", gemini.Factory("gemini"), openai.Factory("openai"))

	assert.Equal(t, "openai", r.DefaultName())

	backend, err := r.Resolve("")
	require.NoError(t, err)
	assert.Same(t, openai, backend)
}

func TestRegistry_ResolveUnknownBackend(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, "gemini", mocks.NewMockBackendWithText("m", "t").Factory("gemini"))

	for _, name := range []string{"nonexistent", "gemini2", "open ai"} {
		backend, err := r.Resolve(name)
		assert.Nil(t, backend)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrUnknownBackend)
		assert.Equal(t, generation.KindUnknownBackend, generation.KindOf(err))
		assert.Contains(t, err.Error(), "not a supported provider")
	}
}

func TestRegistry_ResolveUnavailableBackend(t *testing.T) {
	t.Parallel()

	claude := mocks.NewUnavailableMockBackend("claude-test", "API key not configured")
	r := newTestRegistry(t, "gemini", claude.Factory("claude"))

	backend, err := r.Resolve("claude")
	assert.Nil(t, backend)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable)
	assert.Equal(t, generation.KindBackendUnavailable, generation.KindOf(err))
	assert.Contains(t, err.Error(), "supported but not configured")
	assert.Contains(t, err.Error(), "API key not configured")
	assert.Zero(t, claude.CallCount(), "generate must never be invoked on an unavailable backend")
}

func TestRegistry_ConstructionFailureIsIsolated(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "text")
	ollama := mocks.NewMockBackendWithText("llama-test", "text")
	panicking := generation.Factory{
		Name: "claude",
		New: func(context.Context) (generation.Backend, error) {
			panic("client exploded")
		},
	}

	r := newTestRegistry(t, "gemini",
		gemini.Factory("gemini"),
		failingFactory("openai", errors.New("bad base url")),
		panicking,
		ollama.Factory("ollama"),
	)

	assert.Equal(t, []string{"gemini", "ollama"}, r.ListAvailable())
	assert.Equal(t, []string{"claude", "gemini", "ollama", "openai"}, r.Names())

	_, err := r.Resolve("openai")
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable, "failed construction keeps the name known")
	assert.Contains(t, err.Error(), "bad base url")

	_, err = r.Resolve("claude")
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "client exploded")

	backend, err := r.Resolve("gemini")
	require.NoError(t, err)
	assert.Same(t, gemini, backend)
}

func TestRegistry_NilBackendFromFactory(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, "gemini", generation.Factory{
		Name: "gemini",
		New: func(context.Context) (generation.Backend, error) {
			return nil, nil
		},
	})

	assert.Empty(t, r.ListAvailable())
	_, err := r.Resolve("gemini")
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable)
}

func TestRegistry_ListAvailableReflectsLiveState(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-test", "text")
	openai := mocks.NewMockBackendWithText("gpt-test", "text")
	r := newTestRegistry(t, "gemini", gemini.Factory("gemini"), openai.Factory("openai"))

	assert.Equal(t, []string{"gemini", "openai"}, r.ListAvailable())

	// The mock's availability flag stands in for state the predicate reads.
	openai.Unusable = true
	assert.Equal(t, []string{"gemini"}, r.ListAvailable())
}

func TestRegistry_Statuses(t *testing.T) {
	t.Parallel()

	gemini := mocks.NewMockBackendWithText("gemini-2.5-flash", "text")
	claude := mocks.NewUnavailableMockBackend("claude-test", "CLAUDE API key not configured")
	r := newTestRegistry(t, "gemini",
		gemini.Factory("gemini"),
		claude.Factory("claude"),
		failingFactory("openai", errors.New("boom")),
	)

	statuses := r.Statuses()
	require.Len(t, statuses, 3)

	assert.Equal(t, generation.Status{Name: "claude", Available: false, Model: "claude-test", Error: "CLAUDE API key not configured"}, statuses[0])
	assert.Equal(t, generation.Status{Name: "gemini", Available: true, Model: "gemini-2.5-flash"}, statuses[1])
	assert.Equal(t, "openai", statuses[2].Name)
	assert.Empty(t, statuses[2].Model, "factory did not declare a model")
	assert.False(t, statuses[2].Available)
	assert.Contains(t, statuses[2].Error, "boom")
}

func TestNewRegistry_InvalidFactories(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockBackendWithText("m", "t")

	tests := []struct {
		name      string
		factories []generation.Factory
		errSubstr string
	}{
		{
			name:      "empty name",
			factories: []generation.Factory{m.Factory("  ")},
			errSubstr: "name cannot be empty",
		},
		{
			name:      "duplicate name ignoring case",
			factories: []generation.Factory{m.Factory("gemini"), m.Factory("Gemini")},
			errSubstr: "duplicate",
		},
		{
			name:      "missing constructor",
			factories: []generation.Factory{{Name: "gemini"}},
			errSubstr: "no constructor",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := generation.NewRegistry(context.Background(), discardLogger(), "gemini", tc.factories...)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSubstr)
		})
	}

	_, err := generation.NewRegistry(context.Background(), nil, "gemini")
	assert.Error(t, err, "nil logger should be rejected")
}
