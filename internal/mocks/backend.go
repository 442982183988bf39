package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/diary-api/internal/generation"
)

// MockBackend implements generation.Backend for testing.
type MockBackend struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) (string, error)

	// Default response values
	Text     string
	Err      error
	Model    string
	Reason   string
	Unusable bool

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Prompts contains all prompts passed to Generate calls
		Prompts []string
	}
}

var _ generation.Backend = (*MockBackend)(nil)

// Generate implements generation.Backend
func (m *MockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Prompts = append(m.GenerateCalls.Prompts, prompt)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}

	return m.Text, m.Err
}

// Available implements generation.Backend
func (m *MockBackend) Available() bool {
	return !m.Unusable
}

// ModelName implements generation.Backend
func (m *MockBackend) ModelName() string {
	return m.Model
}

// UnavailableReason explains why the mock reports itself unavailable.
func (m *MockBackend) UnavailableReason() string {
	return m.Reason
}

// CallCount returns the number of Generate calls so far.
func (m *MockBackend) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// LastPrompt returns the prompt of the most recent Generate call, or "".
func (m *MockBackend) LastPrompt() string {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	if len(m.GenerateCalls.Prompts) == 0 {
		return ""
	}
	return m.GenerateCalls.Prompts[len(m.GenerateCalls.Prompts)-1]
}

// NewMockBackendWithText creates a MockBackend that returns text from model.
func NewMockBackendWithText(model, text string) *MockBackend {
	return &MockBackend{
		Model: model,
		Text:  text,
	}
}

// NewMockBackendWithError creates a MockBackend whose Generate fails with err.
func NewMockBackendWithError(model string, err error) *MockBackend {
	return &MockBackend{
		Model: model,
		Err:   err,
	}
}

// NewUnavailableMockBackend creates a MockBackend that reports itself
// unavailable, as an adapter with a missing credential would.
func NewUnavailableMockBackend(model, reason string) *MockBackend {
	return &MockBackend{
		Model:    model,
		Reason:   reason,
		Unusable: true,
		Err:      generation.ErrNotInitialized,
	}
}

// NewBlockingMockBackend creates a MockBackend whose Generate waits for its
// context to end, simulating a remote call that never answers.
func NewBlockingMockBackend(model string) *MockBackend {
	return &MockBackend{
		Model: model,
		GenerateFn: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Factory returns a generation.Factory that always yields m.
func (m *MockBackend) Factory(name string) generation.Factory {
	return generation.Factory{
		Name: name,
		New: func(context.Context) (generation.Backend, error) {
			return m, nil
		},
	}
}

// Reset resets the call tracking state
func (m *MockBackend) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Prompts = nil
}
