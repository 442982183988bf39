package generation

import (
	"context"
	"strings"
)

// Backend defines the capability contract every text-generation provider
// adapter implements. Implementations are constructed once, never mutated
// afterwards, and shared by all concurrent requests.
type Backend interface {
	// Generate sends prompt to the remote service and blocks until a complete
	// response arrives or the call fails. The returned text has provider
	// specific wrapping (such as an enclosing code fence) removed.
	//
	// Errors wrap ErrNotInitialized when the client was never constructed, and
	// ErrRemoteCall (or one of its sub-kinds) for every failure of the call.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether the credential was present at construction and
	// the client was built. It performs no I/O.
	Available() bool

	// ModelName returns the model identifier this backend is configured to use.
	ModelName() string
}

// unavailableReasoner is implemented by backends that can explain why
// Available returns false.
type unavailableReasoner interface {
	UnavailableReason() string
}

// Factory builds the Backend registered under Name. New must not perform
// network I/O; a missing credential should produce an unavailable Backend
// rather than an error.
type Factory struct {
	Name string
	New  func(ctx context.Context) (Backend, error)

	// Model is the configured model, reported for a backend whose
	// construction failed. Optional.
	Model string
}

// Request is a single generation call. Style and mood are already resolved
// into Prompt by the caller.
type Request struct {
	// Backend is the logical provider name. Empty selects the registry default.
	Backend string

	// Prompt is the full prompt text sent to the provider.
	Prompt string
}

// Result is the outcome of a successful generation call.
type Result struct {
	Text    string
	Backend string
	Model   string
}

// normalizeName lowercases and trims a provider name.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// failedBackend stands in for a provider whose construction failed, so the
// name stays known to the registry while reporting it as unusable.
type failedBackend struct {
	model string
	err   error
}

func (b *failedBackend) Generate(context.Context, string) (string, error) {
	return "", b.err
}

func (b *failedBackend) Available() bool { return false }

func (b *failedBackend) ModelName() string { return b.model }

func (b *failedBackend) UnavailableReason() string { return b.err.Error() }
