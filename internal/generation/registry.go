package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Status describes one registered backend at the moment it was requested.
type Status struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Model     string `json:"model,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Registry owns one Backend per known provider name. It is built once at
// startup and is safe for concurrent use; its map is never written after
// NewRegistry returns.
type Registry struct {
	logger      *slog.Logger
	backends    map[string]Backend
	names       []string
	defaultName string
}

// NewRegistry builds one backend per factory. A factory that fails, or panics,
// is logged and recorded as an unavailable backend so the remaining providers
// are still usable. Only malformed factory lists (empty or duplicate names)
// fail construction.
func NewRegistry(
	ctx context.Context,
	logger *slog.Logger,
	defaultName string,
	factories ...Factory,
) (*Registry, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	r := &Registry{
		logger:      logger,
		backends:    make(map[string]Backend, len(factories)),
		names:       make([]string, 0, len(factories)),
		defaultName: normalizeName(defaultName),
	}

	for _, f := range factories {
		name := normalizeName(f.Name)
		if name == "" {
			return nil, errors.New("factory name cannot be empty")
		}
		if _, exists := r.backends[name]; exists {
			return nil, fmt.Errorf("duplicate factory for backend %q", name)
		}
		if f.New == nil {
			return nil, fmt.Errorf("factory for backend %q has no constructor", name)
		}

		backend, err := build(ctx, f)
		if err != nil {
			logger.ErrorContext(ctx, "failed to initialize backend",
				"backend", name,
				"model", f.Model,
				"error", err)
			backend = &failedBackend{model: f.Model, err: err}
		} else if backend.Available() {
			logger.InfoContext(ctx, "backend initialized",
				"backend", name,
				"model", backend.ModelName())
		} else {
			logger.WarnContext(ctx, "backend not configured",
				"backend", name,
				"reason", reasonFor(backend))
		}

		r.backends[name] = backend
		r.names = append(r.names, name)
	}

	sort.Strings(r.names)

	if _, ok := r.backends[r.defaultName]; !ok {
		logger.WarnContext(ctx, "default backend is not a known provider",
			"default_backend", r.defaultName)
	}

	return r, nil
}

// build runs a single factory, converting a panic into ErrNotInitialized.
func build(ctx context.Context, f Factory) (backend Backend, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			backend = nil
			err = fmt.Errorf("%w: panic during construction: %v", ErrNotInitialized, rec)
		}
	}()

	backend, err = f.New(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotInitialized) {
			err = fmt.Errorf("%w: %v", ErrNotInitialized, err)
		}
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: constructor returned no backend", ErrNotInitialized)
	}
	return backend, nil
}

// Normalize maps a caller-supplied name to its registry key. Empty names
// select the default backend.
func (r *Registry) Normalize(name string) string {
	n := normalizeName(name)
	if n == "" {
		return r.defaultName
	}
	return n
}

// DefaultName returns the backend used when a request names none.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns every known provider name, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve returns the shared backend registered under name (case-insensitive).
// It fails with ErrUnknownBackend when the name was never registered and with
// ErrBackendUnavailable when the backend is registered but not usable now.
func (r *Registry) Resolve(name string) (Backend, error) {
	key := r.Normalize(name)

	backend, ok := r.backends[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a supported provider", ErrUnknownBackend, key)
	}

	if !backend.Available() {
		return nil, fmt.Errorf("%w: %q is supported but not configured: %s",
			ErrBackendUnavailable, key, reasonFor(backend))
	}

	return backend, nil
}

// ListAvailable returns the sorted names of backends that are available now.
func (r *Registry) ListAvailable() []string {
	available := make([]string, 0, len(r.names))
	for _, name := range r.names {
		if r.backends[name].Available() {
			available = append(available, name)
		}
	}
	return available
}

// Statuses reports the live state of every registered backend, sorted by name.
func (r *Registry) Statuses() []Status {
	statuses := make([]Status, 0, len(r.names))
	for _, name := range r.names {
		backend := r.backends[name]
		s := Status{Name: name, Available: backend.Available(), Model: backend.ModelName()}
		if !s.Available {
			s.Error = reasonFor(backend)
		}
		statuses = append(statuses, s)
	}
	return statuses
}

func reasonFor(b Backend) string {
	if r, ok := b.(unavailableReasoner); ok {
		if reason := r.UnavailableReason(); reason != "" {
			return reason
		}
	}
	return "missing credentials or configuration"
}
