package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single remote call when the dispatcher is built
// without an explicit timeout.
const DefaultTimeout = 60 * time.Second

// Dispatcher runs generation requests against the backends of a Registry.
// Each request is validated, resolved and generated strictly in sequence, and
// a failure on the requested backend is reported rather than retried elsewhere.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Observer receives the outcome of every generation call that reached a
// backend. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveGeneration(backend string, kind Kind, timeout bool, elapsed time.Duration)
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithObserver reports call outcomes to o.
func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithTracer records a span per generation call. The default tracer comes
// from the global OpenTelemetry provider, which is a no-op until one is set.
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher creates a Dispatcher. A non-positive timeout selects DefaultTimeout.
func NewDispatcher(registry *Registry, timeout time.Duration, logger *slog.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := &Dispatcher{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		observer: nopObserver{},
		tracer:   otel.Tracer("github.com/phrazzld/diary-api/internal/generation"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(string, Kind, bool, time.Duration) {}

// Registry returns the registry the dispatcher resolves backends from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Generate dispatches req to its backend and returns the complete result.
//
// Errors are classified for KindOf: resolution failures carry
// ErrUnknownBackend or ErrBackendUnavailable, and generation failures are
// wrapped in a *BackendError naming the backend and model.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	name := d.registry.Normalize(req.Backend)
	backend, err := d.registry.Resolve(name)
	if err != nil {
		d.logger.WarnContext(ctx, "backend resolution failed",
			"backend", name,
			"kind", string(KindOf(err)),
			"error", err)
		return nil, err
	}

	model := backend.ModelName()
	log := d.logger.With("backend", name, "model", model)

	ctx, span := d.tracer.Start(ctx, "generation.dispatch", trace.WithAttributes(
		attribute.String("generation.backend", name),
		attribute.String("generation.model", model),
		attribute.Int("generation.prompt_length", len(req.Prompt)),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	log.DebugContext(ctx, "dispatching generation request",
		"prompt_length", len(req.Prompt),
		"timeout", d.timeout.String())

	text, err := backend.Generate(callCtx, req.Prompt)
	elapsed := time.Since(start)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: backend returned no text", ErrInvalidResponse)
	}
	if err != nil {
		err = classify(callCtx, err)
		kind, timedOut := KindOf(err), IsTimeout(err)
		d.observer.ObserveGeneration(name, kind, timedOut, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		span.SetAttributes(attribute.Bool("generation.timeout", timedOut))
		log.ErrorContext(ctx, "generation failed",
			"kind", string(kind),
			"timeout", timedOut,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err)
		return nil, &BackendError{Backend: name, Model: model, Err: err}
	}

	d.observer.ObserveGeneration(name, KindNone, false, elapsed)
	span.SetAttributes(attribute.Int("generation.text_length", len(text)))
	log.InfoContext(ctx, "generation succeeded",
		"elapsed_ms", elapsed.Milliseconds(),
		"text_length", len(text))

	return &Result{
		Text:    text,
		Backend: name,
		Model:   model,
	}, nil
}

// classify maps an adapter error into the failure taxonomy. Adapters are
// expected to classify their own errors; this catches those that do not.
func classify(ctx context.Context, err error) error {
	if KindOf(err) != KindNone {
		// A deadline that fired while the adapter reported a generic remote
		// error is still a timeout.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) &&
			!IsTimeout(err) && !errors.Is(err, ErrNotInitialized) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return err
	}
	return RemoteError(ctx, err)
}
