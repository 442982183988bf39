// Package tracing configures OpenTelemetry tracing for diary generation.
package tracing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/diary-api/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Runtime holds the tracer handed to instrumented components and the hook
// that flushes pending spans.
type Runtime struct {
	Tracer   trace.Tracer
	Shutdown func(context.Context) error
	Enabled  bool
}

// Setup builds a tracer provider for the configured exporter. The "none"
// exporter, or an empty one, yields a no-op tracer. stdout spans are written
// to out. The provider is not installed globally.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName, version string, out io.Writer) (Runtime, error) {
	exporter := strings.ToLower(strings.TrimSpace(cfg.TracingExporter))
	if exporter == "" || exporter == config.TracingNone {
		return Runtime{
			Tracer:   noop.NewTracerProvider().Tracer(serviceName),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exp, err := newExporter(ctx, exporter, cfg, out)
	if err != nil {
		return Runtime{}, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return Runtime{}, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	return Runtime{
		Tracer:   tp.Tracer(serviceName),
		Shutdown: tp.Shutdown,
		Enabled:  true,
	}, nil
}

func newExporter(ctx context.Context, exporter string, cfg config.TelemetryConfig, out io.Writer) (sdktrace.SpanExporter, error) {
	switch exporter {
	case config.TracingStdout:
		if out == nil {
			out = io.Discard
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("otel stdout exporter: %w", err)
		}
		return exp, nil
	case config.TracingOTLP:
		if strings.TrimSpace(cfg.OTLPEndpoint) == "" {
			return nil, fmt.Errorf("otel otlp exporter: endpoint is required")
		}
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otel otlp exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", exporter)
	}
}
