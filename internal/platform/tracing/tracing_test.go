package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/phrazzld/diary-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	for _, exporter := range []string{"", config.TracingNone, " NONE "} {
		rt, err := Setup(context.Background(), config.TelemetryConfig{TracingExporter: exporter}, "diary-api", "test", nil)
		require.NoError(t, err)
		assert.False(t, rt.Enabled)

		_, span := rt.Tracer.Start(context.Background(), "ignored")
		assert.False(t, span.SpanContext().IsValid())
		span.End()
		assert.NoError(t, rt.Shutdown(context.Background()))
	}
}

func TestSetup_StdoutWritesSpansOnShutdown(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	rt, err := Setup(context.Background(), config.TelemetryConfig{
		TracingExporter: config.TracingStdout,
		SampleRatio:     1,
	}, "diary-api", "1.2.3", &out)
	require.NoError(t, err)
	require.True(t, rt.Enabled)

	_, span := rt.Tracer.Start(context.Background(), "generation.dispatch")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, rt.Shutdown(context.Background()))
	assert.Contains(t, out.String(), `"Name":"generation.dispatch"`)
	assert.Contains(t, out.String(), "1.2.3")
}

func TestSetup_ZeroSampleRatioDropsSpans(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	rt, err := Setup(context.Background(), config.TelemetryConfig{
		TracingExporter: config.TracingStdout,
		SampleRatio:     0,
	}, "diary-api", "test", &out)
	require.NoError(t, err)

	_, span := rt.Tracer.Start(context.Background(), "generation.dispatch")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, rt.Shutdown(context.Background()))
	assert.Empty(t, out.String())
}

func TestSetup_Errors(t *testing.T) {
	t.Parallel()

	_, err := Setup(context.Background(), config.TelemetryConfig{TracingExporter: "zipkin"}, "diary-api", "test", nil)
	assert.ErrorContains(t, err, "unsupported tracing exporter")

	_, err = Setup(context.Background(), config.TelemetryConfig{TracingExporter: config.TracingOTLP}, "diary-api", "test", nil)
	assert.ErrorContains(t, err, "endpoint is required")
}

func TestSetup_OTLPIsLazy(t *testing.T) {
	t.Parallel()

	// The gRPC exporter connects lazily, so setup succeeds without a collector.
	rt, err := Setup(context.Background(), config.TelemetryConfig{
		TracingExporter: config.TracingOTLP,
		OTLPEndpoint:    "127.0.0.1:4317",
		OTLPInsecure:    true,
		SampleRatio:     1,
	}, "diary-api", "test", nil)
	require.NoError(t, err)
	assert.True(t, rt.Enabled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = rt.Shutdown(ctx)
}
