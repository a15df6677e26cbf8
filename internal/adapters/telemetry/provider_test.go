package telemetry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/pkgdeck/internal/adapters/telemetry"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestOTelTracer_SpanAttributes(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "worker.dependencies")
	span.SetAttribute("signature", "abc")
	span.SetAttribute("targets", 2)
	span.SetAttribute("correlation", uint64(7))
	span.SetAttribute("cached", false)
	span.SetAttribute("names", []string{"foo", "baz"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "worker.dependencies", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "abc", attrs["signature"].AsString())
	assert.Equal(t, int64(2), attrs["targets"].AsInt64())
	assert.Equal(t, int64(7), attrs["correlation"].AsInt64())
	assert.False(t, attrs["cached"].AsBool())
	assert.Equal(t, []string{"foo", "baz"}, attrs["names"].AsStringSlice())
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "worker.sandbox")
	span.RecordError(domain.Classify(domain.KindTimeout, errors.New("deadline")))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("error.kind", "timeout"))
}

func TestFileTracer_WritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	path := filepath.Join(t.TempDir(), "traces", "spans.json")
	tracer, err := telemetry.NewFileTracer("test", path)
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "worker.files")
	span.End()
	require.NoError(t, tracer.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker.files")
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "anything")
	assert.Equal(t, ctx, got)
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
	assert.NoError(t, tracer.Shutdown(ctx))
}
