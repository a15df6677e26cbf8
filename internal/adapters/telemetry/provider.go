// Package telemetry implements ports.Tracer with OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
)

// InstrumentationName names the tracer used for engine spans.
const InstrumentationName = "go.trai.ch/pkgdeck"

// OTelTracer implements ports.Tracer on top of the global tracer provider.
type OTelTracer struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NewOTelTracer creates a tracer from the global provider.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{
		tracer:   otel.Tracer(name),
		shutdown: func(context.Context) error { return nil },
	}
}

// NewFileTracer installs a provider that exports finished spans as JSON to path.
func NewFileTracer(name, path string) (*OTelTracer, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create trace directory"), "path", path)
	}
	//nolint:gosec // path comes from the user's config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open trace file"), "path", path)
	}
	return newExportingTracer(name, f)
}

func newExportingTracer(name string, w io.WriteCloser) (*OTelTracer, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		_ = w.Close()
		return nil, zerr.Wrap(err, "failed to create trace exporter")
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return &OTelTracer{
		tracer: tp.Tracer(name),
		shutdown: func(ctx context.Context) error {
			err := tp.Shutdown(ctx)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}, nil
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OTelSpan{span: span}
}

// Shutdown flushes pending spans.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span trace.Span
}

// End completes the span.
func (s *OTelSpan) End() {
	s.span.End()
}

// RecordError records an error and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		s.span.SetAttributes(attribute.String("error.kind", kind.String()))
	}
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case uint64:
		s.span.SetAttributes(attribute.Int64(key, int64(v))) //nolint:gosec // ids fit in int64
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}
