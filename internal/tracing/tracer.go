// Package tracing provides OpenTelemetry tracing for sync runs. Spans are
// exported to stdout or an OTLP collector, or dropped when tracing is off.
package tracing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation name for quicklinks spans.
const TracerName = "github.com/five82/quicklinks"

// ExporterType selects where spans go.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// ParseExporter converts a config value into an ExporterType. Empty means none.
func ParseExporter(value string) (ExporterType, error) {
	switch ExporterType(strings.ToLower(strings.TrimSpace(value))) {
	case "", ExporterNone:
		return ExporterNone, nil
	case ExporterStdout:
		return ExporterStdout, nil
	case ExporterOTLP:
		return ExporterOTLP, nil
	}
	return "", fmt.Errorf("unsupported tracing exporter %q", value)
}

// Config holds tracing configuration.
type Config struct {
	ExporterType ExporterType
	OTLPEndpoint string    // host:port of the collector
	ServiceName  string
	Version      string
	Output       io.Writer // stdout exporter destination, defaults to os.Stdout
}

// Tracer wraps an OpenTelemetry tracer with sync-specific span helpers.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Noop returns a Tracer that records nothing.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// New creates a Tracer. ExporterNone yields a no-op tracer.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if cfg.ExporterType == "" || cfg.ExporterType == ExporterNone {
		return Noop(), nil
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	service := cfg.ServiceName
	if service == "" {
		service = "quicklinks"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(service),
			semconv.ServiceVersion(cfg.Version),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(cfg.Version)),
		provider: provider,
	}, nil
}

func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Span is a started span with sync-specific setters.
type Span struct {
	span trace.Span
}

// StartRun starts the span covering one sync run.
func (t *Tracer) StartRun(ctx context.Context, runID string) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "sync.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("sync.run_id", runID)),
	)
	return ctx, &Span{span: span}
}

// StartCollection starts a child span for one collection fetch.
func (t *Tracer) StartCollection(ctx context.Context, kind string) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "sync.collection",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("sync.collection", kind)),
	)
	return ctx, &Span{span: span}
}

// SetCount records how many entries were received.
func (s *Span) SetCount(n int) {
	s.span.SetAttributes(attribute.Int("sync.entries", n))
}

// SetFailures records how many collections failed.
func (s *Span) SetFailures(n int) {
	s.span.SetAttributes(attribute.Int("sync.failures", n))
}

// End ends the span with success status.
func (s *Span) End() {
	s.span.SetStatus(codes.Ok, "")
	s.span.End()
}

// EndWithError ends the span with error status.
func (s *Span) EndWithError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.span.End()
}
