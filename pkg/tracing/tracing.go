package tracing

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when the caller passes an empty name.
const DefaultServiceName = "hindsight"

const defaultEndpoint = "localhost:4317"

// Version is stamped with -ldflags "-X hindsight/pkg/tracing.Version=...".
var Version = "dev"

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// InitTracer installs the global tracer provider for serviceName. With
// TRACING_ENABLED=false it returns a provider without an exporter so spans
// are still created but never shipped.
func InitTracer(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, trace.Tracer, error) {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = DefaultServiceName
	}

	if strings.EqualFold(os.Getenv("TRACING_ENABLED"), "false") {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, tp.Tracer(serviceName), nil
	}

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = defaultEndpoint
	}

	exporter, err := newTraceExporter(ctx, otelEndpoint)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Tracer(serviceName), nil
}

// sampleRatio reads TRACING_SAMPLE_RATIO, a fraction in (0, 1]. Anything else
// samples every trace.
func sampleRatio() float64 {
	raw := strings.TrimSpace(os.Getenv("TRACING_SAMPLE_RATIO"))
	if raw == "" {
		return 1
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		log.Warn("invalid TRACING_SAMPLE_RATIO, sampling everything", "value", raw)
		return 1
	}
	return ratio
}
