package tracing

import (
	"context"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "false")
	tp, tracer, err := InitTracer(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp == nil || tracer == nil {
		t.Fatal("expected tracer provider")
	}
}

func TestInitTracerEnabledWithStubExporter(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	stub := &stubExporter{}
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		stub.endpoint = endpoint
		return stub, nil
	}

	tp, tracer, err := InitTracer(context.Background(), "hindsight-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracer == nil {
		t.Fatal("expected tracer")
	}
	if stub.endpoint != "collector:4317" {
		t.Fatalf("expected endpoint to be propagated, got %s", stub.endpoint)
	}

	_, span := tracer.Start(context.Background(), "tracing.test-span")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestInitTracerDefaultEndpoint(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	var got string
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		got = endpoint
		return &stubExporter{}, nil
	}

	tp, _, err := InitTracer(context.Background(), "hindsight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tp.Shutdown(context.Background())
	if got != defaultEndpoint {
		t.Fatalf("expected %s, got %s", defaultEndpoint, got)
	}
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 1},
		{"0.25", 0.25},
		{"1", 1},
		{"0", 1},
		{"1.5", 1},
		{"half", 1},
	}
	for _, tt := range tests {
		t.Setenv("TRACING_SAMPLE_RATIO", tt.raw)
		if got := sampleRatio(); got != tt.want {
			t.Errorf("TRACING_SAMPLE_RATIO=%q: got %v, want %v", tt.raw, got, tt.want)
		}
	}
}

type stubExporter struct {
	endpoint string
}

func (s *stubExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (s *stubExporter) Shutdown(ctx context.Context) error {
	return nil
}
