package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "InvoicingService", "Calculate",
		WithAttribute("tenant.id", int64(7)),
		WithSpanKind(trace.SpanKindServer))
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, "project.id", int64(3), "invoice.items", 4, 42, "skipped")
	AddEvent(span, "lines.built", "count", 4)
	SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "InvoicingService.Calculate", got.Name())
	assert.Equal(t, trace.SpanKindServer, got.SpanKind())
	assert.Equal(t, codes.Ok, got.Status().Code)

	attrs := attrMap(got.Attributes())
	assert.Equal(t, int64(7), attrs["tenant.id"].AsInt64())
	assert.Equal(t, int64(3), attrs["project.id"].AsInt64())
	assert.Equal(t, int64(4), attrs["invoice.items"].AsInt64())
	assert.Len(t, attrs, 3)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "lines.built", got.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	recorder := withSpanRecorder(t)

	_, span := StartSpan(context.Background(), "invoicing.materialize")
	RecordError(span, nil)
	RecordError(span, errors.New("sequence unavailable"))
	span.End()

	got := recorder.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "sequence unavailable", got.Status().Description)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "a", 1)
		AddEvent(nil, "e")
		RecordError(nil, errors.New("x"))
		SetOK(nil)
	})
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.STRING, toAttribute("k", "v").Value.Type())
	assert.Equal(t, attribute.INT64, toAttribute("k", 1).Value.Type())
	assert.Equal(t, attribute.FLOAT64, toAttribute("k", 1.5).Value.Type())
	assert.Equal(t, attribute.BOOL, toAttribute("k", true).Value.Type())
	assert.Equal(t, attribute.STRINGSLICE, toAttribute("k", []string{"a"}).Value.Type())
	assert.Equal(t, "{1 2}", toAttribute("k", struct{ A, B int }{1, 2}).Value.AsString())
	assert.Equal(t, "476.1", toAttribute("invoice.total", decimal.RequireFromString("476.10")).Value.AsString())
	assert.Equal(t, "2024-06-28T00:00:00Z",
		toAttribute("range.start", time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)).Value.AsString())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
