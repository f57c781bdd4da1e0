package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordSpans installs an in-memory provider for the duration of the test.
func recordSpans(t *testing.T, cfg Config) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := newProvider(cfg, sdktrace.WithSyncer(exp))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		setTracer(noop.NewTracerProvider().Tracer("fingered"), false)
	})
	return exp
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "fingered", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 0.0, Config{SampleRate: -1}.sampleRatio())
	assert.Equal(t, 0.25, Config{SampleRate: 0.25}.sampleRatio())
	assert.Equal(t, 1.0, Config{SampleRate: 7}.sampleRatio())
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())

	// No-op spans carry no IDs.
	spanCtx, span := StartSpan(ctx, "test")
	defer span.End()
	assert.Empty(t, TraceID(spanCtx))
	assert.Empty(t, SpanID(spanCtx))
}

func TestRecordError_NoSpan(t *testing.T) {
	require.NotPanics(t, func() {
		RecordError(context.Background(), nil)
		RecordError(context.Background(), errors.New("boom"))
	})
}

func TestConnectionSpan(t *testing.T) {
	exp := recordSpans(t, DefaultConfig())
	assert.True(t, IsEnabled())

	ctx, span := StartConnectionSpan(context.Background(), "tcp", "192.0.2.1:4242", "192.0.2.1")
	assert.Len(t, TraceID(ctx), 32)
	assert.Len(t, SpanID(ctx), 16)

	span.SetAttributes(RequestKind("user"), Username("alice"), Verbose(true), Outcome("ok"), BytesWritten(7))
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, SpanConnection, got.Name)
	assert.Equal(t, trace.SpanKindServer, got.SpanKind)

	attrs := attrMap(got.Attributes)
	assert.Equal(t, "tcp", attrs[AttrTransport].AsString())
	assert.Equal(t, "192.0.2.1:4242", attrs[AttrClientAddr].AsString())
	assert.Equal(t, "192.0.2.1", attrs[AttrClientIP].AsString())
	assert.Equal(t, "user", attrs[AttrRequestKind].AsString())
	assert.Equal(t, "alice", attrs[AttrUsername].AsString())
	assert.True(t, attrs[AttrVerbose].AsBool())
	assert.Equal(t, "ok", attrs[AttrOutcome].AsString())
	assert.Equal(t, int64(7), attrs[AttrBytesWritten].AsInt64())
}

func TestConnectionSpan_NoClientIP(t *testing.T) {
	exp := recordSpans(t, DefaultConfig())

	_, span := StartConnectionSpan(context.Background(), "unix", "unix", "")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	_, ok := attrMap(spans[0].Attributes)[AttrClientIP]
	assert.False(t, ok)
}

func TestReloadSpan_RecordsError(t *testing.T) {
	exp := recordSpans(t, DefaultConfig())

	ctx, span := StartReloadSpan(context.Background(), "/etc/fingered/users.toml")
	RecordError(ctx, errors.New("line 3, column 1: bad"))
	span.SetAttributes(DirectoryUsers(2), DirectoryGeneration(5))
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, SpanReload, got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	require.Len(t, got.Events, 1)

	attrs := attrMap(got.Attributes)
	assert.Equal(t, "/etc/fingered/users.toml", attrs[AttrUsersFile].AsString())
	assert.Equal(t, int64(2), attrs[AttrDirectoryUsers].AsInt64())
	assert.Equal(t, int64(5), attrs[AttrDirectoryVersion].AsInt64())
}

func TestSampling_Never(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 0
	exp := recordSpans(t, cfg)

	_, span := StartConnectionSpan(context.Background(), "tcp", "x", "")
	span.End()
	assert.Empty(t, exp.GetSpans())
}
