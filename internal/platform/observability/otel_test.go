package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLogLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLogLevel("chatty")
	assert.Error(t, err)
}

func TestInit_WithoutExporterStillTraces(t *testing.T) {
	var logs bytes.Buffer
	instruments, shutdown, err := Init(context.Background(), Settings{
		ServiceName:   "b2b-ordering-test",
		Environment:   "test",
		LogLevel:      slog.LevelWarn,
		LogOutput:     &logs,
		TraceExporter: ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := instruments.Tracer("test").Start(context.Background(), "OrderService.CreateOrder")
	assert.True(t, span.SpanContext().IsValid())
	instruments.Logger.InfoContext(ctx, "dropped below level")
	instruments.Logger.WarnContext(ctx, "kept")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "b2b-ordering-test", record["service"])
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
}

func TestInit_RejectsUnknownExporter(t *testing.T) {
	_, _, err := Init(context.Background(), Settings{ServiceName: "svc", TraceExporter: "zipkin", LogOutput: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "zipkin")
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var i *Instruments
	assert.NotNil(t, i.Tracer("x"))
	assert.NotNil(t, i.Meter("x"))
}
