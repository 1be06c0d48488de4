package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTelemetry(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), "cavein-test",
		otlptracehttp.WithEndpoint("127.0.0.1:1"),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithTimeout(100*time.Millisecond),
	)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, isSDK)

	// Спанов нет, поэтому завершение не ждёт недоступный коллектор
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestNoopShutdown(t *testing.T) {
	assert.NoError(t, NoopShutdown(context.Background()))
}
