package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerRegistersProvider(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracer(ctx, "http://localhost:4318")
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(ctx, "noop")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	// Export fails without a collector; only the provider state matters here.
	_ = tp.Shutdown(shutdownCtx)
}
