package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup("veil", "dev", false)
	require.NoError(t, err)
	require.NotNil(t, shutdown, "shutdown function must not be nil")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEnabled(t *testing.T) {
	shutdown, err := Setup("veil", "0.0.1", true)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx), "shutdown should complete without error")
}

func TestTracerReturnsNonNilTracer(t *testing.T) {
	tr := Tracer("github.com/veil-sh/veil/internal/test")
	assert.NotNil(t, tr)
}

func TestTracerCreatesValidSpansAfterSetup(t *testing.T) {
	shutdown, err := Setup("veil", "0.0.1", true)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	tr := Tracer("github.com/veil-sh/veil/internal/otel/test")
	_, span := tr.Start(context.Background(), "test.operation")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid(), "span context should be valid after Setup()")
	assert.True(t, span.SpanContext().HasTraceID())
	assert.True(t, span.SpanContext().HasSpanID())
}
