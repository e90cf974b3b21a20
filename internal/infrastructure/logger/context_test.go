package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTenantID(ctx, "tenant-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithExecutionID(ctx, "exec-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "exec-1", GetExecutionID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestFields(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		assert.Empty(t, Fields(context.Background()))
	})

	t.Run("trace and ids", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
		ctx = WithTenantID(ctx, "tenant-1")

		core, recorded := observer.New(zapcore.InfoLevel)
		L(WithContext(ctx, zap.New(core))).Info("depreciation run completed")

		require.Len(t, recorded.All(), 1)
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.NotContains(t, fields, "user_id")
		assert.Equal(t, traceID.String(), GetTraceID(ctx))
	})
}
