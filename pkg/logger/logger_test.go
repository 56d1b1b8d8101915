package logger

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "chatty", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestFromContextCarriesRequestIDOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := FromZap(zap.New(core)).WithComponent("test")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = WithLogger(ctx, base.WithContext(ctx))

	FromContext(ctx).Infow("hello", "k", 1)

	entries := logs.All()
	require.Len(t, entries, 1)

	var requestIDs int
	for _, f := range entries[0].Context {
		if f.Key == "request_id" {
			requestIDs++
		}
	}
	assert.Equal(t, 1, requestIDs)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "test", fields["component"])
	assert.EqualValues(t, 1, fields["k"])
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
