package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFromContextCarriesRequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "info")

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))

	FromContext(ctx).Info("handled")
	assert.Contains(t, buf.String(), "req-123")
	assert.Contains(t, buf.String(), "handled")
}
