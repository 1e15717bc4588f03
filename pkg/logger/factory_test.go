package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNew_JSONWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "guardkit")),
	)
	log.Info("hello", logger.UserID("u1"), logger.Error(errors.New("boom")), logger.Error(nil))

	m := decode(t, &buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "guardkit", m["service"])
	assert.Equal(t, "u1", m["user_id"])
	assert.Equal(t, "boom", m["error"])
}

func TestNew_LevelFilter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	log := logger.New(logger.WithOutput(&buf), logger.WithLevelName("warn"))
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNew_ContextExtractor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			id, ok := ctx.Value(ctxKey{}).(string)
			return logger.RequestID(id), ok
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With(logger.Component("test")).InfoContext(ctx, "msg")

	m := decode(t, &buf)
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "test", m["component"])
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		wantDebug bool
		wantEnv   string
	}{
		{"production", false, "production"},
		{"staging", false, "staging"},
		{"development", true, "development"},
		{"", true, "development"},
	}

	for _, tt := range tests {
		t.Run(tt.wantEnv+"_"+tt.env, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := logger.New(logger.WithEnvironment(tt.env, "svc"), logger.WithOutput(&buf))
			assert.Equal(t, tt.wantDebug, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("x")
			assert.Contains(t, buf.String(), tt.wantEnv)
			assert.Contains(t, buf.String(), "svc")
		})
	}
}

func TestWithFormat_Invalid(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { logger.Discard().Error("nothing") })
}
