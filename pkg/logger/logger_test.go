package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json with extractor", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithExtractors(logger.StringFromContext(ctxKey{}, "request_id"), nil),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "rendered", slog.Int("status", 200))
		log.InfoContext(context.Background(), "no id")

		recs := decode(t, &buf)
		require.Len(t, recs, 2)
		require.Equal(t, "rendered", recs[0]["msg"])
		require.Equal(t, "req-1", recs[0]["request_id"])
		require.InDelta(t, 200, recs[0]["status"], 0)
		require.NotContains(t, recs[1], "request_id")
	})

	t.Run("level filter", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		log.Warn("kept")

		recs := decode(t, &buf)
		require.Len(t, recs, 1)
		require.Equal(t, "kept", recs[0]["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger.New(logger.WithOutput(&buf), logger.WithText()).Info("hello")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("sentry without dsn keeps stdout only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger.New(logger.WithOutput(&buf), logger.WithSentry(logger.SentryConfig{})).Error("boom")
		require.Len(t, decode(t, &buf), 1)
	})

	t.Run("extractors survive With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.Component(logger.New(
			logger.WithOutput(&buf),
			logger.WithExtractors(logger.StringFromContext(ctxKey{}, "request_id")),
		), "dispatcher")

		log.InfoContext(context.WithValue(context.Background(), ctxKey{}, "abc"), "x")

		recs := decode(t, &buf)
		require.Len(t, recs, 1)
		require.Equal(t, "dispatcher", recs[0]["component"])
		require.Equal(t, "abc", recs[0]["request_id"])
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	log := logger.FromConfig(logger.Config{Level: "error", Format: "text"})
	require.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	require.True(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("discarded")
	require.NotNil(t, logger.Component(nil, "x"))
}
