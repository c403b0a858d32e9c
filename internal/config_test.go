package internal

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
)

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  Mode
	}{
		{"production", ModeProduction},
		{" Production ", ModeProduction},
		{"", ModeDevelopment},
		{"staging", ModeDevelopment},
	}

	for _, tt := range tests {
		t.Setenv(EnvMode, tt.value)
		require.Equal(t, tt.want, ModeFromEnv(), tt.value)
	}
}

func TestResolveConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvMode, "")

		cfg := resolveConfig()
		require.Equal(t, "./dist", cfg.Output)
		require.Equal(t, "./index.html", cfg.Template)
		require.Equal(t, "/404", cfg.NotFoundRoute)
		require.Equal(t, ModeDevelopment, cfg.Mode)
		require.Equal(t, time.Second, cfg.WaitInterval)
		require.True(t, cfg.ExtensionFilter)
		require.False(t, cfg.Cache)
		require.Nil(t, cfg.CacheStore)
		require.NotNil(t, cfg.Context)
		require.NotNil(t, cfg.Logger)
		require.NotNil(t, cfg.Engine)
		require.NotNil(t, cfg.Source)
		require.NotNil(t, cfg.ErrorHandler)
		require.NotNil(t, cfg.Fatal)
	})

	t.Run("options override", func(t *testing.T) {
		store := cache.NewMemory[string]()
		cfg := resolveConfig(
			WithOutput("./build"),
			WithTemplate("./public/index.html"),
			WithMode(ModeProduction),
			WithCacheStore(store),
			WithContext(map[string]any{"a": 1}),
			WithContext(map[string]any{"b": 2, "a": 3}),
			WithNotFoundRoute("/not-found"),
			WithExtensionFilter(false),
			WithWaitInterval(50*time.Millisecond),
			WithOutput(""),
		)

		require.Equal(t, "./build", cfg.Output)
		require.Equal(t, "./public/index.html", cfg.Template)
		require.Equal(t, ModeProduction, cfg.Mode)
		require.True(t, cfg.Cache)
		require.Same(t, store, cfg.CacheStore)
		require.Equal(t, map[string]any{"a": 3, "b": 2}, cfg.Context)
		require.Equal(t, "/not-found", cfg.NotFoundRoute)
		require.False(t, cfg.ExtensionFilter)
		require.Equal(t, 50*time.Millisecond, cfg.WaitInterval)
		require.Same(t, store, cfg.renderCache())
	})

	t.Run("cache only applies in production", func(t *testing.T) {
		cfg := resolveConfig(WithMode(ModeDevelopment), WithCache(true))
		require.NotNil(t, cfg.CacheStore)
		require.Nil(t, cfg.renderCache())

		cfg = resolveConfig(WithMode(ModeProduction), WithCache(true))
		require.NotNil(t, cfg.renderCache())
	})

	t.Run("unknown mode ignored", func(t *testing.T) {
		t.Setenv(EnvMode, "production")
		require.Equal(t, ModeProduction, resolveConfig(WithMode("staging")).Mode)
	})
}

func TestDefaultErrorHandler(t *testing.T) {
	t.Parallel()

	newLog := func() (*slog.Logger, *bytes.Buffer) {
		var buf bytes.Buffer
		return slog.New(slog.NewTextHandler(&buf, nil)), &buf
	}

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		log, buf := newLog()
		rec := httptest.NewRecorder()
		DefaultErrorHandler(log)(rec, httptest.NewRequest(http.MethodGet, "/nope", nil), &RenderError{Err: engine.ErrNotFound, URL: "/nope"}, nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "404 | Page Not Found", rec.Body.String())
		require.Empty(t, buf.String())
	})

	t.Run("favicon only logged", func(t *testing.T) {
		t.Parallel()

		log, buf := newLog()
		rec := httptest.NewRecorder()
		DefaultErrorHandler(log)(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil), errors.New("no route"), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Zero(t, rec.Body.Len())
		require.Contains(t, buf.String(), "page not found")
	})

	t.Run("internal error", func(t *testing.T) {
		t.Parallel()

		log, buf := newLog()
		rec := httptest.NewRecorder()
		DefaultErrorHandler(log)(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("template exploded"), nil)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "500 | Internal Server Error", rec.Body.String())
		require.Contains(t, buf.String(), "template exploded")
		require.Contains(t, buf.String(), "url=/x")
	})

	t.Run("withheld writer is only logged", func(t *testing.T) {
		t.Parallel()

		log, buf := newLog()
		DefaultErrorHandler(log)(nil, httptest.NewRequest(http.MethodGet, "/x", nil), engine.ErrNotFound, nil)
		require.Contains(t, buf.String(), "error during render")
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	wrapped := errors.Join(errors.New("outer"), &BuildError{Err: cause})
	require.True(t, IsBuildError(wrapped))
	be, ok := AsBuildError(wrapped)
	require.True(t, ok)
	require.ErrorIs(t, be, cause)

	re := &RenderError{Err: cause, URL: "/a", Redirect: "/b"}
	require.Contains(t, re.Error(), "/b")
	require.True(t, IsRenderError(re))
	require.False(t, IsRenderError(cause))

	_, ok = AsRenderError(cause)
	require.False(t, ok)

}
