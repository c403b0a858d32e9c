package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr"
	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/logger"
)

func writeDist(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body><!--vue-ssr-outlet--></body></html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.BundleFile), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.ManifestFile), []byte(`{}`), 0o600))
	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadConfig(map[string]string{})
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.Addr)
		require.Equal(t, "./dist", cfg.Output)
		require.Equal(t, "./index.html", cfg.Template)
		require.Equal(t, ssr.ModeDevelopment, cfg.mode())
		require.Equal(t, 30*time.Second, cfg.Shutdown)
		require.Equal(t, "json", cfg.Log.Format)
		require.Nil(t, cfg.proxyRules())
	})

	t.Run("environment", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadConfig(map[string]string{
			"SSR_ENV":       "production",
			"SSR_PROXY":     "/api/*=http://localhost:3000,/auth=http://localhost:4000",
			"SSR_CACHE":     "true",
			"SSR_S3_BUCKET": "releases",
			"LOG_LEVEL":     "debug",
		})
		require.NoError(t, err)
		require.Equal(t, ssr.ModeProduction, cfg.mode())
		require.True(t, cfg.Cache)
		require.Equal(t, "releases", cfg.S3.Bucket)
		require.Equal(t, "debug", cfg.Log.Level)
		require.Equal(t, map[string]string{
			"/api/*": "http://localhost:3000",
			"/auth":  "http://localhost:4000",
		}, cfg.Proxy)

		rules := cfg.proxyRules().Rules(httptest.NewRequest(http.MethodGet, "/", nil))
		require.Len(t, rules, 2)
		require.Equal(t, "/api", rules[0].Context)
		require.True(t, rules[0].ChangeOrigin)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		_, err := loadConfig(map[string]string{"SSR_CACHE": "maybe"})
		require.ErrorIs(t, err, errConfig)
	})
}

func TestWire_Production(t *testing.T) {
	t.Parallel()

	dir := writeDist(t)
	cfg, err := loadConfig(map[string]string{
		"SSR_ENV":      "production",
		"SSR_OUTPUT":   dir,
		"SSR_TEMPLATE": filepath.Join(dir, "index.html"),
		"SSR_CACHE":    "true",
	})
	require.NoError(t, err)

	d, err := wire(context.Background(), cfg, logger.NewNope())
	require.NoError(t, err)

	mw, err := ssr.New(d.opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mw.Shutdown(context.Background()) })
	require.True(t, mw.Config().Cache)

	h := newRouter(mw, d.checks, logger.NewNope())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `id="app"`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWire_Development(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(map[string]string{
		"SSR_ENV":            "development",
		"SSR_BUILDER_CONFIG": filepath.Join(t.TempDir(), "missing.yaml"),
		"SSR_PROXY":          "/api=http://localhost:3000",
	})
	require.NoError(t, err)

	d, err := wire(context.Background(), cfg, logger.NewNope())
	require.NoError(t, err)

	mw, err := ssr.New(d.opts...)
	require.NoError(t, err)
	require.Equal(t, ssr.ModeDevelopment, mw.Mode())
	require.NotNil(t, mw.Config().Builder)
	require.NotNil(t, mw.Config().Proxy)
}

func TestWire_InvalidS3(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(map[string]string{"SSR_ENV": "production", "SSR_S3_BUCKET": "releases"})
	require.NoError(t, err)

	_, err = wire(context.Background(), cfg, logger.NewNope())
	require.ErrorIs(t, err, artifact.ErrInvalidS3Config)
}

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	dir := writeDist(t)

	var out bytes.Buffer
	cmd := newCheckCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output", dir, "--template", filepath.Join(dir, "index.html")})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "ok: template")

	cmd = newCheckCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output", t.TempDir(), "--template", filepath.Join(dir, "index.html")})
	err := cmd.Execute()
	require.True(t, artifact.IsError(err))
}
