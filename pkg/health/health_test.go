package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/health"
)

func ok(context.Context) error { return nil }

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("healthy plain text", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.ReadinessHandler(health.Checks{"a": ok, "b": ok})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("unhealthy json", func(t *testing.T) {
		t.Parallel()

		checks := health.Checks{
			"renderer": func(context.Context) error { return errors.New("building") },
			"redis":    ok,
		}

		req := httptest.NewRequest(http.MethodGet, "/?format=json", nil)
		rec := httptest.NewRecorder()
		health.ReadinessHandler(checks)(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp health.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, health.StatusUnhealthy, resp.Status)
		require.Equal(t, health.StatusUnhealthy, resp.Checks["renderer"].Status)
		require.Equal(t, "building", resp.Checks["renderer"].Error)
		require.Equal(t, health.StatusHealthy, resp.Checks["redis"].Status)
	})

	t.Run("accept header selects json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		health.ReadinessHandler(nil)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	resp := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(20*time.Millisecond))
	require.Equal(t, health.StatusUnhealthy, resp.Status)
	require.Contains(t, resp.Checks["slow"].Error, health.ErrCheckTimeout.Error())
}
