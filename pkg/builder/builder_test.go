package builder_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/builder"
)

var continued = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func writeArtifacts(t *testing.T, dir, bundle string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.BundleFile), []byte(bundle), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.ManifestFile), []byte(`{}`), 0o600))
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := builder.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		require.Equal(t, builder.DefaultConfig(), cfg)
	})

	t.Run("reads yaml and fills defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ssr.config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"output: ./build\npublic_path: assets\ncommand: [npm, run, watch]\ndebounce: 1s\n",
		), 0o600))

		cfg, err := builder.LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "./build", cfg.Output)
		require.Equal(t, "/assets/", cfg.PublicPath)
		require.Equal(t, []string{"npm", "run", "watch"}, cfg.Command)
		require.Equal(t, time.Second, cfg.Debounce)
		require.Equal(t, "/__ssr/reload", cfg.ReloadPath)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ssr.config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output: [\n"), 0o600))

		_, err := builder.LoadConfig(path)
		require.ErrorIs(t, err, builder.ErrConfig)
	})
}

func TestAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "img"), 0o700))

	h := builder.Assets(dir, "/dist/")(continued)

	tests := []struct {
		name string
		path string
		code int
		body string
	}{
		{"existing file", "/dist/app.js", http.StatusOK, "console.log(1)"},
		{"missing file continues", "/dist/missing.js", http.StatusTeapot, ""},
		{"directory continues", "/dist/img", http.StatusTeapot, ""},
		{"outside prefix continues", "/app.js", http.StatusTeapot, ""},
		{"traversal continues", "/dist/../../etc/passwd", http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestWatcher_Build(t *testing.T) {
	t.Parallel()

	t.Run("waits for artifacts then reloads on change", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		w := builder.NewWatcher(builder.Config{
			Output:       dir,
			Debounce:     20 * time.Millisecond,
			PollInterval: 10 * time.Millisecond,
		})

		var updates atomic.Int32
		onUpdate := func(_ context.Context, src artifact.Source) error {
			data, err := src.ReadFile(context.Background(), artifact.BundleFile)
			if err != nil {
				return err
			}
			if strings.Contains(string(data), "broken") {
				return errors.New("broken bundle")
			}
			updates.Add(1)
			return nil
		}

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, artifact.ManifestFile), []byte(`{}`), 0o600)
			_ = os.WriteFile(filepath.Join(dir, artifact.BundleFile), []byte(`{"v":1}`), 0o600)
		}()

		res, err := w.Build(ctx, onUpdate)
		require.NoError(t, err)
		require.NotNil(t, res.Hot)
		require.NotNil(t, res.Assets)
		require.Equal(t, int32(1), updates.Load())

		srv := httptest.NewServer(res.Hot(res.Assets(continued)))
		t.Cleanup(srv.Close)

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/__ssr/reload", nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		require.Eventually(t, func() bool { return w.Clients() == 1 }, time.Second, 10*time.Millisecond)

		writeArtifacts(t, dir, `{"v":2}`)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, builder.ReloadMessage, string(msg))
		require.GreaterOrEqual(t, updates.Load(), int32(2))

		// A failing rebuild keeps the watcher alive and sends no reload.
		before := updates.Load()
		writeArtifacts(t, dir, `{"broken":true}`)
		time.Sleep(200 * time.Millisecond)
		require.Equal(t, before, updates.Load())

		resp, err := http.Get(srv.URL + "/__ssr/reload.js")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Type"), "javascript")

		resp2, err := http.Get(srv.URL + "/page")
		require.NoError(t, err)
		defer resp2.Body.Close()
		require.Equal(t, http.StatusTeapot, resp2.StatusCode)
	})

	t.Run("first update failure fails the build", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeArtifacts(t, dir, `{}`)

		boom := errors.New("boom")
		w := builder.NewWatcher(builder.Config{Output: dir})
		_, err := w.Build(context.Background(), func(context.Context, artifact.Source) error { return boom })
		require.ErrorIs(t, err, boom)
	})

	t.Run("start timeout", func(t *testing.T) {
		t.Parallel()

		w := builder.NewWatcher(builder.Config{
			Output:       t.TempDir(),
			PollInterval: 5 * time.Millisecond,
			StartTimeout: 30 * time.Millisecond,
		})
		_, err := w.Build(context.Background(), func(context.Context, artifact.Source) error { return nil })
		require.ErrorIs(t, err, builder.ErrTimeout)
	})

	t.Run("command exiting before first build", func(t *testing.T) {
		t.Parallel()

		w := builder.NewWatcher(builder.Config{
			Output:       t.TempDir(),
			PollInterval: 5 * time.Millisecond,
			Command:      []string{"sh", "-c", "exit 3"},
		}, builder.WithOutput(&strings.Builder{}))
		_, err := w.Build(context.Background(), func(context.Context, artifact.Source) error { return nil })
		require.ErrorIs(t, err, builder.ErrCommandExited)
	})

	t.Run("one-shot command finishing between polls", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		w := builder.NewWatcher(builder.Config{
			Output:       dir,
			Dir:          dir,
			PollInterval: time.Minute,
			Command: []string{"sh", "-c",
				"echo '{}' > " + artifact.BundleFile + "; echo '{}' > " + artifact.ManifestFile},
		}, builder.WithOutput(&strings.Builder{}))

		var updates atomic.Int32
		res, err := w.Build(ctx, func(context.Context, artifact.Source) error {
			updates.Add(1)
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, res.Hot)
		require.Equal(t, int32(1), updates.Load())
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := builder.NewWatcher(builder.Config{Output: t.TempDir()})
		_, err := w.Build(ctx, func(context.Context, artifact.Source) error { return nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFunc(t *testing.T) {
	t.Parallel()

	b := builder.Func(func(ctx context.Context, onUpdate builder.UpdateFunc) (builder.Result, error) {
		if err := onUpdate(ctx, artifact.Dir(".")); err != nil {
			return builder.Result{}, err
		}
		return builder.Result{Hot: builder.Passthrough, Assets: builder.Passthrough}, nil
	})

	res, err := b.Build(context.Background(), func(context.Context, artifact.Source) error { return nil })
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	res.Hot(res.Assets(continued)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
