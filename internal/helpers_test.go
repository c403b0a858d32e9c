package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/engine"
)

// fakeEngine counts builds and renders and lets tests script the markup.
type fakeEngine struct {
	render  func(ctx context.Context, rc *engine.Context) (string, error)
	last    engine.Options
	bundles []string
	mu      sync.Mutex
	builds  atomic.Int32
	renders atomic.Int32
}

func newFakeEngine(render func(ctx context.Context, rc *engine.Context) (string, error)) *fakeEngine {
	if render == nil {
		render = func(_ context.Context, rc *engine.Context) (string, error) {
			return "<p>" + rc.URL + "</p>", nil
		}
	}
	return &fakeEngine{render: render}
}

func (f *fakeEngine) NewRenderer(bundle json.RawMessage, opts engine.Options) (engine.Renderer, error) {
	f.builds.Add(1)
	f.mu.Lock()
	f.last = opts
	f.bundles = append(f.bundles, string(bundle))
	f.mu.Unlock()

	return engine.RendererFunc(func(ctx context.Context, rc *engine.Context) (string, error) {
		f.renders.Add(1)
		return f.render(ctx, rc)
	}), nil
}

func (f *fakeEngine) options() engine.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// writeDist creates a build output directory with valid artifacts and a
// template, returning both paths.
func writeDist(t *testing.T) (dir, template string) {
	t.Helper()

	dir = t.TempDir()
	template = filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(template, []byte("<html><body><!--vue-ssr-outlet--></body></html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.BundleFile), []byte(`{"entry":"main.js"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.ManifestFile), []byte(`{"initial":[],"async":[]}`), 0o600))
	return dir, template
}

func newProduction(t *testing.T, eng engine.Factory, opts ...Option) *Middleware {
	t.Helper()

	dir, tmpl := writeDist(t)
	base := []Option{
		WithMode(ModeProduction),
		WithOutput(dir),
		WithTemplate(tmpl),
		WithEngine(eng),
	}
	m, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

// reported records error handler calls.
type reported struct {
	errs     []error
	mu       sync.Mutex
	withheld atomic.Int32
}

func (rp *reported) handler() ErrorHandler {
	return func(w http.ResponseWriter, _ *http.Request, err error, _ func()) {
		rp.mu.Lock()
		rp.errs = append(rp.errs, err)
		rp.mu.Unlock()
		if w == nil {
			rp.withheld.Add(1)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rp *reported) all() []error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]error(nil), rp.errs...)
}
