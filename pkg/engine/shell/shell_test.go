package shell_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
	"github.com/dmitrymomot/ssr/pkg/engine/shell"
)

const tmpl = `<html><head><title>{{ title }}</title></head><body><!--vue-ssr-outlet--></body></html>`

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("template without outlet", func(t *testing.T) {
		t.Parallel()

		_, err := shell.New(nil, engine.Options{Template: "<html></html>"})
		require.ErrorIs(t, err, shell.ErrNoOutlet)
	})

	t.Run("malformed manifest", func(t *testing.T) {
		t.Parallel()

		_, err := shell.New(nil, engine.Options{
			Template:       tmpl,
			ClientManifest: json.RawMessage(`{"initial": 1}`),
		})
		require.ErrorIs(t, err, shell.ErrMalformedManifest)
	})
}

func TestRenderToString(t *testing.T) {
	t.Parallel()

	t.Run("injects assets and interpolates data", func(t *testing.T) {
		t.Parallel()

		r, err := shell.New(nil, engine.Options{
			Template:       tmpl,
			ClientManifest: json.RawMessage(`{"publicPath":"/dist/","initial":["app.js","app.css"],"async":["0.js"]}`),
		})
		require.NoError(t, err)

		html, err := r.RenderToString(context.Background(), &engine.Context{
			URL:  "/home",
			Data: map[string]any{"title": "Home <1>"},
		})
		require.NoError(t, err)
		require.Equal(t,
			`<html><head><title>Home &lt;1&gt;</title>`+
				`<link rel="preload" href="/dist/app.js" as="script">`+
				`<link rel="stylesheet" href="/dist/app.css">`+
				`<link rel="prefetch" href="/dist/0.js">`+
				`</head><body>`+shell.DefaultMount+
				`<script src="/dist/app.js" defer></script></body></html>`,
			html)
	})

	t.Run("missing data renders empty", func(t *testing.T) {
		t.Parallel()

		r, err := shell.New(nil, engine.Options{Template: tmpl})
		require.NoError(t, err)

		html, err := r.RenderToString(context.Background(), &engine.Context{URL: "/"})
		require.NoError(t, err)
		require.Contains(t, html, "<title></title>")
	})

	t.Run("mount from bundle and option", func(t *testing.T) {
		t.Parallel()

		r, err := shell.New(json.RawMessage(`{"mount":"<main></main>"}`), engine.Options{Template: tmpl})
		require.NoError(t, err)
		html, err := r.RenderToString(context.Background(), &engine.Context{})
		require.NoError(t, err)
		require.Contains(t, html, "<body><main></main></body>")

		r, err = shell.New(json.RawMessage(`{"mount":"<main></main>"}`), engine.Options{Template: tmpl}, shell.WithMount("<x-app></x-app>"))
		require.NoError(t, err)
		html, err = r.RenderToString(context.Background(), &engine.Context{})
		require.NoError(t, err)
		require.Contains(t, html, "<body><x-app></x-app></body>")
	})

	t.Run("memoizes per url when a cache is set", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemory[string]()
		t.Cleanup(func() { _ = store.Close() })

		r, err := shell.Factory().NewRenderer(nil, engine.Options{Template: tmpl, Cache: store})
		require.NoError(t, err)

		first, err := r.RenderToString(context.Background(), &engine.Context{
			URL:  "/cached",
			Data: map[string]any{"title": "first"},
		})
		require.NoError(t, err)
		require.Contains(t, first, "<title>first</title>")

		second, err := r.RenderToString(context.Background(), &engine.Context{
			URL:  "/cached",
			Data: map[string]any{"title": "second"},
		})
		require.NoError(t, err)
		require.Equal(t, first, second)

		other, err := r.RenderToString(context.Background(), &engine.Context{
			URL:  "/other",
			Data: map[string]any{"title": "second"},
		})
		require.NoError(t, err)
		require.Contains(t, other, "<title>second</title>")
	})

	t.Run("no memoization without a cache", func(t *testing.T) {
		t.Parallel()

		r, err := shell.New(nil, engine.Options{Template: tmpl})
		require.NoError(t, err)

		a, err := r.RenderToString(context.Background(), &engine.Context{URL: "/p", Data: map[string]any{"title": "a"}})
		require.NoError(t, err)
		b, err := r.RenderToString(context.Background(), &engine.Context{URL: "/p", Data: map[string]any{"title": "b"}})
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}
