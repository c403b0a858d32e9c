package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
)

// Outlet is the placeholder the application markup replaces.
const Outlet = "<!--vue-ssr-outlet-->"

// DefaultMount is what the outlet becomes when the engine has no server markup.
const DefaultMount = `<div id="app" data-server-rendered="true"></div>`

var (
	// ErrMalformedManifest is returned when the client manifest cannot be decoded.
	ErrMalformedManifest = errors.New("shell: malformed client manifest")

	// ErrNoOutlet is returned when the template has no outlet placeholder.
	ErrNoOutlet = errors.New("shell: template has no outlet")
)

var interpolation = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

type manifest struct {
	PublicPath string   `json:"publicPath"`
	Initial    []string `json:"initial"`
	Async      []string `json:"async"`
}

type bundle struct {
	Mount string `json:"mount"`
}

// Option configures the shell engine.
type Option func(*Engine)

// WithMount replaces the default app mount element.
func WithMount(markup string) Option {
	return func(e *Engine) {
		e.mount = markup
	}
}

// WithCacheTTL sets the TTL for memoized pages.
// Default: zero, the store's own default.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.ttl = ttl
	}
}

// Engine renders the HTML shell with the client assets injected.
// The output depends on the URL only through the render context data,
// so pages are memoized per URL when a cache store is configured.
type Engine struct {
	cache cache.Cache[string]
	head  string
	tail  string
	mount string
	ttl   time.Duration
}

// Factory returns an engine.Factory producing shell renderers.
func Factory(opts ...Option) engine.Factory {
	return engine.FactoryFunc(func(b json.RawMessage, o engine.Options) (engine.Renderer, error) {
		return New(b, o, opts...)
	})
}

// New builds a shell renderer. The bundle may carry a "mount" string that
// overrides the default mount element.
func New(b json.RawMessage, o engine.Options, opts ...Option) (*Engine, error) {
	if !strings.Contains(o.Template, Outlet) {
		return nil, ErrNoOutlet
	}

	var m manifest
	if len(o.ClientManifest) > 0 {
		if err := json.Unmarshal(o.ClientManifest, &m); err != nil {
			return nil, errors.Join(ErrMalformedManifest, err)
		}
	}

	e := &Engine{
		cache: o.Cache,
		mount: DefaultMount,
	}

	var bd bundle
	if len(b) > 0 && json.Unmarshal(b, &bd) == nil && bd.Mount != "" {
		e.mount = bd.Mount
	}

	for _, opt := range opts {
		opt(e)
	}

	head, tail, _ := strings.Cut(injectAssets(o.Template, m), Outlet)
	e.head, e.tail = head, tail
	return e, nil
}

// RenderToString implements engine.Renderer.
func (e *Engine) RenderToString(ctx context.Context, rc *engine.Context) (string, error) {
	if e.cache == nil {
		return e.render(rc), nil
	}
	return cache.GetOrSet(ctx, e.cache, cacheKey(rc.URL), e.ttl, func(context.Context) (string, error) {
		return e.render(rc), nil
	})
}

func (e *Engine) render(rc *engine.Context) string {
	var b strings.Builder
	b.Grow(len(e.head) + len(e.mount) + len(e.tail))
	b.WriteString(interpolate(e.head, rc.Data))
	b.WriteString(e.mount)
	b.WriteString(interpolate(e.tail, rc.Data))
	return b.String()
}

func cacheKey(url string) string {
	return "page:" + url
}

func interpolate(s string, data map[string]any) string {
	return interpolation.ReplaceAllStringFunc(s, func(m string) string {
		key := interpolation.FindStringSubmatch(m)[1]
		v, ok := data[key]
		if !ok || v == nil {
			return ""
		}
		return html.EscapeString(fmt.Sprint(v))
	})
}

func injectAssets(tmpl string, m manifest) string {
	var head, body strings.Builder
	for _, f := range m.Initial {
		href := html.EscapeString(assetURL(m.PublicPath, f))
		switch path.Ext(f) {
		case ".js":
			fmt.Fprintf(&head, `<link rel="preload" href="%s" as="script">`, href)
			fmt.Fprintf(&body, `<script src="%s" defer></script>`, href)
		case ".css":
			fmt.Fprintf(&head, `<link rel="stylesheet" href="%s">`, href)
		}
	}
	for _, f := range m.Async {
		fmt.Fprintf(&head, `<link rel="prefetch" href="%s">`, html.EscapeString(assetURL(m.PublicPath, f)))
	}

	tmpl = insertBefore(tmpl, "</head>", head.String())
	return insertBefore(tmpl, "</body>", body.String())
}

// insertBefore places s before the last occurrence of tag, or appends it.
func insertBefore(tmpl, tag, s string) string {
	if s == "" {
		return tmpl
	}
	i := strings.LastIndex(tmpl, tag)
	if i < 0 {
		return tmpl + s
	}
	return tmpl[:i] + s + tmpl[i:]
}

func assetURL(publicPath, file string) string {
	if publicPath == "" {
		publicPath = "/"
	}
	return strings.TrimSuffix(publicPath, "/") + "/" + strings.TrimPrefix(file, "/")
}
