package engine

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/ssr/pkg/cache"
)

// Context is the per-request data handed to the rendering engine.
// It is created for a single render call and never reused.
type Context struct {
	Request   *http.Request
	Response  http.ResponseWriter
	Data      map[string]any
	URL       string
	RequestID string
}

// Options configures a renderer built from a bundle.
type Options struct {
	// Cache is nil when caching is disabled.
	Cache cache.Cache[string]

	// Template is the HTML shell the markup is injected into.
	Template string

	// BaseDir is the directory the artifacts were loaded from.
	BaseDir string

	// ClientManifest describes the client assets needed for hydration.
	ClientManifest json.RawMessage
}

// Renderer turns a render context into markup.
type Renderer interface {
	RenderToString(ctx context.Context, rc *Context) (string, error)
}

// Factory builds a Renderer from a serialized bundle.
type Factory interface {
	NewRenderer(bundle json.RawMessage, opts Options) (Renderer, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, rc *Context) (string, error)

// RenderToString calls f(ctx, rc).
func (f RendererFunc) RenderToString(ctx context.Context, rc *Context) (string, error) {
	return f(ctx, rc)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(bundle json.RawMessage, opts Options) (Renderer, error)

// NewRenderer calls f(bundle, opts).
func (f FactoryFunc) NewRenderer(bundle json.RawMessage, opts Options) (Renderer, error) {
	return f(bundle, opts)
}
