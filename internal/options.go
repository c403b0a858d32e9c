package internal

import (
	"log/slog"
	"maps"
	"time"

	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/builder"
	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
	"github.com/dmitrymomot/ssr/pkg/proxy"
)

// Option configures the middleware.
type Option func(*Config)

// WithOutput sets the directory holding server-bundle.json and
// vue-ssr-client-manifest.json. Defaults to "./dist".
func WithOutput(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.Output = dir
		}
	}
}

// WithTemplate sets the path of the HTML shell. Defaults to "./index.html".
func WithTemplate(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.Template = path
		}
	}
}

// WithCache enables or disables render caching. Caching only takes effect in
// production; an in-memory store is used unless WithCacheStore sets one.
func WithCache(enabled bool) Option {
	return func(c *Config) {
		c.Cache = enabled
	}
}

// WithCacheStore enables render caching backed by store.
//
// Example:
//
//	ssr.WithCacheStore(cache.NewRedis[string](client, cache.StringMarshaler{}))
func WithCacheStore(store cache.Cache[string]) Option {
	return func(c *Config) {
		if store != nil {
			c.CacheStore = store
			c.Cache = true
		}
	}
}

// WithContext merges data into the Data map of every render context.
// It may be given more than once; later keys win.
func WithContext(data map[string]any) Option {
	return func(c *Config) {
		if c.Context == nil {
			c.Context = make(map[string]any, len(data))
		}
		maps.Copy(c.Context, data)
	}
}

// WithErrorHandler replaces the default 404/500 responder.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Config) {
		if h != nil {
			c.ErrorHandler = h
		}
	}
}

// WithProxy sets the proxy rules applied before rendering in development.
//
// Example:
//
//	ssr.WithProxy(proxy.FromTable(proxy.Table{
//	    "/api/*": {Target: "http://localhost:3000"},
//	}))
func WithProxy(src proxy.Source) Option {
	return func(c *Config) {
		if src != nil {
			c.Proxy = src
		}
	}
}

// WithMode overrides the mode read from SSR_ENV.
func WithMode(m Mode) Option {
	return func(c *Config) {
		if m == ModeProduction || m == ModeDevelopment {
			c.Mode = m
		}
	}
}

// WithEngine sets the rendering engine. Defaults to the template shell engine.
func WithEngine(f engine.Factory) Option {
	return func(c *Config) {
		if f != nil {
			c.Engine = f
		}
	}
}

// WithBuilder sets the development builder. Required in development mode.
func WithBuilder(b builder.Builder) Option {
	return func(c *Config) {
		if b != nil {
			c.Builder = b
		}
	}
}

// WithArtifactSource reads production artifacts from src instead of the
// output directory.
func WithArtifactSource(src artifact.Source) Option {
	return func(c *Config) {
		if src != nil {
			c.Source = src
		}
	}
}

// WithLogger sets the logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithNotFoundRoute sets where asset-shaped paths are redirected.
// Defaults to "/404".
func WithNotFoundRoute(route string) Option {
	return func(c *Config) {
		if route != "" {
			c.NotFoundRoute = route
		}
	}
}

// WithExtensionFilter toggles the redirect of paths whose last segment looks
// like a file name. Enabled by default.
func WithExtensionFilter(enabled bool) Option {
	return func(c *Config) {
		c.ExtensionFilter = enabled
	}
}

// WithReloadSchedule rebuilds the production renderer on a cron schedule
// (five fields, e.g. "*/5 * * * *"). A failed reload keeps the current renderer.
func WithReloadSchedule(expr string) Option {
	return func(c *Config) {
		c.ReloadSchedule = expr
	}
}

// WithFatalHandler replaces os.Exit(1) as the reaction to a failed
// development build.
func WithFatalHandler(fn func(error)) Option {
	return func(c *Config) {
		if fn != nil {
			c.Fatal = fn
		}
	}
}

// WithWaitInterval sets how often held requests log that the development
// build is still running. Defaults to one second.
func WithWaitInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.WaitInterval = d
		}
	}
}
