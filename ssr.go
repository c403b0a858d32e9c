package ssr

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/ssr/internal"
	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/builder"
	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
	"github.com/dmitrymomot/ssr/pkg/proxy"
)

// Type aliases - public API
type (
	// Middleware renders pages from a server bundle.
	Middleware = internal.Middleware

	// Config is the resolved middleware configuration.
	Config = internal.Config

	// Option configures the middleware.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Mode selects production or development behavior.
	Mode = internal.Mode

	// RequestContext is the normalized calling convention of the dispatcher.
	RequestContext = internal.RequestContext

	// ErrorHandler receives render failures.
	ErrorHandler = internal.ErrorHandler

	// Outcome is the result of rendering one request.
	Outcome = internal.Outcome

	// OutcomeKind tags an Outcome.
	OutcomeKind = internal.OutcomeKind

	// ResponseWriter tracks whether a response has started.
	ResponseWriter = internal.ResponseWriter

	// BuildError reports a failed development build.
	BuildError = internal.BuildError

	// RenderError reports a failed render of a single request.
	RenderError = internal.RenderError

	// ArtifactError reports a missing or malformed template or artifact.
	ArtifactError = artifact.Error
)

// Modes
const (
	ModeProduction  = internal.ModeProduction
	ModeDevelopment = internal.ModeDevelopment

	// EnvMode is the environment variable that selects the mode.
	EnvMode = internal.EnvMode
)

// Render outcomes
const (
	OutcomeRendered = internal.OutcomeRendered
	OutcomeHandled  = internal.OutcomeHandled
	OutcomeEmpty    = internal.OutcomeEmpty
	OutcomeRedirect = internal.OutcomeRedirect
	OutcomeFailure  = internal.OutcomeFailure
)

// Errors
var (
	ErrMissingDependency = internal.ErrMissingDependency
	ErrEngine            = internal.ErrEngine
	ErrNoRenderer        = internal.ErrNoRenderer
	ErrInvalidSchedule   = internal.ErrInvalidSchedule
	ErrBuildCancelled    = internal.ErrBuildCancelled
	ErrNotReady          = internal.ErrNotReady
)

// Constructors

// New creates the middleware.
// In development mode a builder must be configured with WithBuilder.
//
// Example:
//
//	mw, err := ssr.New(
//	    ssr.WithOutput("./dist"),
//	    ssr.WithTemplate("./index.html"),
//	    ssr.WithContext(map[string]any{"title": "Shop"}),
//	)
//	if err != nil {
//	    return err
//	}
//	r.Handle("/*", mw)
func New(opts ...Option) (*Middleware, error) {
	return internal.New(opts...)
}

// Run serves mw on addr and blocks until SIGINT or SIGTERM.
// The middleware is started before listening and shut down after draining.
//
// Example:
//
//	err := ssr.Run(":8080", mw,
//	    ssr.Handler(router),
//	    ssr.Logger(log),
//	)
func Run(addr string, mw *Middleware, opts ...RunOption) error {
	return internal.Run(addr, mw, opts...)
}

// ModeFromEnv reads the mode from SSR_ENV.
func ModeFromEnv() Mode {
	return internal.ModeFromEnv()
}

// DefaultErrorHandler responds 404 or 500 and logs failures to log.
func DefaultErrorHandler(log *slog.Logger) ErrorHandler {
	return internal.DefaultErrorHandler(log)
}

// Middleware options

// WithOutput sets the directory holding the build artifacts.
// Defaults to "./dist".
func WithOutput(dir string) Option {
	return internal.WithOutput(dir)
}

// WithTemplate sets the path of the HTML shell.
// Defaults to "./index.html".
func WithTemplate(path string) Option {
	return internal.WithTemplate(path)
}

// WithCache enables render caching in production with an in-memory store.
func WithCache(enabled bool) Option {
	return internal.WithCache(enabled)
}

// WithCacheStore enables render caching in production backed by store.
func WithCacheStore(store cache.Cache[string]) Option {
	return internal.WithCacheStore(store)
}

// WithContext merges data into every render context.
func WithContext(data map[string]any) Option {
	return internal.WithContext(data)
}

// WithErrorHandler replaces the default 404/500 responder.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithProxy sets the proxy rules applied before rendering in development.
func WithProxy(src proxy.Source) Option {
	return internal.WithProxy(src)
}

// WithMode overrides the mode read from SSR_ENV.
func WithMode(m Mode) Option {
	return internal.WithMode(m)
}

// WithEngine sets the rendering engine.
func WithEngine(f engine.Factory) Option {
	return internal.WithEngine(f)
}

// WithBuilder sets the development builder.
func WithBuilder(b builder.Builder) Option {
	return internal.WithBuilder(b)
}

// WithArtifactSource reads production artifacts from src.
//
// Example:
//
//	src, err := artifact.NewS3(artifact.S3Config{Bucket: "releases", Prefix: "web/v42"})
//	ssr.WithArtifactSource(src)
func WithArtifactSource(src artifact.Source) Option {
	return internal.WithArtifactSource(src)
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithNotFoundRoute sets where asset-shaped paths are redirected.
func WithNotFoundRoute(route string) Option {
	return internal.WithNotFoundRoute(route)
}

// WithExtensionFilter toggles the redirect of asset-shaped paths.
func WithExtensionFilter(enabled bool) Option {
	return internal.WithExtensionFilter(enabled)
}

// WithReloadSchedule rebuilds the production renderer on a cron schedule.
func WithReloadSchedule(expr string) Option {
	return internal.WithReloadSchedule(expr)
}

// WithFatalHandler replaces os.Exit(1) after a failed development build.
func WithFatalHandler(fn func(error)) Option {
	return internal.WithFatalHandler(fn)
}

// WithWaitInterval sets how often held requests log while the development
// build runs.
func WithWaitInterval(d time.Duration) Option {
	return internal.WithWaitInterval(d)
}

// Run options

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server listens.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Handler serves h instead of the bare middleware.
func Handler(h http.Handler) RunOption {
	return internal.Handler(h)
}

// WithBaseContext sets the base context for signal handling.
func WithBaseContext(ctx context.Context) RunOption {
	return internal.WithBaseContext(ctx)
}

// NotifyListening receives the bound address once the server listens.
func NotifyListening(ch chan<- net.Addr) RunOption {
	return internal.NotifyListening(ch)
}

// Error helpers

// IsBuildError reports whether err wraps a BuildError.
func IsBuildError(err error) bool {
	return internal.IsBuildError(err)
}

// AsRenderError extracts the RenderError from err if present.
func AsRenderError(err error) (*RenderError, bool) {
	return internal.AsRenderError(err)
}

// IsArtifactError reports whether err wraps an ArtifactError.
func IsArtifactError(err error) bool {
	return artifact.IsError(err)
}
