package internal

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/builder"
	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/engine"
	"github.com/dmitrymomot/ssr/pkg/engine/shell"
	"github.com/dmitrymomot/ssr/pkg/logger"
	"github.com/dmitrymomot/ssr/pkg/proxy"
)

// EnvMode is the environment variable that selects the operating mode.
const EnvMode = "SSR_ENV"

const (
	defaultOutput        = "./dist"
	defaultTemplate      = "./index.html"
	defaultNotFoundRoute = "/404"
	defaultWaitInterval  = time.Second
)

// Mode selects between a renderer built once from disk and one produced by
// a development builder.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// ModeFromEnv reads the mode from SSR_ENV. Only "production" selects
// production; anything else, including an unset variable, is development.
func ModeFromEnv() Mode {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnvMode)), string(ModeProduction)) {
		return ModeProduction
	}
	return ModeDevelopment
}

// Config is the resolved middleware configuration.
// It is built once by New and never modified afterwards.
type Config struct {
	// CacheStore receives rendered pages when Cache is true.
	CacheStore cache.Cache[string]

	// Context is merged into the Data of every render context.
	Context map[string]any

	ErrorHandler ErrorHandler
	Proxy        proxy.Source
	Engine       engine.Factory
	Builder      builder.Builder

	// Source provides the production artifacts. Defaults to Output on disk.
	Source artifact.Source

	Logger *slog.Logger

	// Fatal is called when the development build fails.
	Fatal func(error)

	Output         string
	Template       string
	Mode           Mode
	NotFoundRoute  string
	ReloadSchedule string

	// WaitInterval is how often a request held by the readiness gate logs
	// that it is still waiting.
	WaitInterval time.Duration

	Cache           bool
	ExtensionFilter bool

	// ownsCache is set when the store was created here rather than supplied
	// by the caller; only an owned store is closed on Shutdown.
	ownsCache bool
}

// resolveConfig applies opts over the defaults.
func resolveConfig(opts ...Option) *Config {
	cfg := &Config{
		Output:          defaultOutput,
		Template:        defaultTemplate,
		Mode:            ModeFromEnv(),
		NotFoundRoute:   defaultNotFoundRoute,
		ExtensionFilter: true,
		WaitInterval:    defaultWaitInterval,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNope()
	}
	if cfg.Engine == nil {
		cfg.Engine = shell.Factory()
	}
	if cfg.Source == nil {
		cfg.Source = artifact.Dir(cfg.Output)
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler(cfg.Logger)
	}
	if cfg.Fatal == nil {
		cfg.Fatal = exitOnFatal
	}
	if cfg.Cache && cfg.CacheStore == nil {
		cfg.CacheStore = cache.NewMemory[string]()
		cfg.ownsCache = true
	}
	if cfg.Context == nil {
		cfg.Context = map[string]any{}
	}

	return cfg
}

// renderCache returns the store handed to the engine. Caching only applies
// in production.
func (c *Config) renderCache() cache.Cache[string] {
	if c.Mode != ModeProduction || !c.Cache {
		return nil
	}
	return c.CacheStore
}

func exitOnFatal(error) {
	os.Exit(1)
}
