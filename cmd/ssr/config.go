package main

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/ssr"
	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/logger"
	"github.com/dmitrymomot/ssr/pkg/proxy"
)

var errConfig = errors.New("ssr: invalid configuration")

// config is read from the environment; flags override it.
type config struct {
	// Proxy maps a path context to an upstream, e.g. "/api/*=http://localhost:3000".
	Proxy map[string]string `env:"SSR_PROXY" envSeparator:"," envKeyValSeparator:"="`

	Addr           string        `env:"SSR_ADDR" envDefault:":8080"`
	Mode           string        `env:"SSR_ENV" envDefault:"development"`
	Output         string        `env:"SSR_OUTPUT" envDefault:"./dist"`
	Template       string        `env:"SSR_TEMPLATE" envDefault:"./index.html"`
	NotFoundRoute  string        `env:"SSR_NOT_FOUND_ROUTE" envDefault:"/404"`
	ReloadSchedule string        `env:"SSR_RELOAD_SCHEDULE"`
	BuilderConfig  string        `env:"SSR_BUILDER_CONFIG" envDefault:"ssr.config.yaml"`
	RedisURL       string        `env:"REDIS_URL"`
	Log            logger.Config
	S3             artifact.S3Config
	CacheTTL       time.Duration `env:"SSR_CACHE_TTL" envDefault:"5m"`
	Shutdown       time.Duration `env:"SSR_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Cache          bool          `env:"SSR_CACHE" envDefault:"false"`
	ExtensionOff   bool          `env:"SSR_DISABLE_EXTENSION_FILTER"`
}

func loadConfig(environ map[string]string) (config, error) {
	var cfg config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, errors.Join(errConfig, err)
	}
	return cfg, nil
}

// bindFlags registers flags that override the environment.
func (c *config) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.Mode, "mode", c.Mode, "production or development")
	fs.StringVar(&c.Output, "output", c.Output, "build output directory")
	fs.StringVar(&c.Template, "template", c.Template, "HTML template path")
	fs.StringVar(&c.BuilderConfig, "builder-config", c.BuilderConfig, "development builder config file")
	fs.BoolVar(&c.Cache, "cache", c.Cache, "cache rendered pages in production")
	fs.StringToStringVar(&c.Proxy, "proxy", c.Proxy, "proxy rules as context=target")
}

func (c config) mode() ssr.Mode {
	if strings.EqualFold(strings.TrimSpace(c.Mode), string(ssr.ModeProduction)) {
		return ssr.ModeProduction
	}
	return ssr.ModeDevelopment
}

// proxyRules turns the flat context=target pairs into a rule set.
func (c config) proxyRules() proxy.Source {
	if len(c.Proxy) == 0 {
		return nil
	}
	t := make(proxy.Table, len(c.Proxy))
	for ctx, target := range c.Proxy {
		t[ctx] = proxy.Options{Target: target, ChangeOrigin: true}
	}
	return proxy.FromTable(t)
}
