package main

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ssr"
	"github.com/dmitrymomot/ssr/middlewares"
	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/builder"
	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/health"
	"github.com/dmitrymomot/ssr/pkg/logger"
	"github.com/dmitrymomot/ssr/pkg/redis"
)

func newServeCmd() *cobra.Command {
	cfg, cfgErr := loadConfig(nil)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render pages over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cfg.bindFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg config) error {
	log := logger.FromConfig(cfg.Log, middlewares.RequestIDExtractor())

	d, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}

	mw, err := ssr.New(d.opts...)
	if err != nil {
		return errors.Join(err, d.cleanup(ctx))
	}

	return ssr.Run(cfg.Addr, mw,
		ssr.Handler(newRouter(mw, d.checks, log)),
		ssr.Logger(log),
		ssr.ShutdownTimeout(cfg.Shutdown),
		ssr.WithBaseContext(ctx),
		ssr.ShutdownHook(d.cleanup),
	)
}

// deps is what the config wires into the middleware and the router.
type deps struct {
	checks  health.Checks
	cleanup func(context.Context) error
	opts    []ssr.Option
}

// wire translates the config into middleware options, opening the
// connections it needs on the way.
func wire(ctx context.Context, cfg config, log *slog.Logger) (*deps, error) {
	d := &deps{
		checks:  health.Checks{},
		cleanup: func(context.Context) error { return nil },
		opts: []ssr.Option{
			ssr.WithMode(cfg.mode()),
			ssr.WithOutput(cfg.Output),
			ssr.WithTemplate(cfg.Template),
			ssr.WithNotFoundRoute(cfg.NotFoundRoute),
			ssr.WithExtensionFilter(!cfg.ExtensionOff),
			ssr.WithReloadSchedule(cfg.ReloadSchedule),
			ssr.WithLogger(log),
		},
	}

	if cfg.Cache {
		if cfg.RedisURL == "" {
			d.opts = append(d.opts, ssr.WithCacheStore(cache.NewMemory[string](cache.WithDefaultTTL(cfg.CacheTTL))))
		} else {
			client, err := redis.Open(ctx, cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			d.cleanup = redis.Shutdown(client)
			d.checks["redis"] = redis.Healthcheck(client)
			d.opts = append(d.opts, ssr.WithCacheStore(cache.NewRedis[string](client, cache.StringMarshaler{},
				cache.WithPrefix("ssr"),
				cache.WithRedisDefaultTTL(cfg.CacheTTL),
			)))
		}
	}

	if cfg.S3.Bucket != "" {
		src, err := artifact.NewS3(cfg.S3)
		if err != nil {
			return nil, errors.Join(err, d.cleanup(ctx))
		}
		d.opts = append(d.opts, ssr.WithArtifactSource(src))
		log.Info("reading artifacts from s3",
			slog.String("bucket", cfg.S3.Bucket),
			slog.String("prefix", cfg.S3.Prefix),
		)
	}

	if cfg.mode() == ssr.ModeDevelopment {
		bcfg, err := builder.LoadConfig(cfg.BuilderConfig)
		if err != nil {
			return nil, errors.Join(err, d.cleanup(ctx))
		}
		if bcfg.Output == builder.DefaultConfig().Output {
			bcfg.Output = cfg.Output
		}
		d.opts = append(d.opts,
			ssr.WithBuilder(builder.NewWatcher(bcfg, builder.WithLogger(logger.Component(log, "builder")))),
			ssr.WithProxy(cfg.proxyRules()),
		)
	}

	return d, nil
}

func newRouter(mw *ssr.Middleware, checks health.Checks, log *slog.Logger) http.Handler {
	all := mw.Checks()
	maps.Copy(all, checks)

	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.Recover(middlewares.WithRecoverLogger(log)),
	)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(all,
		health.WithLogger(log),
		health.WithTimeout(2*time.Second),
	))
	r.Handle("/*", mw)
	return r
}
