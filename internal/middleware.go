package internal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/ssr/pkg/logger"
	"github.com/dmitrymomot/ssr/pkg/proxy"
)

// Middleware renders pages from a server bundle. It owns the renderer
// lifecycle, the development readiness gate and the proxy rules.
type Middleware struct {
	ctx    context.Context
	cfg    *Config
	log    *slog.Logger
	life   *lifecycle
	gate   *gate
	proxy  *proxy.Delegator
	cancel context.CancelFunc
}

// New resolves opts and creates the middleware. Nothing is built until
// Start or the first request.
//
// In development mode a builder is required; New returns
// ErrMissingDependency without one.
func New(opts ...Option) (*Middleware, error) {
	cfg := resolveConfig(opts...)

	if cfg.Mode == ModeDevelopment && cfg.Builder == nil {
		return nil, ErrMissingDependency
	}
	if cfg.ReloadSchedule != "" {
		if _, err := parseSchedule(cfg.ReloadSchedule); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Middleware{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		log:    logger.Component(cfg.Logger, "ssr"),
		life:   newLifecycle(cfg),
	}

	if cfg.Mode == ModeDevelopment {
		m.gate = newGate(cfg.Builder, m.life.Update, cfg, logger.Component(cfg.Logger, "gate"))
		if cfg.Proxy != nil {
			m.proxy = proxy.New(cfg.Proxy, proxy.WithLogger(logger.Component(cfg.Logger, "proxy")))
		}
	}

	return m, nil
}

// Config returns the resolved configuration.
func (m *Middleware) Config() Config {
	return *m.cfg
}

// Mode returns the operating mode.
func (m *Middleware) Mode() Mode {
	return m.cfg.Mode
}

// Start builds the production renderer and starts the reload schedule, or
// starts the development build. A production build failure is returned so
// the server never accepts traffic without a renderer.
func (m *Middleware) Start(ctx context.Context) error {
	if m.cfg.Mode == ModeDevelopment {
		m.gate.start(m.ctx)
		return nil
	}

	if _, err := m.life.Ensure(ctx); err != nil {
		return err
	}
	return m.life.startSchedule(m.ctx)
}

// Reload rebuilds the production renderer from its artifact source.
// The current renderer is kept when the rebuild fails.
func (m *Middleware) Reload(ctx context.Context) error {
	return m.life.Reload(ctx)
}

// Shutdown stops the development builder and the reload schedule. The
// render cache is closed only when New created it; a store passed with
// WithCacheStore belongs to the caller.
func (m *Middleware) Shutdown(ctx context.Context) error {
	m.cancel()

	var errs []error
	if err := m.life.stopSchedule(ctx); err != nil {
		errs = append(errs, err)
	}
	if m.cfg.ownsCache && m.cfg.CacheStore != nil {
		if err := m.cfg.CacheStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
