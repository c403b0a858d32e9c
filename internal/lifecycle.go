package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/ssr/pkg/artifact"
	"github.com/dmitrymomot/ssr/pkg/engine"
	"github.com/dmitrymomot/ssr/pkg/logger"
)

const buildKey = "renderer"

// handle is the current renderer. It is replaced as a whole, never mutated.
type handle struct {
	renderer engine.Renderer
	builtAt  time.Time
}

// lifecycle owns the renderer handle. It is the only writer of the handle.
type lifecycle struct {
	cfg     *Config
	log     *slog.Logger
	current atomic.Pointer[handle]
	group   singleflight.Group
	cron    *cron.Cron
}

func newLifecycle(cfg *Config) *lifecycle {
	return &lifecycle{
		cfg: cfg,
		log: logger.Component(cfg.Logger, "lifecycle"),
	}
}

// Renderer returns the current renderer, or nil before the first build.
func (l *lifecycle) Renderer() engine.Renderer {
	if h := l.current.Load(); h != nil {
		return h.renderer
	}
	return nil
}

// Build loads the artifacts from src, asks the engine for a renderer and
// swaps it in. The previous renderer stays in use until the swap and is
// kept when Build fails.
func (l *lifecycle) Build(ctx context.Context, src artifact.Source) error {
	start := time.Now()

	set, err := artifact.Load(ctx, src, artifact.TemplateFile(l.cfg.Template))
	if err != nil {
		return err
	}

	r, err := l.cfg.Engine.NewRenderer(set.Bundle, l.engineOptions(set))
	if err != nil {
		return errors.Join(ErrEngine, err)
	}
	if r == nil {
		return fmt.Errorf("%w: factory returned no renderer", ErrEngine)
	}

	l.current.Store(&handle{renderer: r, builtAt: time.Now()})
	l.log.InfoContext(ctx, "renderer built",
		slog.String("mode", string(l.cfg.Mode)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (l *lifecycle) engineOptions(set *artifact.Set) engine.Options {
	return engine.Options{
		Template:       set.Template,
		BaseDir:        set.BaseDir,
		ClientManifest: set.ClientManifest,
		Cache:          l.cfg.renderCache(),
	}
}

// Ensure returns the current renderer, building it from the configured
// source first if there is none. Concurrent callers share one build, which
// is not cancelled when the request that started it goes away.
func (l *lifecycle) Ensure(ctx context.Context) (engine.Renderer, error) {
	if r := l.Renderer(); r != nil {
		return r, nil
	}

	_, err, _ := l.group.Do(buildKey, func() (any, error) {
		if l.Renderer() != nil {
			return nil, nil
		}
		return nil, l.Build(context.WithoutCancel(ctx), l.cfg.Source)
	})
	if err != nil {
		return nil, err
	}
	return l.Renderer(), nil
}

// Reload rebuilds from the configured source regardless of the current
// handle. A failure is logged and the current renderer is kept.
func (l *lifecycle) Reload(ctx context.Context) error {
	_, err, _ := l.group.Do(buildKey, func() (any, error) {
		return nil, l.Build(ctx, l.cfg.Source)
	})
	if err != nil {
		l.log.ErrorContext(ctx, "renderer reload failed, keeping previous renderer",
			slog.String("error", err.Error()),
		)
	}
	return err
}

// Update is the callback handed to the development builder.
func (l *lifecycle) Update(ctx context.Context, src artifact.Source) error {
	return l.Build(ctx, src)
}

// BuiltAt reports when the current renderer was built.
func (l *lifecycle) BuiltAt() time.Time {
	if h := l.current.Load(); h != nil {
		return h.builtAt
	}
	return time.Time{}
}

// parseSchedule accepts standard five-field cron expressions.
func parseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}
	return s, nil
}

// startSchedule runs Reload on the configured schedule until stopSchedule.
func (l *lifecycle) startSchedule(ctx context.Context) error {
	if l.cfg.ReloadSchedule == "" || l.cron != nil {
		return nil
	}

	sched, err := parseSchedule(l.cfg.ReloadSchedule)
	if err != nil {
		return err
	}

	cl := cronLogger{log: l.log}
	l.cron = cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	l.cron.Schedule(sched, cron.FuncJob(func() {
		_ = l.Reload(ctx)
	}))
	l.cron.Start()

	l.log.InfoContext(ctx, "renderer reload scheduled", slog.String("schedule", l.cfg.ReloadSchedule))
	return nil
}

// stopSchedule stops the scheduler and waits for a running reload.
func (l *lifecycle) stopSchedule(ctx context.Context) error {
	if l.cron == nil {
		return nil
	}
	select {
	case <-l.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	log *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
