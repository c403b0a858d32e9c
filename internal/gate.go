package internal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/ssr/pkg/builder"
)

// gate holds development requests until the builder has produced the first
// renderer. It moves from building to ready once and never back.
type gate struct {
	builder  builder.Builder
	onUpdate builder.UpdateFunc
	fatal    func(error)
	log      *slog.Logger
	done     chan struct{}

	// result and err are written once before done is closed.
	result builder.Result
	err    error

	interval time.Duration
	once     sync.Once
	ready    atomic.Bool
}

func newGate(b builder.Builder, onUpdate builder.UpdateFunc, cfg *Config, log *slog.Logger) *gate {
	return &gate{
		builder:  b,
		onUpdate: onUpdate,
		fatal:    cfg.Fatal,
		log:      log,
		interval: cfg.WaitInterval,
		done:     make(chan struct{}),
	}
}

// start launches the build once. Later calls are no-ops.
func (g *gate) start(ctx context.Context) {
	g.once.Do(func() {
		go g.run(ctx)
	})
}

func (g *gate) run(ctx context.Context) {
	g.log.InfoContext(ctx, "development build started")

	res, err := g.builder.Build(ctx, g.onUpdate)
	if err != nil && ctx.Err() != nil {
		// Shutdown while building: release waiters without the fatal handler.
		g.err = errors.Join(ErrBuildCancelled, err)
		close(g.done)
		g.log.InfoContext(ctx, "development build cancelled")
		return
	}
	if err != nil {
		g.err = &BuildError{Err: err}
		close(g.done)
		g.log.ErrorContext(ctx, "development build failed", slog.String("error", err.Error()))
		g.fatal(g.err)
		return
	}

	if res.Hot == nil {
		res.Hot = builder.Passthrough
	}
	if res.Assets == nil {
		res.Assets = builder.Passthrough
	}
	g.result = res
	g.ready.Store(true)
	close(g.done)

	g.log.InfoContext(ctx, "development build ready")
}

// Ready reports whether the first build has succeeded.
func (g *gate) Ready() bool {
	return g.ready.Load()
}

// wait blocks until the build finishes or ctx is done. It returns the
// development middlewares, or the BuildError when the fatal handler did not
// end the process.
func (g *gate) wait(ctx context.Context) (builder.Result, error) {
	if g.ready.Load() {
		return g.result, nil
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-g.done:
			if g.err != nil {
				return builder.Result{}, g.err
			}
			return g.result, nil
		case <-ctx.Done():
			return builder.Result{}, ctx.Err()
		case <-ticker.C:
			g.log.DebugContext(ctx, "waiting for development build",
				slog.Duration("elapsed", time.Since(start)),
			)
		}
	}
}
