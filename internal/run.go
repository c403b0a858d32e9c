package internal

import (
	"context"
	"errors"
)

// Run serves mw on addr and blocks until SIGINT or SIGTERM.
// The middleware is started before the server listens, so a production
// renderer that cannot be built aborts startup, and it is shut down after
// the server has drained.
//
// Example:
//
//	mw, err := ssr.New(ssr.WithOutput("./dist"))
//	if err != nil {
//	    return err
//	}
//	return ssr.Run(":8080", mw, ssr.Logger(log))
func Run(addr string, mw *Middleware, opts ...RunOption) error {
	if mw == nil {
		return errors.New("ssr.Run: middleware is nil")
	}

	cfg := buildRunConfig(opts...)

	handler := cfg.handler
	if handler == nil {
		handler = mw
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         addr,
		logger:          cfg.logger,
		ready:           cfg.ready,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    append([]func(context.Context) error{mw.Start}, cfg.startupHooks...),
		shutdownHooks:   append(cfg.shutdownHooks, mw.Shutdown),
		baseCtx:         cfg.baseCtx,
	})
}
