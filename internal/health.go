package internal

import (
	"context"
	"errors"

	"github.com/dmitrymomot/ssr/pkg/health"
)

// ErrNotReady is returned by the readiness check until a renderer exists.
var ErrNotReady = errors.New("ssr: renderer not ready")

// Ready reports whether requests can be rendered without waiting.
func (m *Middleware) Ready(context.Context) error {
	if m.gate != nil && !m.gate.Ready() {
		return ErrNotReady
	}
	if m.life.Renderer() == nil {
		return ErrNotReady
	}
	return nil
}

// Checks returns the readiness checks of the middleware.
//
// Example:
//
//	r.Get("/health/ready", health.ReadinessHandler(mw.Checks()))
func (m *Middleware) Checks() health.Checks {
	return health.Checks{"renderer": m.Ready}
}
