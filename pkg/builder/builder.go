package builder

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/ssr/pkg/artifact"
)

// UpdateFunc receives every (re)built artifact set. Returning an error
// rejects that build; the previous renderer stays in place.
type UpdateFunc func(ctx context.Context, src artifact.Source) error

// Result holds the development middlewares produced by a successful build.
// Hot is invoked before Assets on every request.
type Result struct {
	Hot    func(http.Handler) http.Handler
	Assets func(http.Handler) http.Handler
}

// Builder compiles the application during development.
//
// Build blocks until the first build has completed and onUpdate accepted it.
// Later rebuilds call onUpdate again from a background goroutine until ctx
// is cancelled.
type Builder interface {
	Build(ctx context.Context, onUpdate UpdateFunc) (Result, error)
}

// Func adapts a function to the Builder interface.
type Func func(ctx context.Context, onUpdate UpdateFunc) (Result, error)

// Build calls f(ctx, onUpdate).
func (f Func) Build(ctx context.Context, onUpdate UpdateFunc) (Result, error) {
	return f(ctx, onUpdate)
}

// Passthrough is a middleware that always continues.
func Passthrough(next http.Handler) http.Handler {
	return next
}
