// Package middlewares provides the standard net/http middlewares that sit in
// front of the SSR handler.
//
// RequestID assigns every request an ID, taken from X-Request-ID when an
// upstream proxy set one and generated otherwise. The ID reaches the renderer
// through the render context and the logs through RequestIDExtractor:
//
//	log := logger.New(logger.WithExtractors(middlewares.RequestIDExtractor()))
//	r.Use(middlewares.RequestID(), middlewares.Recover(middlewares.WithRecoverLogger(log)))
//
// Recover converts panics into a logged PanicError and a 500 response,
// unless the response had already started.
package middlewares
