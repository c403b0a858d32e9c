// Package internal implements the server-side rendering middleware.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/ssr" instead, which re-exports the public API.
//
// # Core Types
//
//   - Middleware: Dispatches requests to the renderer, the development
//     middlewares, or the proxy, depending on the mode
//   - Config: Resolved settings, built from Option values by New
//   - RequestContext: The writer, request and optional continuation handed to Dispatch
//   - Outcome: What a single render produced (rendered, handled, empty, redirect, failure)
//   - ErrorHandler: Receives failures along with the request and a continuation
//   - ResponseWriter: Tracks whether anything has been written to the client
//
// # Modes
//
// Production loads the template and the build artifacts once, lazily on the
// first request (or eagerly from Start), and renders every request with the
// same renderer. A cron schedule may rebuild it periodically; a failed rebuild
// keeps the previous renderer.
//
// Development hands artifact production to a builder. Requests arriving
// before the first build completes are held until it does. After that the
// builder's hot-reload and asset middlewares run first, then the proxy rules,
// and only requests nobody else answered are rendered.
//
// # Dispatch
//
// Only GET and HEAD are rendered; other methods get 405. Paths whose last
// segment looks like a file name are redirected to the not-found route
// unless the extension filter is disabled:
//
//	/static/app.js  ->  302 /404?url=%2Fstatic%2Fapp.js
//
// # Server Runtime
//
// Run serves a Middleware with graceful shutdown, running startup hooks
// before listening and shutdown hooks after the server drains:
//
//	err := internal.Run(":8080", mw,
//	    internal.Logger(log),
//	    internal.ShutdownTimeout(10*time.Second),
//	)
package internal
