// Package ssr provides an HTTP middleware that serves server-rendered pages
// from a pre-built application bundle.
//
// The build output directory holds two artifacts, server-bundle.json and
// vue-ssr-client-manifest.json. Together with an HTML template they are turned
// into a renderer by an [engine.Factory]; every GET or HEAD request is then
// rendered into the template and written as text/html.
//
// # Modes
//
// The SSR_ENV environment variable selects the mode; WithMode overrides it.
//
// In production the renderer is built once, either by [Run] before the server
// starts listening or lazily by the first request. Concurrent first requests
// share a single build. WithReloadSchedule rebuilds it periodically, keeping
// the current renderer if a rebuild fails.
//
// In development a [builder.Builder] produces the artifacts asynchronously.
// Requests that arrive before the first build are held until it finishes,
// then pass through the live-reload and asset middlewares the builder
// returned, then through the optional proxy rules, and are rendered last.
// A failed development build is fatal.
//
// # Quick Start
//
//	mw, err := ssr.New(
//	    ssr.WithOutput("./dist"),
//	    ssr.WithTemplate("./index.html"),
//	    ssr.WithBuilder(builder.NewWatcher(builder.DefaultConfig())),
//	    ssr.WithProxy(proxy.FromTable(proxy.Table{
//	        "/api/*": {Target: "http://localhost:3000"},
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := chi.NewRouter()
//	r.Use(middlewares.RequestID())
//	r.Get("/health/ready", health.ReadinessHandler(mw.Checks()))
//	r.Handle("/*", mw)
//
//	if err := ssr.Run(":8080", mw, ssr.Handler(r)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Methods other than GET and HEAD get 405 with an Allow header. Paths whose
// last segment looks like a file name are redirected to the not-found route
// with the original URL in the url query parameter. Render failures go to the
// [ErrorHandler]; the default one responds 404 for [engine.ErrNotFound] and
// 500 otherwise. An engine error carrying a redirect URL becomes a 302 and is
// not reported.
package ssr
