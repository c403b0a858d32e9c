// Package builder provides the development-mode half of the SSR middleware:
// something that produces renderer artifacts asynchronously and the two
// middlewares that accompany them (live reload and asset serving).
//
// [Watcher] is the bundled implementation. It optionally starts the bundler
// in watch mode, waits for server-bundle.json and vue-ssr-client-manifest.json
// to appear in the output directory, and then rebuilds on every change:
//
//	cfg, err := builder.LoadConfig("ssr.config.yaml")
//	w := builder.NewWatcher(cfg, builder.WithLogger(log))
//
// Browsers reload after a rebuild when the page includes the client script:
//
//	<script src="/__ssr/reload.js"></script>
package builder
