// Package engine defines the boundary between the SSR middleware and the
// rendering engine that turns a serialized application bundle into markup.
//
// The middleware never inspects the bundle or the client manifest. It loads
// them, hands them to a [Factory], and calls the resulting [Renderer] once per
// request with a fresh [Context].
//
// Engines signal special outcomes through errors:
//
//	return "", &engine.RedirectError{URL: "/login"}
//	return "", &engine.StatusError{Code: http.StatusNotFound}
//
// The built-in engine in [github.com/dmitrymomot/ssr/pkg/engine/shell]
// renders the template shell with the client assets and no server markup.
package engine
