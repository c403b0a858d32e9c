package internal

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// RequestContext is the single calling convention of the dispatcher.
// Next is nil when the middleware is the final handler.
type RequestContext struct {
	Writer  http.ResponseWriter
	Request *http.Request
	Next    http.Handler
}

// ServeHTTP dispatches without a continuation.
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.Dispatch(&RequestContext{Writer: w, Request: r})
}

// Handler wraps next. Only requests the renderer leaves unanswered continue
// to it: an empty render, or a failure the error handler passes on. A
// rendered page, a response the engine wrote itself, or a redirect ends the
// request without calling next, so next never writes a second response.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Dispatch(&RequestContext{Writer: w, Request: r, Next: next})
	})
}

// HandlerFunc is Handler for plain functions.
func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return m.Handler(next).ServeHTTP
}

// Dispatch serves one request.
func (m *Middleware) Dispatch(rc *RequestContext) {
	w := NewResponseWriter(rc.Writer)
	r := rc.Request

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if m.cfg.Mode == ModeProduction {
		m.dispatchProduction(w, rc)
		return
	}
	m.dispatchDevelopment(w, rc)
}

func (m *Middleware) dispatchProduction(w *ResponseWriter, rc *RequestContext) {
	r := rc.Request
	if m.redirectAsset(w, r) {
		return
	}
	if _, err := m.life.Ensure(r.Context()); err != nil {
		m.report(w, rc, err)
		return
	}
	m.finish(w, rc, m.render(w, r))
}

// dispatchDevelopment holds the request until the first build, then runs the
// live-reload and asset middlewares. The extension filter runs after them so
// dev assets and proxied files stay reachable.
func (m *Middleware) dispatchDevelopment(w *ResponseWriter, rc *RequestContext) {
	r := rc.Request
	m.gate.start(m.ctx)

	res, err := m.gate.wait(r.Context())
	if err != nil {
		if r.Context().Err() == nil {
			m.report(w, rc, err)
		}
		return
	}

	if !continued(res.Hot, w, r) || !continued(res.Assets, w, r) {
		return
	}

	forwarded, err := m.proxy.Apply(w, r)
	if err != nil {
		m.report(w, rc, err)
		return
	}
	if forwarded {
		return
	}

	if m.redirectAsset(w, r) {
		return
	}
	m.finish(w, rc, m.render(w, r))
}

// continued runs mw with a terminal handler that only records being reached.
func continued(mw func(http.Handler) http.Handler, w http.ResponseWriter, r *http.Request) bool {
	next := false
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		next = true
	})).ServeHTTP(w, r)
	return next
}

// redirectAsset sends paths that look like files to the not-found route.
func (m *Middleware) redirectAsset(w http.ResponseWriter, r *http.Request) bool {
	if !m.cfg.ExtensionFilter || !hasExtension(r.URL.Path) {
		return false
	}
	target := m.cfg.NotFoundRoute + "?url=" + url.QueryEscape(requestURI(r))
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

// hasExtension reports whether the last path segment looks like name.ext.
func hasExtension(p string) bool {
	base := path.Base(p)
	dot := strings.LastIndexByte(base, '.')
	return dot > 0 && dot < len(base)-1
}

func (m *Middleware) finish(w *ResponseWriter, rc *RequestContext, out Outcome) {
	switch out.Kind {
	case OutcomeRendered, OutcomeHandled, OutcomeRedirect:
	case OutcomeEmpty:
		if rc.Next != nil {
			rc.Next.ServeHTTP(w, rc.Request)
		}
	case OutcomeFailure:
		m.report(w, rc, out.Err)
	}
}

// report hands err to the error handler, withholding the writer when the
// response has already started.
func (m *Middleware) report(w *ResponseWriter, rc *RequestContext, err error) {
	var rw http.ResponseWriter
	if !w.Written() {
		rw = w
	}
	next := func() {
		if rc.Next != nil && !w.Written() {
			rc.Next.ServeHTTP(w, rc.Request)
		}
	}
	m.cfg.ErrorHandler(rw, rc.Request, err, next)
}
