package internal

import (
	"io"
	"maps"
	"net/http"

	"github.com/dmitrymomot/ssr/middlewares"
	"github.com/dmitrymomot/ssr/pkg/engine"
)

// OutcomeKind tags the result of a render.
type OutcomeKind int

const (
	// OutcomeRendered means markup was written as the response.
	OutcomeRendered OutcomeKind = iota
	// OutcomeHandled means the engine succeeded but had already sent the
	// response itself.
	OutcomeHandled
	// OutcomeEmpty means the engine produced no markup and wrote nothing.
	OutcomeEmpty
	// OutcomeRedirect means the engine asked for a redirect and a 302 was sent.
	OutcomeRedirect
	// OutcomeFailure means the render failed and the error must be reported.
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRendered:
		return "rendered"
	case OutcomeHandled:
		return "handled"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of rendering one request.
type Outcome struct {
	// Err is a *RenderError for OutcomeFailure and OutcomeRedirect.
	Err  error
	URL  string
	Kind OutcomeKind
}

const contentTypeHTML = "text/html; charset=utf-8"

// render runs the current renderer for r and writes the markup to w.
func (m *Middleware) render(w *ResponseWriter, r *http.Request) Outcome {
	url := requestURI(r)
	rc := &engine.Context{
		Request:   r,
		Response:  w,
		URL:       url,
		RequestID: middlewares.GetRequestID(r.Context()),
		Data:      maps.Clone(m.cfg.Context),
	}

	renderer := m.life.Renderer()
	if renderer == nil {
		return Outcome{Kind: OutcomeFailure, Err: &RenderError{Err: ErrNoRenderer, URL: url}}
	}
	html, err := renderer.RenderToString(r.Context(), rc)
	if err != nil {
		if target, ok := engine.RedirectURL(err); ok {
			if !w.Written() {
				http.Redirect(w, r, target, http.StatusFound)
			}
			return Outcome{
				Kind: OutcomeRedirect,
				URL:  target,
				Err:  &RenderError{Err: err, URL: url, Redirect: target},
			}
		}
		return Outcome{Kind: OutcomeFailure, Err: &RenderError{Err: err, URL: url}}
	}

	if w.Written() {
		return Outcome{Kind: OutcomeHandled}
	}
	if html == "" {
		return Outcome{Kind: OutcomeEmpty}
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = io.WriteString(w, html)
	}
	return Outcome{Kind: OutcomeRendered}
}

func requestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}
