package proxy

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
)

// Forwarder sends a request upstream and writes the response to w.
type Forwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, rule Rule) error
}

// ForwarderFunc adapts a function to the Forwarder interface.
type ForwarderFunc func(w http.ResponseWriter, r *http.Request, rule Rule) error

// Forward calls f(w, r, rule).
func (f ForwarderFunc) Forward(w http.ResponseWriter, r *http.Request, rule Rule) error {
	return f(w, r, rule)
}

// Option configures a Delegator.
type Option func(*Delegator)

// WithForwarder replaces the default reverse proxy.
func WithForwarder(f Forwarder) Option {
	return func(d *Delegator) {
		d.fwd = f
	}
}

// WithLogger sets the logger forwards are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(d *Delegator) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTransport sets the transport of the default reverse proxy.
// Ignored when WithForwarder is used.
func WithTransport(rt http.RoundTripper) Option {
	return func(d *Delegator) {
		d.transport = rt
	}
}

// Delegator applies proxy rules to requests before they are rendered.
type Delegator struct {
	src       Source
	fwd       Forwarder
	transport http.RoundTripper
	log       *slog.Logger
}

// New creates a Delegator for the given rule source.
func New(src Source, opts ...Option) *Delegator {
	d := &Delegator{
		src: src,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fwd == nil {
		if d.transport == nil {
			d.transport = NewTransport(TransportLogger(d.log))
		}
		d.fwd = NewReverseProxy(d.transport)
	}
	return d
}

// written is implemented by response writers that track whether the
// response has started.
type written interface {
	Written() bool
}

// Apply evaluates every rule against r in order. Bypassed rules rewrite the
// request URL in place. Matching rules with a target forward the request as
// long as no response has been written yet.
//
// Apply reports whether a response was produced by forwarding.
func (d *Delegator) Apply(w http.ResponseWriter, r *http.Request) (bool, error) {
	if d == nil || d.src == nil {
		return false, nil
	}

	forwarded := false
	for _, rule := range d.src.Rules(r) {
		if !Match(rule.Context, r.URL.Path) {
			continue
		}

		if rule.Bypass != nil {
			if u := rule.Bypass(w, r, rule); u != "" {
				if err := rewrite(r, u); err != nil {
					return forwarded, err
				}
				continue
			}
		}

		if rule.Target == "" || forwarded || isWritten(w) {
			continue
		}

		if err := d.fwd.Forward(w, r, rule); err != nil {
			return forwarded || isWritten(w), err
		}
		forwarded = true

		d.log.Log(r.Context(), rule.LogLevel, "request proxied",
			slog.String("context", rule.Context),
			slog.String("target", rule.Target),
			slog.String("path", r.URL.Path),
		)
	}

	return forwarded, nil
}

func isWritten(w http.ResponseWriter) bool {
	if wt, ok := w.(written); ok {
		return wt.Written()
	}
	return false
}

// rewrite replaces the request path and query with those of raw.
func rewrite(r *http.Request, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Join(ErrInvalidBypass, err)
	}
	r.URL.Path = u.Path
	r.URL.RawPath = u.RawPath
	r.URL.RawQuery = u.RawQuery
	r.RequestURI = u.RequestURI()
	return nil
}
