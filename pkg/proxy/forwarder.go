package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"slices"
	"sync"
)

type forwardKey struct{}

type forwardState struct {
	err  error
	rule Rule
}

// ReverseProxy forwards requests with httputil.ReverseProxy, one proxy per
// target. Per-rule options travel with the request context, so rules that
// share a target share the proxy.
type ReverseProxy struct {
	transport http.RoundTripper
	proxies   map[string]*httputil.ReverseProxy
	rewrites  sync.Map // pattern -> *regexp.Regexp
	mu        sync.Mutex
}

// NewReverseProxy creates a forwarder using rt for upstream requests.
// A nil rt uses http.DefaultTransport.
func NewReverseProxy(rt http.RoundTripper) *ReverseProxy {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &ReverseProxy{
		transport: rt,
		proxies:   make(map[string]*httputil.ReverseProxy),
	}
}

// Forward implements Forwarder. Upstream failures are returned, not written,
// so the caller decides what the client sees.
func (p *ReverseProxy) Forward(w http.ResponseWriter, r *http.Request, rule Rule) error {
	rp, err := p.proxy(rule.Target)
	if err != nil {
		return err
	}

	for pattern := range rule.PathRewrite {
		if _, err := p.compile(pattern); err != nil {
			return err
		}
	}

	state := &forwardState{rule: rule}
	rp.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), forwardKey{}, state)))

	if state.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, rule.Target, state.err)
	}
	return nil
}

func (p *ReverseProxy) proxy(target string) (*httputil.ReverseProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rp, ok := p.proxies[target]; ok {
		return rp, nil
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	rp := &httputil.ReverseProxy{
		Transport: p.transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			state, _ := pr.In.Context().Value(forwardKey{}).(*forwardState)
			if state != nil {
				// Patterns were compiled in Forward.
				_ = p.rewritePath(pr.Out.URL, state.rule.PathRewrite)
			}

			pr.SetURL(u)
			pr.SetXForwarded()
			// The transport sends through an http.Client, which rejects server-side fields.
			pr.Out.RequestURI = ""

			if state == nil {
				return
			}
			if !state.rule.ChangeOrigin {
				pr.Out.Host = pr.In.Host
			}
			for k, v := range state.rule.Headers {
				pr.Out.Header.Set(k, v)
			}
		},
		ErrorHandler: func(_ http.ResponseWriter, r *http.Request, err error) {
			if state, ok := r.Context().Value(forwardKey{}).(*forwardState); ok && state.err == nil {
				state.err = err
			}
		},
	}
	p.proxies[target] = rp
	return rp, nil
}

func (p *ReverseProxy) rewritePath(u *url.URL, rules map[string]string) error {
	if len(rules) == 0 {
		return nil
	}

	patterns := make([]string, 0, len(rules))
	for pattern := range rules {
		patterns = append(patterns, pattern)
	}
	slices.Sort(patterns)

	path := u.Path
	for _, pattern := range patterns {
		re, err := p.compile(pattern)
		if err != nil {
			return err
		}
		path = re.ReplaceAllString(path, rules[pattern])
	}
	if path == "" {
		path = "/"
	}

	u.Path = path
	u.RawPath = ""
	return nil
}

func (p *ReverseProxy) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := p.rewrites.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Join(ErrInvalidRewrite, err)
	}
	p.rewrites.Store(pattern, re)
	return re, nil
}
