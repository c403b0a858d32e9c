// Package proxy forwards selected requests to upstream services before they
// reach the renderer, typically an API server during development.
//
// Rules are matched by path context. A [Table] is the common form:
//
//	d := proxy.New(proxy.Table{
//	    "/api/*": {Target: "http://localhost:8080", ChangeOrigin: true},
//	})
//	forwarded, err := d.Apply(w, r)
//
// Rules that depend on the request are expressed with [RuleFunc] and combined
// with static ones in a [Sequence]. Every rule is evaluated for every request.
// A rule's Bypass may rewrite the request URL instead of forwarding it.
//
// The default forwarder is an httputil.ReverseProxy whose transport retries
// failed upstream calls and trips a circuit breaker when the upstream keeps
// failing (see [NewTransport]).
package proxy
