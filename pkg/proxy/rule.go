package proxy

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// BypassFunc decides, per request, whether a rule should be skipped.
// A non-empty return value replaces the request URL and the rule does not
// forward.
type BypassFunc func(w http.ResponseWriter, r *http.Request, rule Rule) string

// Options configures forwarding for one context.
type Options struct {
	// Bypass is optional.
	Bypass BypassFunc

	// PathRewrite maps regular expressions to replacements applied to the
	// request path before forwarding. Patterns are applied in sorted order.
	PathRewrite map[string]string

	// Headers are set on the upstream request.
	Headers map[string]string

	// Target is the upstream base URL. An empty target never forwards,
	// which is useful for bypass-only rules.
	Target string

	// LogLevel is the level forwards are logged at. Zero is slog.LevelInfo.
	LogLevel slog.Level

	// ChangeOrigin sends the target host as the Host header instead of the
	// client's.
	ChangeOrigin bool
}

// Rule binds a path context to forwarding options.
type Rule struct {
	Context string
	Options
}

// Source yields the rules that apply to a request.
type Source interface {
	Rules(r *http.Request) []Rule
}

// Rules returns the normalized rule.
func (rl Rule) Rules(*http.Request) []Rule {
	rl.Context = NormalizeContext(rl.Context)
	return []Rule{rl}
}

// RuleFunc produces a rule per request, e.g. to pick a target dynamically.
type RuleFunc func(r *http.Request) Rule

// Rules calls f and normalizes the result.
func (f RuleFunc) Rules(r *http.Request) []Rule {
	return f(r).Rules(r)
}

// Table maps path contexts to options, e.g. {"/api/*": {Target: "http://localhost:8080"}}.
type Table map[string]Options

// Rules returns Normalize(t).
func (t Table) Rules(*http.Request) []Rule {
	return Normalize(t)
}

// Sequence is an ordered list of sources evaluated in turn.
type Sequence []Source

// Rules concatenates the rules of every source, in order.
func (s Sequence) Rules(r *http.Request) []Rule {
	var out []Rule
	for _, src := range s {
		if src == nil {
			continue
		}
		out = append(out, src.Rules(r)...)
	}
	return out
}

// FromTable returns a Sequence holding t.
func FromTable(t Table) Sequence {
	return Sequence{t}
}

// Normalize turns a table into rules sorted by context.
func Normalize(t Table) []Rule {
	rules := make([]Rule, 0, len(t))
	for ctx, opts := range t {
		rules = append(rules, Rule{Context: NormalizeContext(ctx), Options: opts})
	}
	slices.SortFunc(rules, func(a, b Rule) int {
		return strings.Compare(a.Context, b.Context)
	})
	return rules
}

// NormalizeContext strips wildcard suffixes: "/api/*" and "/api/**" become
// "/api"; a bare "*" becomes "/".
func NormalizeContext(ctx string) string {
	ctx = strings.TrimSpace(ctx)
	ctx = strings.TrimSuffix(ctx, "**")
	ctx = strings.TrimSuffix(ctx, "*")
	ctx = strings.TrimRight(ctx, "/")
	if ctx == "" {
		return "/"
	}
	if !strings.HasPrefix(ctx, "/") {
		ctx = "/" + ctx
	}
	return ctx
}

// Match reports whether path falls under a normalized context.
// Matching is by whole segments: "/api" matches "/api" and "/api/users"
// but not "/apiary".
func Match(ctx, path string) bool {
	if ctx == "/" {
		return true
	}
	if !strings.HasPrefix(path, ctx) {
		return false
	}
	return len(path) == len(ctx) || path[len(ctx)] == '/'
}
