// Package cache provides the stores behind the renderer cache policy.
//
// A cache is only handed to the rendering engine in production mode and only
// when caching is enabled. Two implementations share the [Cache] interface:
//
//   - [Memory]: process-local LRU with per-entry TTL, the default when
//     caching is switched on with a plain boolean.
//   - [Redis]: shared between instances, built on a client from
//     [github.com/dmitrymomot/ssr/pkg/redis].
//
// TTL semantics for Set:
//   - Positive duration: entry expires after this duration
//   - Zero: the store's default TTL (15 minutes)
//   - Negative: entry never expires
//
// [GetOrSet] collapses concurrent misses for the same key into one call:
//
//	html, err := cache.GetOrSet(ctx, pages, url, 0, func(ctx context.Context) (string, error) {
//	    return renderPage(ctx, url)
//	})
package cache
