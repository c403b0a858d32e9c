// Package redis opens the Redis client used by the shared render cache.
//
// The client is tuned for short cache reads on the request path: small pool,
// tight read/write timeouts, and a bounded connect retry at startup.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithPoolSize(20),
//	)
//	if err != nil {
//	    return err
//	}
//	pages := cache.NewRedis[string](client, cache.StringMarshaler{})
//
// [Healthcheck] plugs into the readiness probe, and [Shutdown] into the
// server shutdown hooks.
package redis
