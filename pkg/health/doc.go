// Package health provides liveness and readiness HTTP handlers.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "renderer": mw.Ready,
//	    "redis":    redis.Healthcheck(client),
//	}))
//
// Checks run in parallel under a shared timeout. Responses are plain text
// ("OK" / "Service Unavailable") unless the client asks for JSON with
// ?format=json or an Accept: application/json header.
package health
