// Package health serves the liveness and readiness probes.
//
//	r.Get("/health/live", health.Liveness())
//	r.Get("/health/ready", health.Readiness(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}))
package health
