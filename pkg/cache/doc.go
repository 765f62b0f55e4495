// Package cache provides a small TTL cache with in-memory and Redis backends
// and a Loader that collapses concurrent misses with singleflight.
//
// The settings snapshot is its only consumer: a single process uses Memory,
// several replicas share a Redis cache so a Set on one replica is seen by
// the others after invalidation.
//
//	loader := cache.NewLoader[map[string]string](cache.NewRedis[map[string]string](client, "forumauth", time.Minute))
//	v, err := loader.GetOrSet(ctx, "settings:snapshot", load)
package cache
