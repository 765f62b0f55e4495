// Package redis opens the go-redis client backing the shared settings cache.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck and Shutdown plug into the readiness endpoint and the server
// shutdown hooks.
package redis
