// Package redis provides a Redis client component and a typed JSON store
// built on go-redis. The geocoding resolver uses the store as its lookup
// cache:
//
//	cache := redis.NewComponent(cfg, log)
//	store := redis.NewTypedStore[geocode.Lookup](cache, cfg.KeyPrefix+":geocode")
//	resolver := geocode.NewResolver(provider, limiter, geocode.WithCache(store, cfg.TTL))
package redis
