/*
Package leakgate provides distributed leaky-bucket rate limiting for fleets
of horizontally scaled workers, with bucket state held in a shared store.

Any number of identical replicas can enforce a single per-key limit without
coordinating with each other: all cross-replica ordering is pushed onto the
store's atomic transaction primitive.

Components (pkg/...):
  - bucket: pure leaky-bucket decision engine and state codec
  - store: shared-store adapters (Redis transactions, in-memory)
  - limiter: the admission service orchestrating engine and store
  - reporter: cron-driven capacity reporting for read-role replicas
  - middleware: net/http admission middleware
  - metrics: Prometheus instrumentation

Example usage:

	import (
		"github.com/redis/go-redis/v9"
		"github.com/vnykmshr/leakgate/pkg/limiter"
		"github.com/vnykmshr/leakgate/pkg/store"
	)

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	svc, _ := limiter.New(limiter.Config{
		Store:    store.NewRedis(rdb, store.RedisConfig{}),
		Capacity: 10,
		LeakRate: 1, // 1 unit/sec
	})

	res, err := svc.Admit(ctx, clientID)
	if err == nil && res.Allowed {
		// Process request
	}
*/
package leakgate
