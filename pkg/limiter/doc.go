/*
Package limiter provides the admission service that orchestrates the
leaky-bucket engine against a shared store.

Every call performs exactly one atomic read-compute-write transaction
against the store, so admissions for a fixed key are linearizable across
any number of replicas: the sequence of decisions matches a single-threaded
execution of the engine in the store's commit order. No replica ever caches
bucket state between requests; the store is the sole source of truth.

Basic usage:

	svc, err := limiter.New(limiter.Config{
		Store:    store.NewMemory(),
		Capacity: 10, // bucket holds 10 units
		LeakRate: 1,  // 1 unit leaks back per second
	})
	if err != nil {
		log.Fatal(err)
	}

	res, err := svc.Admit(ctx, clientID)
	switch {
	case err != nil:
		// Store failure. Under the default fail-closed policy
		// res.Allowed is false; the limiter never under-enforces.
	case res.Allowed:
		// Process request
	default:
		// Deny; res.RetryAfter estimates when to try again
	}

Role partitioning

Replicas can be deployed in two roles. Write-role replicas expose the full
Admit surface. Read-role replicas expose only Peek, a non-mutating capacity
probe for previews and monitoring; it is advisory (a concurrent admission
can invalidate it immediately) and must never gate an actual admission.
Splitting roles lets deployments scale cheap reads independently of the
serialization pressure admissions put on the store.
*/
package limiter
