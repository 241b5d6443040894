/*
Package bucket provides the pure leaky-bucket decision engine and the codec
for persisting bucket state in a shared store.

The engine is a pure function over (previous state, now, configuration, cost):
identical inputs always produce identical outputs, so it can be unit tested
without any store and re-run safely inside a store transaction.

A bucket holds remaining capacity that replenishes ("leaks" back) at a
constant rate and is depleted by admitted work:

	state, decision := bucket.Evaluate(nil, time.Now(), 10, 1, 1)
	if decision.Allowed {
		// Persist state, process request
	}

State is serialized with Encode/Decode as a compact JSON record so that every
replica reads and writes the same wire representation.

Engine guarantees:
  - Remaining never exceeds capacity (replenishment is capped)
  - Remaining never goes negative; an admission that would drive it negative
    is denied and only the accrued leak is credited
  - A clock running backwards (skew, stale retry) counts as zero elapsed
    time, never as a reversal
*/
package bucket
