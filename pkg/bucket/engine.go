package bucket

import (
	"math"
	"time"
)

// State is the persisted state of a single bucket. Capacity and leak rate are
// configuration shared by all buckets of a class and are never stored.
type State struct {
	// Remaining is the capacity still available, in [0, capacity].
	Remaining float64

	// LastUpdate is the time the state was last computed.
	LastUpdate time.Time
}

// Decision is the outcome of evaluating one unit of work against a bucket.
type Decision struct {
	// Allowed reports whether the work may proceed.
	Allowed bool

	// Remaining is the capacity left after the decision.
	Remaining float64

	// RetryAfter estimates how long until enough capacity has leaked back
	// for the denied cost. Zero when Allowed.
	RetryAfter time.Duration
}

// Evaluate computes the next state and the admit/deny decision for a request
// of the given cost. A nil prev initializes a fresh bucket at full capacity.
//
// Evaluate is a pure function with no I/O. Callers are responsible for
// running it inside the store's atomic transaction; the engine itself has no
// authority over the bucket's true state.
func Evaluate(prev *State, now time.Time, capacity float64, rate Limit, cost float64) (State, Decision) {
	provisional := replenish(prev, now, capacity, rate)

	if provisional >= cost {
		next := State{Remaining: provisional - cost, LastUpdate: now}
		return next, Decision{Allowed: true, Remaining: next.Remaining}
	}

	// Denied: the leak accrued since the last update is still credited.
	next := State{Remaining: provisional, LastUpdate: now}
	return next, Decision{
		Allowed:    false,
		Remaining:  provisional,
		RetryAfter: retryAfter(cost-provisional, rate),
	}
}

// Preview estimates the capacity currently available without consuming any.
// It applies only the replenishment step, so it never produces a state to
// write back. The estimate is advisory: a concurrent admission can change
// the true state immediately after.
func Preview(prev *State, now time.Time, capacity float64, rate Limit) float64 {
	return replenish(prev, now, capacity, rate)
}

// replenish returns the capacity available at now, crediting the leak since
// the previous update, capped at capacity.
func replenish(prev *State, now time.Time, capacity float64, rate Limit) float64 {
	if prev == nil {
		return capacity
	}

	if rate == Inf {
		return capacity
	}

	// Negative elapsed (clock skew or a retried stale read) counts as zero,
	// never as a refill reversal.
	elapsed := now.Sub(prev.LastUpdate)
	if elapsed < 0 {
		elapsed = 0
	}

	leaked := elapsed.Seconds() * float64(rate)
	return math.Min(capacity, prev.Remaining+leaked)
}

// retryAfter converts a capacity deficit into a wait estimate at the given
// leak rate.
func retryAfter(deficit float64, rate Limit) time.Duration {
	if rate <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(deficit / float64(rate) * float64(time.Second))
}
