package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the store could not complete an operation: it is
// unreachable, the call timed out, or transaction retries were exhausted.
// Callers must not treat it as an implicit admit or deny.
var ErrUnavailable = errors.New("store unavailable")

// errConflict is the internal optimistic-concurrency retry signal. It is
// retried inside the adapter and never surfaces past this package.
var errConflict = errors.New("transaction conflict")

// UpdateFunc computes the next value for a key inside an atomic update.
// prev is the current stored value; found reports whether the key exists.
// Returning write=false leaves the key untouched.
type UpdateFunc func(prev []byte, found bool) (next []byte, write bool, err error)

// Store is the shared mutable state all replicas coordinate through.
type Store interface {
	// Update atomically reads the value at key, applies fn, and writes the
	// result back with the given ttl. Concurrent Updates for the same key
	// are linearized: fn never runs against a value another committed
	// Update has since replaced. A ttl of zero means no expiry.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error

	// Fetch reads the current value at key without modifying it.
	Fetch(ctx context.Context, key string) (val []byte, found bool, err error)
}

// IsRetryable reports whether the error indicates a condition that might be
// resolved by retrying the operation later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
