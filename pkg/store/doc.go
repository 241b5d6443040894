/*
Package store provides shared-state adapters for bucket persistence.

A Store executes one logical "read current value, compute, write new value"
sequence as a single atomic step, so two concurrent callers for the same key
can never both act on the same stale read. Implementations must use a
cross-process atomicity primitive; in-process locking is only acceptable for
the in-memory store, which is inherently single-process.

Two implementations are provided:

  - Memory: mutex-guarded map for single-process deployments and tests
  - Redis: optimistic WATCH/MULTI transactions with bounded, jittered retry

Store failures surface as ErrUnavailable. The store never decides admission
policy on failure; that belongs to the caller.
*/
package store
