package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/vnykmshr/leakgate/pkg/bucket"
	"github.com/vnykmshr/leakgate/pkg/store"
)

var (
	// ErrInvalidCost indicates a cost no bucket could ever satisfy
	// (non-positive or above capacity). It is reported before any store
	// access and is never retryable.
	ErrInvalidCost = errors.New("invalid cost")

	// ErrReadOnly indicates Admit was called on a read-role replica.
	ErrReadOnly = errors.New("admit requires the write role")

	// ErrStoreUnavailable indicates the shared store could not complete
	// the transaction. Result.Allowed follows the configured
	// FailurePolicy, but the error is always surfaced.
	ErrStoreUnavailable = store.ErrUnavailable
)

// Result is the outcome of an admission check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the bucket capacity left after the decision.
	Remaining float64

	// RetryAfter estimates how long until the denied cost could be
	// admitted. Zero when Allowed.
	RetryAfter time.Duration
}

// Service is a rate limiter replica. Any number of Services, in any number
// of processes, may share one Store; admissions for a fixed key are then
// linearized by the store's transaction commit order.
type Service struct {
	config Config
}

// New creates a rate limiter service from the given configuration.
func New(config Config) (*Service, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &Service{config: applyConfigDefaults(config)}, nil
}

// Role returns the replica's operating role.
func (s *Service) Role() Role {
	return s.config.Role
}

// Admit checks whether one unit of work for key may proceed, consuming
// capacity if so.
func (s *Service) Admit(ctx context.Context, key string) (Result, error) {
	return s.AdmitN(ctx, key, 1)
}

// AdmitN checks whether cost units of work for key may proceed, consuming
// the capacity if so. Exactly one atomic store transaction is performed;
// state is written back on both admission and denial so the accrued leak is
// never lost.
func (s *Service) AdmitN(ctx context.Context, key string, cost float64) (Result, error) {
	if s.config.Role != RoleWrite {
		return Result{}, ErrReadOnly
	}
	// The negated comparison also catches NaN.
	if !(cost > 0) || cost > s.config.Capacity {
		return Result{}, ErrInvalidCost
	}

	var decision bucket.Decision
	err := s.config.Store.Update(ctx, s.storageKey(key), s.config.KeyTTL,
		func(prev []byte, found bool) ([]byte, bool, error) {
			var next bucket.State
			next, decision = bucket.Evaluate(
				s.decode(prev, found), s.config.Clock.Now(),
				s.config.Capacity, s.config.LeakRate, cost,
			)
			buf, err := bucket.Encode(next)
			if err != nil {
				return nil, false, err
			}
			return buf, true, nil
		})
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return Result{Allowed: s.config.OnStoreFailure == FailOpen}, err
		}
		return Result{}, err
	}

	return Result{
		Allowed:    decision.Allowed,
		Remaining:  decision.Remaining,
		RetryAfter: decision.RetryAfter,
	}, nil
}

// Peek estimates the capacity currently available for key without consuming
// any and without writing state back. The estimate is advisory: a concurrent
// admission can change the true state immediately after. Available to both
// roles.
func (s *Service) Peek(ctx context.Context, key string) (float64, error) {
	val, found, err := s.config.Store.Fetch(ctx, s.storageKey(key))
	if err != nil {
		return 0, err
	}
	return bucket.Preview(
		s.decode(val, found), s.config.Clock.Now(),
		s.config.Capacity, s.config.LeakRate,
	), nil
}

// storageKey derives the store key for a caller-supplied bucket key.
func (s *Service) storageKey(key string) string {
	return BucketKey(s.config.KeyPrefix, key)
}

// decode parses stored state. A missing or undecodable record counts as a
// fresh bucket; reinitializing to full is what a reclaimed idle key would
// produce anyway.
func (s *Service) decode(val []byte, found bool) *bucket.State {
	if !found {
		return nil
	}
	state, err := bucket.Decode(val)
	if err != nil {
		return nil
	}
	return &state
}
