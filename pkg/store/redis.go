package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for the Redis store adapter.
type RedisConfig struct {
	// Timeout bounds each Update or Fetch call, including transaction
	// retries. Defaults to 500ms.
	Timeout time.Duration

	// MaxRetries is the number of attempts for an optimistic transaction
	// before the conflict is reported as ErrUnavailable. Defaults to 8.
	MaxRetries int

	// RetryBackoff is the base delay between conflicting attempts. The
	// delay doubles per attempt with ±50% jitter. Defaults to 2ms.
	RetryBackoff time.Duration
}

// applyDefaults fills in zero-valued config fields.
func (c RedisConfig) applyDefaults() RedisConfig {
	if c.Timeout == 0 {
		c.Timeout = 500 * time.Millisecond
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 8
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 2 * time.Millisecond
	}
	return c
}

// Redis is a Store backed by Redis optimistic transactions (WATCH/MULTI).
// The watched read and conditional write make concurrent updates for the
// same key linearizable across processes without any client-side locking.
type Redis struct {
	client redis.UniversalClient
	config RedisConfig
}

// NewRedis creates a Redis-backed store.
func NewRedis(client redis.UniversalClient, config RedisConfig) *Redis {
	return &Redis{
		client: client,
		config: config.applyDefaults(),
	}
}

// Update implements Store. The value at key is read under WATCH, fn computes
// the replacement, and the write commits only if no other client touched the
// key in between. Conflicts are retried a bounded number of times with
// jittered backoff; exhaustion surfaces ErrUnavailable.
func (r *Redis) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, jitteredBackoff(r.config.RetryBackoff, attempt)); err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		err := r.tryUpdate(ctx, key, ttl, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errConflict) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %d conflicting attempts: %v", ErrUnavailable, r.config.MaxRetries, lastErr)
}

// tryUpdate runs one optimistic transaction attempt.
func (r *Redis) tryUpdate(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	var fnErr error

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		prev, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			prev, found = nil, false
		} else if err != nil {
			return err
		}

		next, write, err := fn(prev, found)
		if err != nil {
			fnErr = err
			return err
		}
		if !write {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		return fnErr
	case errors.Is(err, redis.TxFailedErr):
		return errConflict
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Fetch implements Store.
func (r *Redis) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, true, nil
}

// jitteredBackoff returns the delay before the given retry attempt: the base
// doubled per attempt, with ±50% jitter so contending replicas spread out.
func jitteredBackoff(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(d)+1))
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
