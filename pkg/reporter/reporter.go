/*
Package reporter exports remaining-capacity estimates for a set of tracked
bucket keys as Prometheus gauges, on a cron schedule.

The reporter only issues non-mutating capacity probes, so it is meant to run
against read-role replicas and never changes admission state. The exported
values are advisory snapshots, suitable for dashboards and pre-checks.
*/
package reporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/leakgate/pkg/metrics"
)

// Peeker is the probe surface the reporter needs; both *limiter.Service and
// *limiter.MetricsService satisfy it.
type Peeker interface {
	Peek(ctx context.Context, key string) (float64, error)
}

// Config holds configuration for a capacity reporter.
type Config struct {
	// Service issues the capacity probes. Usually a read-role replica.
	Service Peeker

	// Keys are the bucket keys to track. More can be added with Track.
	Keys []string

	// Schedule is a cron expression for the sweep cadence.
	// Defaults to "@every 30s".
	Schedule string

	// Timeout bounds one full sweep. Defaults to 5s.
	Timeout time.Duration

	// Name is the limiter_name label on exported gauges.
	Name string

	// Registry receives the gauges. Defaults to metrics.DefaultRegistry.
	Registry *metrics.Registry
}

// Reporter periodically sweeps tracked keys and updates gauges.
type Reporter struct {
	config Config
	cron   *cron.Cron

	mu   sync.Mutex
	keys []string
}

// New creates a reporter and registers its sweep with the cron scheduler.
// Call Start to begin sweeping.
func New(config Config) (*Reporter, error) {
	if config.Service == nil {
		return nil, errors.New("reporter: service is required")
	}
	if config.Schedule == "" {
		config.Schedule = "@every 30s"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Registry == nil {
		config.Registry = metrics.DefaultRegistry
	}

	r := &Reporter{
		config: config,
		cron:   cron.New(),
		keys:   append([]string(nil), config.Keys...),
	}

	if _, err := r.cron.AddFunc(config.Schedule, r.sweep); err != nil {
		return nil, fmt.Errorf("reporter: invalid schedule %q: %w", config.Schedule, err)
	}
	return r, nil
}

// Start begins periodic sweeps in a background goroutine.
func (r *Reporter) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}

// Track adds a bucket key to the sweep set.
func (r *Reporter) Track(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k == key {
			return
		}
	}
	r.keys = append(r.keys, key)
}

// Sweep probes every tracked key once and updates the gauges. It is also
// the body of the scheduled job; callers can invoke it directly to force a
// refresh.
func (r *Reporter) Sweep(ctx context.Context) error {
	r.mu.Lock()
	keys := append([]string(nil), r.keys...)
	r.mu.Unlock()

	var errs []error
	for _, key := range keys {
		remaining, err := r.config.Service.Peek(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("peek %s: %w", key, err))
			continue
		}
		r.config.Registry.BucketRemaining.WithLabelValues(r.config.Name, key).Set(remaining)
	}
	return errors.Join(errs...)
}

// sweep adapts Sweep to the cron job signature. Probe failures only show up
// in the store error counters; a sweep never stops the schedule.
func (r *Reporter) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()
	_ = r.Sweep(ctx)
}
