package limiter

import (
	"math"
	"time"

	"github.com/vnykmshr/leakgate/pkg/bucket"
	"github.com/vnykmshr/leakgate/pkg/store"
)

// Role selects the operation surface of a service replica. It is fixed at
// construction time.
type Role int

const (
	// RoleWrite permits Admit and Peek. Only write-role replicas mutate
	// bucket state.
	RoleWrite Role = iota

	// RoleRead permits only Peek, the non-mutating capacity probe.
	RoleRead
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleWrite:
		return "write"
	case RoleRead:
		return "read"
	default:
		return "unknown"
	}
}

// FailurePolicy decides what Admit reports when the store is unavailable.
// The error is surfaced either way; the policy only sets Result.Allowed.
type FailurePolicy int

const (
	// FailClosed treats store failure as a denial, preserving the
	// guarantee that the limiter never under-enforces.
	FailClosed FailurePolicy = iota

	// FailOpen treats store failure as an admission. Use only where
	// availability matters more than enforcement.
	FailOpen
)

// Config holds configuration for a rate limiter service. Capacity and
// LeakRate apply to every bucket the service touches; per-key state lives
// only in the store.
type Config struct {
	// Store is the shared state store all replicas coordinate through.
	Store store.Store

	// Capacity is the maximum capacity of each bucket.
	Capacity float64

	// LeakRate is the rate at which consumed capacity leaks back,
	// in units per second.
	LeakRate bucket.Limit

	// Role selects the replica's operation surface. Defaults to RoleWrite.
	Role Role

	// KeyPrefix namespaces storage keys. Defaults to "bucket:".
	KeyPrefix string

	// KeyTTL is the idle-reclamation expiry set on every write. An idle
	// bucket reinitializes to full capacity on next use, which matches
	// what the leak would have produced, so expiry is safe. Defaults to
	// twice the full drain time (Capacity/LeakRate), at least 10s.
	// Negative disables expiry.
	KeyTTL time.Duration

	// Clock provides the current time. Defaults to the system clock.
	Clock bucket.Clock

	// OnStoreFailure picks the admission result reported alongside a
	// store error. Defaults to FailClosed.
	OnStoreFailure FailurePolicy
}

// ConfigError represents a service configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "limiter config error: " + e.Message
}

// validateConfig validates the service configuration.
func validateConfig(config Config) error {
	if config.Store == nil {
		return &ConfigError{"store is required"}
	}
	if config.Capacity <= 0 || math.IsInf(config.Capacity, 0) || math.IsNaN(config.Capacity) {
		return &ConfigError{"capacity must be positive and finite"}
	}
	if config.LeakRate <= 0 {
		return &ConfigError{"leak rate must be positive"}
	}
	return nil
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "bucket:"
	}
	if config.Clock == nil {
		config.Clock = bucket.SystemClock{}
	}
	if config.KeyTTL == 0 {
		config.KeyTTL = defaultTTL(config.Capacity, config.LeakRate)
	}
	if config.KeyTTL < 0 {
		config.KeyTTL = 0
	}
	return config
}

// defaultTTL returns twice the time a full bucket takes to drain, with a
// 10s floor so very fast buckets are not reclaimed mid-conversation.
func defaultTTL(capacity float64, rate bucket.Limit) time.Duration {
	if rate == bucket.Inf {
		return 10 * time.Second
	}
	drain := time.Duration(capacity / float64(rate) * float64(time.Second))
	ttl := 2 * drain
	if ttl < 10*time.Second {
		ttl = 10 * time.Second
	}
	return ttl
}
