package bucket

import (
	"math"
	"time"
)

// Limit represents the leak rate of a bucket in capacity units per second.
// A zero Limit never replenishes. Use Inf for unlimited replenishment.
type Limit float64

// Inf is the infinite leak rate; capacity replenishes instantly.
var Inf = Limit(math.Inf(1))

// Every converts a minimum time interval between replenished units to a Limit.
func Every(interval time.Duration) Limit {
	if interval <= 0 {
		return Inf
	}
	return Limit(time.Second) / Limit(interval)
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
