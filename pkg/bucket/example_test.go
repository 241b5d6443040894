package bucket_test

import (
	"fmt"
	"time"

	"github.com/vnykmshr/leakgate/pkg/bucket"
)

// Example demonstrates evaluating admissions against a bucket without any
// store: the engine is a pure function.
func Example() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Fresh bucket: capacity 10, leaking back 1 unit/sec, cost 4.
	state, decision := bucket.Evaluate(nil, now, 10, 1, 4)
	fmt.Printf("allowed=%v remaining=%.0f\n", decision.Allowed, decision.Remaining)

	// Another 4 units immediately.
	state, decision = bucket.Evaluate(&state, now, 10, 1, 4)
	fmt.Printf("allowed=%v remaining=%.0f\n", decision.Allowed, decision.Remaining)

	// 4 more would overdraw; denied with a retry estimate.
	_, decision = bucket.Evaluate(&state, now, 10, 1, 4)
	fmt.Printf("allowed=%v retry after %v\n", decision.Allowed, decision.RetryAfter)

	// Output:
	// allowed=true remaining=6
	// allowed=true remaining=2
	// allowed=false retry after 2s
}
