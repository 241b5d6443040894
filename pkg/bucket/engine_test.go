package bucket

import (
	"math"
	"testing"
	"time"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateFreshBucket(t *testing.T) {
	state, dec := Evaluate(nil, base, 10, 1, 1)

	if !dec.Allowed {
		t.Error("first request against a fresh bucket should be allowed")
	}
	if dec.Remaining != 9 {
		t.Errorf("remaining = %v, want 9", dec.Remaining)
	}
	if state.Remaining != 9 {
		t.Errorf("state.Remaining = %v, want 9", state.Remaining)
	}
	if !state.LastUpdate.Equal(base) {
		t.Errorf("state.LastUpdate = %v, want %v", state.LastUpdate, base)
	}
}

func TestEvaluateLeakCredit(t *testing.T) {
	tests := []struct {
		name          string
		remaining     float64
		elapsed       time.Duration
		rate          Limit
		cost          float64
		wantAllowed   bool
		wantRemaining float64
	}{
		{"empty bucket refills at rate", 0, 5 * time.Second, 1, 1, true, 4},
		{"refill capped at capacity", 9, time.Minute, 1, 1, true, 9},
		{"partial refill insufficient", 0, 500 * time.Millisecond, 1, 1, false, 0.5},
		{"zero elapsed no refill", 3, 0, 1, 3, true, 0},
		{"fractional rate", 0, 10 * time.Second, 0.5, 5, true, 0},
		{"infinite rate always full", 0, 0, Inf, 10, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &State{Remaining: tt.remaining, LastUpdate: base}
			state, dec := Evaluate(prev, base.Add(tt.elapsed), 10, tt.rate, tt.cost)

			if dec.Allowed != tt.wantAllowed {
				t.Errorf("allowed = %v, want %v", dec.Allowed, tt.wantAllowed)
			}
			if math.Abs(state.Remaining-tt.wantRemaining) > 1e-9 {
				t.Errorf("remaining = %v, want %v", state.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestEvaluateDenialCreditsLeak(t *testing.T) {
	// Bucket drained at base. Two denials 2s apart must each advance
	// LastUpdate and credit the accrued leak, eventually permitting an
	// admission.
	prev := &State{Remaining: 0, LastUpdate: base}

	now := base.Add(2 * time.Second)
	state, dec := Evaluate(prev, now, 10, 1, 5)
	if dec.Allowed {
		t.Error("first denial expected")
	}
	if state.Remaining != 2 {
		t.Errorf("remaining after first denial = %v, want 2", state.Remaining)
	}
	if !state.LastUpdate.Equal(now) {
		t.Error("denial must advance LastUpdate")
	}

	now = now.Add(2 * time.Second)
	state, dec = Evaluate(&state, now, 10, 1, 5)
	if dec.Allowed {
		t.Error("second denial expected")
	}
	if state.Remaining != 4 {
		t.Errorf("remaining after second denial = %v, want 4", state.Remaining)
	}

	now = now.Add(time.Second)
	state, dec = Evaluate(&state, now, 10, 1, 5)
	if !dec.Allowed {
		t.Error("admission expected once enough capacity has leaked back")
	}
	if state.Remaining != 0 {
		t.Errorf("remaining after admission = %v, want 0", state.Remaining)
	}
}

func TestEvaluateRetryAfter(t *testing.T) {
	prev := &State{Remaining: 2, LastUpdate: base}

	_, dec := Evaluate(prev, base, 10, 1, 5)
	if dec.Allowed {
		t.Fatal("expected denial")
	}
	// Deficit of 3 units at 1 unit/sec.
	if dec.RetryAfter != 3*time.Second {
		t.Errorf("RetryAfter = %v, want 3s", dec.RetryAfter)
	}

	_, dec = Evaluate(prev, base, 10, 0, 5)
	if dec.RetryAfter != time.Duration(math.MaxInt64) {
		t.Errorf("zero rate RetryAfter = %v, want max duration", dec.RetryAfter)
	}
}

func TestEvaluateClockSkew(t *testing.T) {
	// now < LastUpdate must be treated as zero elapsed: no refill reversal,
	// no extra admissions.
	prev := &State{Remaining: 1, LastUpdate: base}
	past := base.Add(-time.Hour)

	state, dec := Evaluate(prev, past, 10, 1, 1)
	if !dec.Allowed {
		t.Error("admission within remaining capacity should be allowed")
	}
	if state.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", state.Remaining)
	}

	_, dec = Evaluate(&state, past, 10, 1, 1)
	if dec.Allowed {
		t.Error("skewed clock must not admit beyond remaining capacity")
	}
	if dec.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", dec.Remaining)
	}
}

func TestEvaluateConservation(t *testing.T) {
	// With no elapsed time between calls, admitted cost can never exceed the
	// initial capacity.
	const capacity = 10.0

	var state *State
	admitted := 0.0
	for i := 0; i < 50; i++ {
		next, dec := Evaluate(state, base, capacity, 1, 1)
		if dec.Allowed {
			admitted++
		}
		state = &next
	}

	if admitted != capacity {
		t.Errorf("admitted %v units, want exactly %v", admitted, capacity)
	}
}

func TestEvaluatePurity(t *testing.T) {
	prev := &State{Remaining: 3.5, LastUpdate: base}
	now := base.Add(1500 * time.Millisecond)

	s1, d1 := Evaluate(prev, now, 10, 2, 4)
	s2, d2 := Evaluate(prev, now, 10, 2, 4)

	if s1 != s2 || d1 != d2 {
		t.Error("identical inputs must produce identical outputs")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview(nil, base, 10, 1); got != 10 {
		t.Errorf("fresh bucket preview = %v, want 10", got)
	}

	prev := &State{Remaining: 0, LastUpdate: base}
	if got := Preview(prev, base.Add(5*time.Second), 10, 1); got != 5 {
		t.Errorf("preview after 5s = %v, want 5", got)
	}
	if got := Preview(prev, base.Add(time.Hour), 10, 1); got != 10 {
		t.Errorf("preview must cap at capacity, got %v", got)
	}
	if got := Preview(prev, base.Add(-time.Hour), 10, 1); got != 0 {
		t.Errorf("preview with skewed clock = %v, want 0", got)
	}
}

func TestEvery(t *testing.T) {
	if got := Every(100 * time.Millisecond); got != 10 {
		t.Errorf("Every(100ms) = %v, want 10", got)
	}
	if got := Every(0); got != Inf {
		t.Errorf("Every(0) = %v, want Inf", got)
	}
}
