package reporter

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/leakgate/internal/testutil"
	"github.com/vnykmshr/leakgate/pkg/limiter"
	"github.com/vnykmshr/leakgate/pkg/metrics"
	"github.com/vnykmshr/leakgate/pkg/store"
)

func newFixture(t *testing.T) (*limiter.Service, *limiter.Service, *metrics.Registry) {
	t.Helper()

	shared := store.NewMemory()
	clock := testutil.NewMockClock(time.Now())

	writer, err := limiter.New(limiter.Config{
		Store: shared, Capacity: 10, LeakRate: 1, Clock: clock,
	})
	testutil.AssertNoError(t, err)

	reader, err := limiter.New(limiter.Config{
		Store: shared, Capacity: 10, LeakRate: 1, Clock: clock,
		Role: limiter.RoleRead,
	})
	testutil.AssertNoError(t, err)

	return writer, reader, metrics.NewRegistry(prometheus.NewRegistry())
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without a service")
	}

	_, reader, _ := newFixture(t)
	if _, err := New(Config{Service: reader, Schedule: "not a schedule"}); err == nil {
		t.Error("expected error for an invalid schedule")
	}
}

func TestSweep(t *testing.T) {
	writer, reader, reg := newFixture(t)

	r, err := New(Config{
		Service:  reader,
		Keys:     []string{"client-a", "client-b"},
		Name:     "edge",
		Registry: reg,
	})
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	if _, err := writer.AdmitN(ctx, "client-a", 4); err != nil {
		t.Fatal(err)
	}

	testutil.AssertNoError(t, r.Sweep(ctx))

	gaugeA := reg.BucketRemaining.WithLabelValues("edge", "client-a")
	gaugeB := reg.BucketRemaining.WithLabelValues("edge", "client-b")
	testutil.AssertEqual(t, promtestutil.ToFloat64(gaugeA), 6.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(gaugeB), 10.0)

	// A sweep must not consume capacity.
	remaining, err := reader.Peek(ctx, "client-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, remaining, 6.0)
}

func TestSweepReportsProbeErrors(t *testing.T) {
	_, reader, reg := newFixture(t)

	r, err := New(Config{Service: reader, Keys: []string{"k"}, Registry: reg})
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Sweep(ctx); err == nil {
		t.Error("expected sweep error with canceled context")
	}
}

func TestTrack(t *testing.T) {
	writer, reader, reg := newFixture(t)

	r, err := New(Config{Service: reader, Name: "edge", Registry: reg})
	testutil.AssertNoError(t, err)

	r.Track("client-c")
	r.Track("client-c") // duplicate is a no-op

	ctx := context.Background()
	if _, err := writer.AdmitN(ctx, "client-c", 2); err != nil {
		t.Fatal(err)
	}

	testutil.AssertNoError(t, r.Sweep(ctx))

	gauge := reg.BucketRemaining.WithLabelValues("edge", "client-c")
	testutil.AssertEqual(t, promtestutil.ToFloat64(gauge), 8.0)
}

func TestStartStop(t *testing.T) {
	_, reader, reg := newFixture(t)

	r, err := New(Config{Service: reader, Keys: []string{"k"}, Registry: reg})
	testutil.AssertNoError(t, err)

	r.Start()
	r.Stop()
}
