package limiter_test

import (
	"context"
	"fmt"
	"log"

	"github.com/vnykmshr/leakgate/pkg/limiter"
	"github.com/vnykmshr/leakgate/pkg/store"
)

// Example demonstrates basic admission checks against an in-memory store.
func Example() {
	svc, err := limiter.New(limiter.Config{
		Store:    store.NewMemory(),
		Capacity: 2, // bucket holds 2 units
		LeakRate: 1, // 1 unit leaks back per second
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := svc.Admit(ctx, "client-42")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("request %d allowed=%v remaining=%.0f\n", i+1, res.Allowed, res.Remaining)
	}

	// Output:
	// request 1 allowed=true remaining=1
	// request 2 allowed=true remaining=0
	// request 3 allowed=false remaining=0
}

// Example_readRole demonstrates a read-role replica probing capacity
// without consuming any.
func Example_readRole() {
	shared := store.NewMemory()

	writer, _ := limiter.New(limiter.Config{
		Store: shared, Capacity: 10, LeakRate: 1,
	})
	reader, _ := limiter.New(limiter.Config{
		Store: shared, Capacity: 10, LeakRate: 1,
		Role: limiter.RoleRead,
	})

	ctx := context.Background()
	if _, err := writer.AdmitN(ctx, "client-42", 4); err != nil {
		log.Fatal(err)
	}

	remaining, _ := reader.Peek(ctx, "client-42")
	fmt.Printf("remaining estimate: %.0f\n", remaining)

	// Output: remaining estimate: 6
}
