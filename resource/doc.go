// Package resource governs how much memory refgo handles may claim.
//
// The Controller provides centralized management of two resource types:
//
//   - Memory: Track and limit bytes held by live allocations (fail-fast or blocking)
//   - Allocation rate: Token bucket over allocation calls
//
// # Architecture
//
//	┌───────────────────────────────────────────────┐
//	│                  Controller                   │
//	├───────────────────────┬───────────────────────┤
//	│  Memory Limit (sem)   │  Allocation Rate      │
//	│                       │  (token bucket)       │
//	├───────────────────────┼───────────────────────┤
//	│  AcquireMemory        │  AllowAllocation      │
//	│  WaitMemory           │  WaitAllocation       │
//	│  ReleaseMemory        │                       │
//	│  MemoryUsage          │                       │
//	└───────────────────────┴───────────────────────┘
//
// Allocator adapts a Controller to alloc.Allocator, so budgets apply to every
// control block, payload and element array a refgo factory creates:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB
//	})
//	a := resource.NewAllocator(rc, nil)
//
//	buf, err := refgo.AllocateSlice[byte](a, 1<<20)
//	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
//	    // caller decides retry/backoff
//	}
//	defer buf.Release() // returns 1MB to the budget
//
// # Thread Safety
//
// All Controller and Allocator methods are safe for concurrent use.
//
// # Nil Safety
//
// All Controller methods handle a nil receiver gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
