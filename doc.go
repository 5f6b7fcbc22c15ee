// Package refgo provides thread-safe shared and weak reference-counted handles
// for values that need deterministic teardown.
//
// The garbage collector still owns raw memory. refgo owns logical lifetime:
// a payload is destroyed exactly once, synchronously, on the goroutine that
// releases its last strong reference, and its control block is handed back to
// the allocator it came from exactly once, after the last weak reference is
// gone as well.
//
// # Quick Start
//
//	f, _ := os.Open("data.bin")
//	s, _ := refgo.Adopt(f) // *os.File is closed by the last Release
//
//	c := s.Clone()  // strong=2
//	w := c.Weak()   // weak=1
//	_ = s.Release() // strong=1
//	_ = c.Release() // strong=0: f.Close() runs here
//
//	w.Expired()     // true
//	w.Lock().Valid() // false
//	w.Release()     // block reclaimed
//
// # Handles
//
// Shared[T] and SharedSlice[T] own one strong reference each, Weak[T] and
// WeakSlice[T] one weak reference. All four are small value types whose zero
// value is empty. Go has no copy constructors or destructors, so ownership is
// explicit:
//
//   - Clone shares ownership and must be paired with its own Release
//   - Move transfers ownership and leaves the source empty
//   - Release drops ownership exactly once per owned copy
//
// Copying a handle with a plain assignment aliases the same reference; only
// one of the copies may be released.
//
// # Factories
//
// Make, MakeFunc, Allocate and AllocateFunc colocate the counters and the
// payload in one allocation. MakeSlice, MakeSliceFunc, AllocateSlice and
// AllocateSliceFunc build n elements in index order and destroy them in
// reverse. Adopt, AdoptFunc, AdoptWith, AdoptSlice and AdoptSliceWith take
// ownership of existing storage together with a Deleter.
//
// Payloads implementing io.Closer (on T or *T) are closed on teardown;
// everything else is zeroed.
//
// # Allocators
//
// Every factory has a variant taking an alloc.Allocator. The resource package
// enforces memory budgets and allocation rates, the offheap package serves
// pointer-free storage from anonymous mappings:
//
//	a := resource.NewAllocator(resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	}), offheap.New())
//	buf, err := refgo.AllocateSlice[float32](a, 1<<20)
//
// Many small buffers are better packed by the arena package, which bump-allocates
// from shared chunks and unmaps a chunk once everything carved from it has been
// released. alloc.Aligned places pointer-free elements on cache-line boundaries.
//
// # Weak Upgrade
//
// Weak.Lock converts a weak reference into a strong one with a
// compare-and-swap loop that never advances the strong count from zero, so a
// destroyed payload is never revived.
//
// # Failure Policy
//
// A failing deleter or Close is reported to the caller of the final Release as
// a *DestroyError; the block is reclaimed regardless. A panicking deleter is
// re-raised after the block has been reclaimed. Constructor failures and
// panics unwind every allocation made by the factory.
package refgo
