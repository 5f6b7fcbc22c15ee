// Package offheap provides an mmap-backed alloc.Allocator.
//
// Large pointer-free allocations (numeric arrays, fixed-size records) are
// served from anonymous mappings outside the Go heap, so they add no GC scan
// work and are returned to the OS as soon as their owner deallocates them.
// Everything else (small requests, types that contain Go pointers) is
// delegated to a fallback allocator, alloc.Heap by default.
//
// Combined with refgo slices this gives deterministic release of big buffers:
//
//	a := offheap.New()
//	defer a.Close()
//
//	vecs, err := refgo.AllocateSlice[float32](a, 1<<20)
//	if err != nil { ... }
//	defer vecs.Release() // munmap happens here, not at the next GC cycle
package offheap
