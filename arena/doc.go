// Package arena provides a chunked off-heap allocator for refgo handles.
//
// The arena carves allocations out of large anonymous mappings with a
// lock-free bump pointer. A chunk is unmapped as soon as it has been retired
// (it is no longer the chunk new allocations go to) and every allocation
// carved from it has been deallocated, which refgo guarantees happens exactly
// once per allocation.
//
// # Features
//
//   - Off-heap allocation via mmap (no GC pressure)
//   - 1MB chunk size for cache locality
//   - Chunk-granular reclamation driven by deallocation counts
//   - Optional memory budget per chunk (see resource.Controller)
//
// # Safety
//
// Only pointer-free types are served from chunks; everything else goes to the
// fallback allocator so the garbage collector keeps seeing every Go pointer.
package arena
