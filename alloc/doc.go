// Package alloc defines the allocator capability used by refgo control blocks.
//
// An Allocator hands out typed storage for n contiguous values. Rebinding an
// allocator to another type is just passing a different reflect.Type, so a
// single Allocator value can serve a control block, its colocated payload and
// a separately allocated element array.
//
// # Typed Helpers
//
//	p, err := alloc.New[Node](a, 1)
//	if err != nil { ... }
//	defer alloc.Free(a, p, 1)
//
//	s, err := alloc.Slice[float32](a, 1024)
//	if err != nil { ... }
//	defer alloc.FreeSlice(a, s)
//
// # Contract
//
//   - Allocate is called with n > 0 and returns zeroed storage suitably aligned for typ.
//   - Every successful Allocate is matched by exactly one Deallocate with the same typ and n.
//   - Storage for types that contain Go pointers must be visible to the garbage
//     collector. Allocators serving such types from foreign memory must delegate
//     them to a GC-visible allocator (see HasPointers).
package alloc
