package alloc

import (
	"reflect"
	"unsafe"
)

// CacheLine is the default alignment used by Aligned (64 bytes).
const CacheLine = 64

// Aligned allocates pointer-free storage from the Go heap starting at an
// address divisible by Alignment. Types that contain pointers, and types whose
// natural alignment already satisfies Alignment, are served by Heap.
//
// Like Heap, Deallocate is a no-op.
type Aligned struct {
	// Alignment must be a power of two. Zero means CacheLine.
	Alignment uintptr
}

// Allocate implements Allocator.
func (a Aligned) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	size, err := SizeOf(typ, n)
	if err != nil {
		return nil, err
	}

	align := a.alignment()
	if size == 0 || HasPointers(typ) || uintptr(typ.Align()) >= align {
		return Heap{}.Allocate(typ, n)
	}

	// Over-allocate so the start can be shifted up to align-1 bytes.
	buf := make([]byte, size+align)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	offset := (align - uintptr(ptr)&(align-1)) & (align - 1)

	return unsafe.Add(ptr, offset), nil //nolint:gosec // unsafe is required for memory alignment
}

// Deallocate implements Allocator.
func (Aligned) Deallocate(unsafe.Pointer, reflect.Type, int) {}

func (a Aligned) alignment() uintptr {
	if a.Alignment == 0 || a.Alignment&(a.Alignment-1) != 0 {
		return CacheLine
	}
	return a.Alignment
}
