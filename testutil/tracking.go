package testutil

import (
	"errors"
	"reflect"
	"sync"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/refgo/alloc"
)

// ErrInjected is returned by allocations and constructors that were told to fail.
var ErrInjected = errors.New("testutil: injected failure")

type allocation struct {
	id   uint32
	typ  reflect.Type
	n    int
	size uintptr
}

// TrackingAllocator records every allocation and deallocation that passes
// through it. Live allocations are kept in a roaring bitmap of allocation IDs,
// so a test can tell exactly which allocations leaked.
//
// Storage of live allocations stays reachable from the allocator until it is
// deallocated.
type TrackingAllocator struct {
	mu       sync.Mutex
	upstream alloc.Allocator
	live     *roaring.Bitmap
	ptrs     map[unsafe.Pointer][]allocation
	nextID   uint32
	failIn   int

	allocs     int
	deallocs   int
	liveBytes  int64
	mismatched int
	unknown    int
	bySize     map[uintptr]int
}

var _ alloc.Allocator = (*TrackingAllocator)(nil)

// NewTrackingAllocator wraps upstream. A nil upstream means alloc.Heap.
func NewTrackingAllocator(upstream alloc.Allocator) *TrackingAllocator {
	if upstream == nil {
		upstream = alloc.Heap{}
	}
	return &TrackingAllocator{
		upstream: upstream,
		live:     roaring.New(),
		ptrs:     make(map[unsafe.Pointer][]allocation),
		bySize:   make(map[uintptr]int),
	}
}

// FailAfter makes the allocation after the next n successful ones fail with
// ErrInjected. FailAfter(0) fails the very next allocation. A negative n
// disables injection.
func (t *TrackingAllocator) FailAfter(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		t.failIn = 0
		return
	}
	t.failIn = n + 1
}

// Allocate implements alloc.Allocator.
func (t *TrackingAllocator) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failIn > 0 {
		t.failIn--
		if t.failIn == 0 {
			return nil, ErrInjected
		}
	}

	size, err := alloc.SizeOf(typ, n)
	if err != nil {
		return nil, err
	}

	p, err := t.upstream.Allocate(typ, n)
	if err != nil {
		return nil, err
	}

	id := t.nextID
	t.nextID++
	t.live.Add(id)
	t.ptrs[p] = append(t.ptrs[p], allocation{id: id, typ: typ, n: n, size: size})
	t.allocs++
	t.liveBytes += int64(size)
	t.bySize[size]++

	return p, nil
}

// Deallocate implements alloc.Allocator.
func (t *TrackingAllocator) Deallocate(p unsafe.Pointer, typ reflect.Type, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs := t.ptrs[p]
	idx := -1
	for i, r := range recs {
		if r.typ == typ && r.n == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(recs) == 0 {
			t.unknown++
		} else {
			t.mismatched++
		}
		return
	}

	r := recs[idx]
	recs = append(recs[:idx], recs[idx+1:]...)
	if len(recs) == 0 {
		delete(t.ptrs, p)
	} else {
		t.ptrs[p] = recs
	}

	t.live.Remove(r.id)
	t.deallocs++
	t.liveBytes -= int64(r.size)
	t.bySize[r.size]--

	t.upstream.Deallocate(p, typ, n)
}

// Allocs returns the number of successful allocations.
func (t *TrackingAllocator) Allocs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs
}

// Deallocs returns the number of matched deallocations.
func (t *TrackingAllocator) Deallocs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deallocs
}

// Live returns the number of allocations not yet deallocated.
func (t *TrackingAllocator) Live() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.GetCardinality()
}

// LiveIDs returns the IDs of allocations not yet deallocated, in allocation order.
func (t *TrackingAllocator) LiveIDs() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.ToArray()
}

// LiveBytes returns the number of bytes not yet deallocated.
func (t *TrackingAllocator) LiveBytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.liveBytes
}

// Mismatched returns the number of deallocations of a known pointer with a
// type or count that differs from its allocation.
func (t *TrackingAllocator) Mismatched() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mismatched
}

// Unknown returns the number of deallocations of pointers never handed out.
func (t *TrackingAllocator) Unknown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unknown
}

// Balanced reports whether every allocation was matched by exactly one
// deallocation of the same size and nothing else was deallocated.
func (t *TrackingAllocator) Balanced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.live.IsEmpty() || t.mismatched != 0 || t.unknown != 0 {
		return false
	}
	for _, n := range t.bySize {
		if n != 0 {
			return false
		}
	}
	return true
}
