package refgo

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/refgo/alloc"
)

// Make returns a handle to a copy of v. The counters and the value share one
// heap allocation.
func Make[T any](v T, opts ...Option) (Shared[T], error) {
	return Allocate(alloc.Heap{}, v, opts...)
}

// Allocate is like Make but obtains the block from a. The allocator is
// stored in the block and used again to reclaim it; GetAllocator[A]
// retrieves it.
func Allocate[T any, A alloc.Allocator](a A, v T, opts ...Option) (Shared[T], error) {
	return AllocateFunc(a, func(p *T) error {
		*p = v
		return nil
	}, opts...)
}

// MakeFunc returns a handle to a value built in place by ctor. ctor receives
// zeroed storage; a nil ctor leaves the value zeroed. If ctor fails or panics
// the storage is reclaimed and the error, wrapped in a *ConstructError, is
// returned or the panic continues.
func MakeFunc[T any](ctor func(*T) error, opts ...Option) (Shared[T], error) {
	return AllocateFunc(alloc.Heap{}, ctor, opts...)
}

// AllocateFunc is like MakeFunc but obtains the block from a.
func AllocateFunc[T any, A alloc.Allocator](a A, ctor func(*T) error, opts ...Option) (Shared[T], error) {
	o := applyOptions(opts)
	start := time.Now()

	b, err := newDirect(a, ctor, o)
	created(o, KindDirect, 1, start, err)
	if err != nil {
		return Shared[T]{}, err
	}
	return Shared[T]{ptr: &b.value, blk: b}, nil
}

// MakeSlice returns a handle to n zero-valued elements.
// n == 0 returns an empty handle without allocating.
func MakeSlice[T any](n int, opts ...Option) (SharedSlice[T], error) {
	return AllocateSliceFunc[T](alloc.Heap{}, n, nil, opts...)
}

// AllocateSlice is like MakeSlice but obtains the block and the elements from a.
func AllocateSlice[T any, A alloc.Allocator](a A, n int, opts ...Option) (SharedSlice[T], error) {
	return AllocateSliceFunc[T](a, n, nil, opts...)
}

// MakeSliceFunc returns a handle to n elements built in index order by ctor.
// If building element K fails or panics, elements K-1 down to 0 are destroyed
// and all storage is reclaimed before the *ConstructError is returned or the
// panic continues.
func MakeSliceFunc[T any](n int, ctor func(i int, e *T) error, opts ...Option) (SharedSlice[T], error) {
	return AllocateSliceFunc(alloc.Heap{}, n, ctor, opts...)
}

// AllocateSliceFunc is like MakeSliceFunc but obtains the block and the
// elements from a.
func AllocateSliceFunc[T any, A alloc.Allocator](a A, n int, ctor func(i int, e *T) error, opts ...Option) (SharedSlice[T], error) {
	if n < 0 {
		return SharedSlice[T]{}, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	if n == 0 {
		return SharedSlice[T]{}, nil
	}

	o := applyOptions(opts)
	start := time.Now()

	b, err := newSliceBlock(a, n, ctor, o)
	created(o, KindIndirectSlice, n, start, err)
	if err != nil {
		return SharedSlice[T]{}, err
	}
	return SharedSlice[T]{elems: b.payload, blk: b}, nil
}

func newSliceBlock[T any, A alloc.Allocator](a A, n int, ctor func(int, *T) error, o *options) (*indirectBlock[[]T, sliceDeleter[T, A], A], error) {
	elem := reflect.TypeFor[T]()

	b, err := newIndirect[[]T](a, sliceDeleter[T, A]{alloc: a, n: n}, o, KindIndirectSlice, elem, n)
	if err != nil {
		return nil, err
	}

	elems, err := alloc.Slice[T](a, n)
	if err != nil {
		alloc.Free(a, b, 1)
		return nil, &AllocError{Kind: KindIndirectSlice, Type: elem, Count: n, cause: err}
	}

	if ctor != nil {
		err := guard(func() error {
			return constructElems(elems, ctor)
		}, func() {
			alloc.FreeSlice(a, elems)
			alloc.Free(a, b, 1)
		})
		if err != nil {
			return nil, err
		}
	}

	b.payload = elems
	b.counts.init()
	return b, nil
}

// constructElems runs ctor on each element in index order. On failure or
// panic at index i it destroys elements i-1 down to 0.
func constructElems[T any](elems []T, ctor func(int, *T) error) (err error) {
	i := 0
	defer func() {
		if i == len(elems) {
			return
		}
		if derr := destroyElems(elems[:i]); derr != nil && err != nil {
			err = errors.Join(err, derr)
		}
	}()

	for ; i < len(elems); i++ {
		if cerr := ctor(i, &elems[i]); cerr != nil {
			return &ConstructError{Index: i, cause: cerr}
		}
	}
	return nil
}
