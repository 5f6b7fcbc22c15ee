package refgo

import (
	"reflect"
	"time"

	"github.com/hupe1980/refgo/alloc"
)

// Adopt takes ownership of p. When the last strong reference is released,
// p is destroyed with DefaultDeleter. A nil p returns an empty handle
// without allocating. If the block cannot be allocated an error is returned
// and p stays owned by the caller.
func Adopt[T any](p *T, opts ...Option) (Shared[T], error) {
	return AdoptWith(p, DefaultDeleter[T]{}, alloc.Heap{}, opts...)
}

// AdoptFunc is like Adopt but destroys p with del. A nil del does nothing.
func AdoptFunc[T any](p *T, del func(*T) error, opts ...Option) (Shared[T], error) {
	if del == nil {
		del = func(*T) error { return nil }
	}
	return AdoptWith(p, DeleterFunc[*T](del), alloc.Heap{}, opts...)
}

// AdoptWith takes ownership of p with deleter d, obtaining the control block
// from a. Both are stored with their static types and can be retrieved with
// GetDeleter[D] and GetAllocator[A].
func AdoptWith[T any, D Deleter[*T], A alloc.Allocator](p *T, d D, a A, opts ...Option) (Shared[T], error) {
	if p == nil {
		return Shared[T]{}, nil
	}

	o := applyOptions(opts)
	start := time.Now()

	b, err := newIndirect[*T](a, d, o, KindIndirect, reflect.TypeFor[T](), 1)
	created(o, KindIndirect, 1, start, err)
	if err != nil {
		return Shared[T]{}, err
	}
	b.payload = p
	b.counts.init()
	return Shared[T]{ptr: p, blk: b}, nil
}

// AdoptSlice takes ownership of s, destroying its elements with
// DefaultSliceDeleter. An empty s returns an empty handle without allocating.
func AdoptSlice[T any](s []T, opts ...Option) (SharedSlice[T], error) {
	return AdoptSliceWith(s, DefaultSliceDeleter[T]{}, alloc.Heap{}, opts...)
}

// AdoptSliceWith takes ownership of s with deleter d, obtaining the control
// block from a.
func AdoptSliceWith[T any, D Deleter[[]T], A alloc.Allocator](s []T, d D, a A, opts ...Option) (SharedSlice[T], error) {
	if len(s) == 0 {
		return SharedSlice[T]{}, nil
	}

	o := applyOptions(opts)
	start := time.Now()

	b, err := newIndirect[[]T](a, d, o, KindIndirectSlice, reflect.TypeFor[T](), len(s))
	created(o, KindIndirectSlice, len(s), start, err)
	if err != nil {
		return SharedSlice[T]{}, err
	}
	b.payload = s
	b.counts.init()
	return SharedSlice[T]{elems: s, blk: b}, nil
}
