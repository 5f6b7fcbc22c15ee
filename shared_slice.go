package refgo

import "reflect"

// SharedSlice owns one strong reference to a slice payload of type []T.
//
// It offers indexed access instead of dereference. Ownership rules are the
// same as for Shared.
type SharedSlice[T any] struct {
	elems []T
	blk   controlBlock
}

func (s SharedSlice[T]) block() controlBlock { return s.blk }

// At returns a pointer to element i. It panics if i is out of range.
func (s SharedSlice[T]) At(i int) *T { return &s.elems[i] }

// Slice returns the elements. The slice must not be used after the last
// strong reference is released.
func (s SharedSlice[T]) Slice() []T { return s.elems }

// Len returns the number of elements.
func (s SharedSlice[T]) Len() int { return len(s.elems) }

// Valid reports whether s holds a reference.
func (s SharedSlice[T]) Valid() bool { return s.blk != nil }

// StrongCount returns a snapshot of the number of strong references.
func (s SharedSlice[T]) StrongCount() int64 { return strongCount(s.blk) }

// WeakCount returns a snapshot of the number of weak references.
func (s SharedSlice[T]) WeakCount() int64 { return weakCount(s.blk) }

// Kind returns the layout of the control block, KindNone when empty.
func (s SharedSlice[T]) Kind() BlockKind { return kindOf(s.blk) }

// Clone returns a new strong reference to the same elements.
func (s SharedSlice[T]) Clone() SharedSlice[T] {
	if s.blk == nil {
		return SharedSlice[T]{}
	}
	retainStrong(s.blk)
	return s
}

// Element returns a strong reference to element i that shares ownership of
// the whole slice. It panics if i is out of range.
func (s SharedSlice[T]) Element(i int) Shared[T] {
	p := &s.elems[i]
	retainStrong(s.blk)
	return Shared[T]{ptr: p, blk: s.blk}
}

// Weak returns a weak reference to the elements.
func (s SharedSlice[T]) Weak() WeakSlice[T] {
	return NewWeakSlice(s)
}

// Release drops the reference held by s and leaves s empty. The last release
// destroys every element, last element first, on the calling goroutine.
func (s *SharedSlice[T]) Release() error {
	blk := s.blk
	*s = SharedSlice[T]{}
	if blk == nil {
		return nil
	}
	return releaseStrong(blk)
}

// Reset is an alias for Release.
func (s *SharedSlice[T]) Reset() error { return s.Release() }

// Assign makes s share ownership with o and releases what s held before.
func (s *SharedSlice[T]) Assign(o SharedSlice[T]) error {
	c := o.Clone()
	old := *s
	*s = c
	return old.Release()
}

// Move transfers the reference out of s, leaving s empty.
func (s *SharedSlice[T]) Move() SharedSlice[T] {
	m := *s
	*s = SharedSlice[T]{}
	return m
}

// MoveFrom transfers the reference held by o into s and releases what s held before.
func (s *SharedSlice[T]) MoveFrom(o *SharedSlice[T]) error {
	if s == o {
		return nil
	}
	m := o.Move()
	old := *s
	*s = m
	return old.Release()
}

// Swap exchanges the references held by s and o.
func (s *SharedSlice[T]) Swap(o *SharedSlice[T]) {
	*s, *o = *o, *s
}

func (s SharedSlice[T]) String() string {
	return describe("SharedSlice", reflect.TypeFor[T](), s.blk)
}
