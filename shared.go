package refgo

import (
	"fmt"
	"reflect"
)

// Handle is implemented by Shared, SharedSlice, Weak and WeakSlice.
type Handle interface {
	block() controlBlock
}

// Shared owns one strong reference to a payload of type T.
//
// The zero value is an empty handle. Shared is a small value type, but a
// plain Go assignment does not create a reference: use Clone to share
// ownership, Move to transfer it, and Release exactly once per owned copy.
type Shared[T any] struct {
	ptr *T
	blk controlBlock
}

func (s Shared[T]) block() controlBlock { return s.blk }

// Get returns the payload pointer, or nil for an empty handle.
func (s Shared[T]) Get() *T { return s.ptr }

// Valid reports whether s owns a reference. Get may still return nil for a
// handle produced by Convert whose conversion yielded nil.
func (s Shared[T]) Valid() bool { return s.blk != nil }

// StrongCount returns a snapshot of the number of strong references.
// It is racy under concurrent use and meant for diagnostics only.
func (s Shared[T]) StrongCount() int64 { return strongCount(s.blk) }

// WeakCount returns a snapshot of the number of weak references.
func (s Shared[T]) WeakCount() int64 { return weakCount(s.blk) }

// Kind returns the layout of the control block, KindNone when empty.
func (s Shared[T]) Kind() BlockKind { return kindOf(s.blk) }

// Clone returns a new strong reference to the same payload.
func (s Shared[T]) Clone() Shared[T] {
	if s.blk == nil {
		return Shared[T]{}
	}
	retainStrong(s.blk)
	return s
}

// Weak returns a weak reference to the payload.
func (s Shared[T]) Weak() Weak[T] {
	return NewWeak(s)
}

// Release drops the reference held by s and leaves s empty. When it was the
// last strong reference the payload is destroyed on the calling goroutine and
// the deleter's error, if any, is returned as a *DestroyError.
// Releasing an empty handle is a no-op.
func (s *Shared[T]) Release() error {
	blk := s.blk
	*s = Shared[T]{}
	if blk == nil {
		return nil
	}
	return releaseStrong(blk)
}

// Reset is an alias for Release.
func (s *Shared[T]) Reset() error { return s.Release() }

// ResetTo adopts p with the default deleter and releases the previous
// payload. If adoption fails s is left unchanged and p stays owned by the caller.
func (s *Shared[T]) ResetTo(p *T, opts ...Option) error {
	n, err := Adopt(p, opts...)
	if err != nil {
		return err
	}
	old := *s
	*s = n
	return old.Release()
}

// Assign makes s share ownership with o and releases what s held before.
// Assigning a handle to itself is safe.
func (s *Shared[T]) Assign(o Shared[T]) error {
	c := o.Clone()
	old := *s
	*s = c
	return old.Release()
}

// Move transfers the reference out of s, leaving s empty.
func (s *Shared[T]) Move() Shared[T] {
	m := *s
	*s = Shared[T]{}
	return m
}

// MoveFrom transfers the reference held by o into s and releases what s held before.
func (s *Shared[T]) MoveFrom(o *Shared[T]) error {
	if s == o {
		return nil
	}
	m := o.Move()
	old := *s
	*s = m
	return old.Release()
}

// Swap exchanges the references held by s and o.
func (s *Shared[T]) Swap(o *Shared[T]) {
	*s, *o = *o, *s
}

func (s Shared[T]) String() string {
	return describe("Shared", reflect.TypeFor[T](), s.blk)
}

// Convert returns a strong reference to the payload pointer produced by conv
// that shares ownership with s. It serves both for viewing a payload through
// an embedded or related type and for aliasing a pointer into the payload.
// The block is not reallocated, so the deleter still sees the original payload.
// s itself keeps its reference.
func Convert[U, T any](s Shared[T], conv func(*T) *U) Shared[U] {
	if s.blk == nil {
		return Shared[U]{}
	}
	p := conv(s.ptr)
	retainStrong(s.blk)
	return Shared[U]{ptr: p, blk: s.blk}
}

// SameOwner reports whether a and b refer to the same non-empty control block.
func SameOwner(a, b Handle) bool {
	ab := a.block()
	return ab != nil && ab == b.block()
}

func describe(name string, typ reflect.Type, blk controlBlock) string {
	if blk == nil {
		return fmt.Sprintf("refgo.%s[%s](empty)", name, typ)
	}
	return fmt.Sprintf("refgo.%s[%s](kind=%s, strong=%d, weak=%d)", name, typ, blk.kind(), strongCount(blk), weakCount(blk))
}
