package refgo

import "reflect"

// WeakSlice observes a slice payload owned by SharedSlice handles.
type WeakSlice[T any] struct {
	elems []T
	blk   controlBlock
}

// NewWeakSlice returns a weak reference to the elements of s, or an empty
// handle when s is empty.
func NewWeakSlice[T any](s SharedSlice[T]) WeakSlice[T] {
	if s.blk == nil {
		return WeakSlice[T]{}
	}
	retainWeak(s.blk)
	return WeakSlice[T]{elems: s.elems, blk: s.blk}
}

func (w WeakSlice[T]) block() controlBlock { return w.blk }

// Lock returns a strong reference to the elements, or an empty handle if
// they have already been destroyed.
func (w WeakSlice[T]) Lock() SharedSlice[T] {
	if w.blk == nil {
		return SharedSlice[T]{}
	}
	ok := tryRetainStrong(w.blk)
	upgraded(w.blk, ok)
	if !ok {
		return SharedSlice[T]{}
	}
	return SharedSlice[T]{elems: w.elems, blk: w.blk}
}

// Expired reports whether the elements have been destroyed or w is empty.
func (w WeakSlice[T]) Expired() bool { return strongCount(w.blk) == 0 }

// Valid reports whether w refers to a control block.
func (w WeakSlice[T]) Valid() bool { return w.blk != nil }

// StrongCount returns a snapshot of the number of strong references.
func (w WeakSlice[T]) StrongCount() int64 { return strongCount(w.blk) }

// WeakCount returns a snapshot of the number of weak references.
func (w WeakSlice[T]) WeakCount() int64 { return weakCount(w.blk) }

// Kind returns the layout of the control block, KindNone when empty.
func (w WeakSlice[T]) Kind() BlockKind { return kindOf(w.blk) }

// Clone returns a new weak reference to the same block.
func (w WeakSlice[T]) Clone() WeakSlice[T] {
	if w.blk == nil {
		return WeakSlice[T]{}
	}
	retainWeak(w.blk)
	return w
}

// Release drops the weak reference and leaves w empty.
func (w *WeakSlice[T]) Release() {
	blk := w.blk
	*w = WeakSlice[T]{}
	if blk != nil {
		releaseWeak(blk)
	}
}

// Reset is an alias for Release.
func (w *WeakSlice[T]) Reset() { w.Release() }

// Assign makes w observe what o observes and releases what w held before.
func (w *WeakSlice[T]) Assign(o WeakSlice[T]) {
	c := o.Clone()
	old := *w
	*w = c
	old.Release()
}

// Move transfers the reference out of w, leaving w empty.
func (w *WeakSlice[T]) Move() WeakSlice[T] {
	m := *w
	*w = WeakSlice[T]{}
	return m
}

// MoveFrom transfers the reference held by o into w and releases what w held before.
func (w *WeakSlice[T]) MoveFrom(o *WeakSlice[T]) {
	if w == o {
		return
	}
	m := o.Move()
	old := *w
	*w = m
	old.Release()
}

// Swap exchanges the references held by w and o.
func (w *WeakSlice[T]) Swap(o *WeakSlice[T]) {
	*w, *o = *o, *w
}

func (w WeakSlice[T]) String() string {
	return describe("WeakSlice", reflect.TypeFor[T](), w.blk)
}
