package refgo

import "reflect"

// Weak observes a payload owned by Shared handles without keeping it alive.
// It keeps the control block alive so that Lock can decide safely whether
// the payload still exists.
//
// The zero value is an empty handle. Release every Weak obtained from
// NewWeak, Clone or Move exactly once.
type Weak[T any] struct {
	ptr *T
	blk controlBlock
}

// NewWeak returns a weak reference to the payload of s, or an empty handle
// when s is empty.
func NewWeak[T any](s Shared[T]) Weak[T] {
	if s.blk == nil {
		return Weak[T]{}
	}
	retainWeak(s.blk)
	return Weak[T]{ptr: s.ptr, blk: s.blk}
}

func (w Weak[T]) block() controlBlock { return w.blk }

// Lock returns a strong reference to the payload, or an empty handle if the
// payload has already been destroyed. It never revives a destroyed payload.
func (w Weak[T]) Lock() Shared[T] {
	if w.blk == nil {
		return Shared[T]{}
	}
	ok := tryRetainStrong(w.blk)
	upgraded(w.blk, ok)
	if !ok {
		return Shared[T]{}
	}
	return Shared[T]{ptr: w.ptr, blk: w.blk}
}

// Expired reports whether the payload has been destroyed or w is empty.
func (w Weak[T]) Expired() bool { return strongCount(w.blk) == 0 }

// Valid reports whether w refers to a control block.
func (w Weak[T]) Valid() bool { return w.blk != nil }

// StrongCount returns a snapshot of the number of strong references.
func (w Weak[T]) StrongCount() int64 { return strongCount(w.blk) }

// WeakCount returns a snapshot of the number of weak references.
func (w Weak[T]) WeakCount() int64 { return weakCount(w.blk) }

// Kind returns the layout of the control block, KindNone when empty.
func (w Weak[T]) Kind() BlockKind { return kindOf(w.blk) }

// Clone returns a new weak reference to the same block.
func (w Weak[T]) Clone() Weak[T] {
	if w.blk == nil {
		return Weak[T]{}
	}
	retainWeak(w.blk)
	return w
}

// Release drops the weak reference and leaves w empty. The block is
// reclaimed when this was the last reference of any kind.
func (w *Weak[T]) Release() {
	blk := w.blk
	*w = Weak[T]{}
	if blk != nil {
		releaseWeak(blk)
	}
}

// Reset is an alias for Release.
func (w *Weak[T]) Reset() { w.Release() }

// Assign makes w observe what o observes and releases what w held before.
func (w *Weak[T]) Assign(o Weak[T]) {
	c := o.Clone()
	old := *w
	*w = c
	old.Release()
}

// AssignShared makes w observe the payload of s and releases what w held before.
func (w *Weak[T]) AssignShared(s Shared[T]) {
	n := NewWeak(s)
	old := *w
	*w = n
	old.Release()
}

// Move transfers the reference out of w, leaving w empty.
func (w *Weak[T]) Move() Weak[T] {
	m := *w
	*w = Weak[T]{}
	return m
}

// MoveFrom transfers the reference held by o into w and releases what w held before.
func (w *Weak[T]) MoveFrom(o *Weak[T]) {
	if w == o {
		return
	}
	m := o.Move()
	old := *w
	*w = m
	old.Release()
}

// Swap exchanges the references held by w and o.
func (w *Weak[T]) Swap(o *Weak[T]) {
	*w, *o = *o, *w
}

func (w Weak[T]) String() string {
	return describe("Weak", reflect.TypeFor[T](), w.blk)
}

func upgraded(b controlBlock, ok bool) {
	o, k := b.env(), b.kind()
	o.metricsCollector.RecordUpgrade(k, ok)
	o.logger.LogUpgrade(k, ok)
}
