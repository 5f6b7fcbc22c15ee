package testutil

import (
	"sync"
	"sync/atomic"
)

// Lifecycle counts constructions and destructions of Tracked values.
// The zero value is ready to use.
type Lifecycle struct {
	constructed atomic.Int64
	destroyed   atomic.Int64

	mu    sync.Mutex
	order []int
}

// Tracked is a payload whose Close is recorded by the Lifecycle that built it.
type Tracked struct {
	ID  int
	Err error

	lc *Lifecycle
}

// Init constructs t with the given ID.
func (l *Lifecycle) Init(id int, t *Tracked) error {
	t.ID = id
	t.lc = l
	l.constructed.Add(1)
	return nil
}

// New returns a constructed Tracked.
func (l *Lifecycle) New(id int) *Tracked {
	t := &Tracked{}
	_ = l.Init(id, t)
	return t
}

// Constructor returns an element constructor that fails with ErrInjected at
// index failAt. A negative failAt never fails.
func (l *Lifecycle) Constructor(failAt int) func(int, *Tracked) error {
	return func(i int, t *Tracked) error {
		if i == failAt {
			return ErrInjected
		}
		return l.Init(i, t)
	}
}

// PanickingConstructor is like Constructor but panics at index panicAt.
func (l *Lifecycle) PanickingConstructor(panicAt int) func(int, *Tracked) error {
	return func(i int, t *Tracked) error {
		if i == panicAt {
			panic(ErrInjected)
		}
		return l.Init(i, t)
	}
}

// Constructed returns how many values were constructed.
func (l *Lifecycle) Constructed() int64 { return l.constructed.Load() }

// Destroyed returns how many values were closed.
func (l *Lifecycle) Destroyed() int64 { return l.destroyed.Load() }

// Live returns constructed minus destroyed.
func (l *Lifecycle) Live() int64 { return l.constructed.Load() - l.destroyed.Load() }

// DestroyOrder returns the IDs of closed values in the order they were closed.
func (l *Lifecycle) DestroyOrder() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.order...)
}

// Close records the destruction. Closing a value that was never constructed
// is a no-op. Err, if set, is returned.
func (t *Tracked) Close() error {
	if t.lc == nil {
		return nil
	}
	t.lc.destroyed.Add(1)
	t.lc.mu.Lock()
	t.lc.order = append(t.lc.order, t.ID)
	t.lc.mu.Unlock()
	return t.Err
}
