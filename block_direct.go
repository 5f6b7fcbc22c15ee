package refgo

import (
	"reflect"

	"github.com/hupe1980/refgo/alloc"
)

// directBlock colocates the counters and the payload in one allocation.
type directBlock[T any, A alloc.Allocator] struct {
	counts
	value T
	alloc A
	opts  *options
}

func (b *directBlock[T, A]) refs() *counts { return &b.counts }

func (b *directBlock[T, A]) kind() BlockKind { return KindDirect }

func (b *directBlock[T, A]) env() *options { return b.opts }

func (b *directBlock[T, A]) destroyObject() error {
	return destroyValue(&b.value)
}

func (b *directBlock[T, A]) destroyBlock() {
	alloc.Free(b.alloc, b, 1)
}

func (b *directBlock[T, A]) lookup(key reflect.Type) any {
	if key == reflect.TypeFor[A]() {
		return &b.alloc
	}
	return nil
}

// newDirect allocates a block for T from a and runs ctor on the colocated
// storage. A failing or panicking ctor gives the storage back before the
// error is returned or the panic continues.
func newDirect[T any, A alloc.Allocator](a A, ctor func(*T) error, o *options) (*directBlock[T, A], error) {
	b, err := alloc.New[directBlock[T, A]](a, 1)
	if err != nil {
		return nil, &AllocError{Kind: KindDirect, Type: reflect.TypeFor[T](), Count: 1, cause: err}
	}

	if ctor != nil {
		err := guard(func() error {
			if err := ctor(&b.value); err != nil {
				return &ConstructError{Index: -1, cause: err}
			}
			return nil
		}, func() {
			alloc.Free(a, b, 1)
		})
		if err != nil {
			return nil, err
		}
	}

	b.alloc = a
	b.opts = o
	b.counts.init()
	return b, nil
}

// guard runs fn and calls unwind when fn returns an error or panics.
func guard(fn func() error, unwind func()) (err error) {
	done := false
	defer func() {
		if !done {
			unwind()
		}
	}()
	err = fn()
	done = err == nil
	return err
}
