package refgo

import (
	"reflect"

	"github.com/hupe1980/refgo/alloc"
)

// indirectBlock references a payload that lives outside the block. P is *T
// for adopted scalars and []T for slices.
type indirectBlock[P any, D Deleter[P], A alloc.Allocator] struct {
	counts
	payload P
	deleter D
	alloc   A
	opts    *options
	k       BlockKind
}

func (b *indirectBlock[P, D, A]) refs() *counts { return &b.counts }

func (b *indirectBlock[P, D, A]) kind() BlockKind { return b.k }

func (b *indirectBlock[P, D, A]) env() *options { return b.opts }

func (b *indirectBlock[P, D, A]) destroyObject() error {
	p := b.payload
	var zero P
	b.payload = zero
	return b.deleter.Delete(p)
}

func (b *indirectBlock[P, D, A]) destroyBlock() {
	alloc.Free(b.alloc, b, 1)
}

func (b *indirectBlock[P, D, A]) lookup(key reflect.Type) any {
	switch key {
	case reflect.TypeFor[D]():
		return &b.deleter
	case reflect.TypeFor[A]():
		return &b.alloc
	default:
		return nil
	}
}

// newIndirect allocates an indirect block from a. The counters are left at
// zero; the caller initializes them once the payload is in place.
func newIndirect[P any, D Deleter[P], A alloc.Allocator](a A, d D, o *options, k BlockKind, elem reflect.Type, n int) (*indirectBlock[P, D, A], error) {
	b, err := alloc.New[indirectBlock[P, D, A]](a, 1)
	if err != nil {
		return nil, &AllocError{Kind: k, Type: elem, Count: n, cause: err}
	}
	b.deleter = d
	b.alloc = a
	b.opts = o
	b.k = k
	return b, nil
}
