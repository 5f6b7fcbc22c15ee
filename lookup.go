package refgo

import "reflect"

// GetDeleter returns the deleter stored in the control block of h if its
// static type is exactly D, and nil otherwise. Interface types only match
// blocks that were created with that interface type as D.
func GetDeleter[D any](h Handle) *D {
	return lookup[D](h)
}

// GetAllocator returns the allocator stored in the control block of h if its
// static type is exactly A, and nil otherwise.
func GetAllocator[A any](h Handle) *A {
	return lookup[A](h)
}

func lookup[V any](h Handle) *V {
	if h == nil {
		return nil
	}
	b := h.block()
	if b == nil {
		return nil
	}
	v, _ := b.lookup(reflect.TypeFor[V]()).(*V)
	return v
}
