package alloc

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/refgo/internal/conv"
)

var (
	// ErrInvalidCount is returned when an allocation is requested for a non-positive count.
	ErrInvalidCount = errors.New("alloc: count must be positive")
	// ErrNilStorage is returned when an allocator reports success without storage.
	ErrNilStorage = errors.New("alloc: allocator returned nil storage")
)

// Allocator provides storage for contiguous values of a given type.
type Allocator interface {
	// Allocate returns zeroed storage for n values of typ.
	Allocate(typ reflect.Type, n int) (unsafe.Pointer, error)

	// Deallocate returns storage obtained from Allocate with the same typ and n.
	Deallocate(p unsafe.Pointer, typ reflect.Type, n int)
}

// Heap allocates from the Go heap. Deallocate is a no-op; the garbage
// collector reclaims the storage once it is unreachable.
type Heap struct{}

// Allocate implements Allocator.
func (Heap) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	if _, err := SizeOf(typ, n); err != nil {
		return nil, err
	}
	if n == 1 {
		return reflect.New(typ).UnsafePointer(), nil
	}
	return reflect.New(reflect.ArrayOf(n, typ)).UnsafePointer(), nil
}

// Deallocate implements Allocator.
func (Heap) Deallocate(unsafe.Pointer, reflect.Type, int) {}

// SizeOf returns the byte size of n values of typ.
func SizeOf(typ reflect.Type, n int) (uintptr, error) {
	size, err := conv.MulSize(typ.Size(), n)
	if err != nil {
		return 0, fmt.Errorf("alloc: %s: %w", typ, err)
	}
	return size, nil
}

// New allocates storage for n values of T from a and returns a pointer to the first.
func New[T any](a Allocator, n int) (*T, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	p, err := a.Allocate(reflect.TypeFor[T](), n)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNilStorage
	}
	return (*T)(p), nil
}

// Free returns storage obtained from New with the same n.
func Free[T any](a Allocator, p *T, n int) {
	if p == nil {
		return
	}
	a.Deallocate(unsafe.Pointer(p), reflect.TypeFor[T](), n)
}

// Slice allocates n values of T from a and returns them as a slice with len and cap n.
func Slice[T any](a Allocator, n int) ([]T, error) {
	p, err := New[T](a, n)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice(p, n), nil
}

// FreeSlice returns storage obtained from Slice. s must have the length it was allocated with.
func FreeSlice[T any](a Allocator, s []T) {
	if len(s) == 0 {
		return
	}
	a.Deallocate(unsafe.Pointer(unsafe.SliceData(s)), reflect.TypeFor[T](), len(s))
}
