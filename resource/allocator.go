package resource

import (
	"reflect"
	"unsafe"

	"github.com/hupe1980/refgo/alloc"
	"github.com/hupe1980/refgo/internal/conv"
)

// Allocator charges every allocation against a Controller before delegating
// to an upstream allocator.
type Allocator struct {
	ctrl     *Controller
	upstream alloc.Allocator
}

var _ alloc.Allocator = (*Allocator)(nil)

// NewAllocator creates an Allocator. A nil upstream means alloc.Heap.
func NewAllocator(ctrl *Controller, upstream alloc.Allocator) *Allocator {
	if upstream == nil {
		upstream = alloc.Heap{}
	}
	return &Allocator{
		ctrl:     ctrl,
		upstream: upstream,
	}
}

// Controller returns the controller budgets are charged against.
func (a *Allocator) Controller() *Controller {
	return a.ctrl
}

// Allocate implements alloc.Allocator.
func (a *Allocator) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	bytes, err := byteSize(typ, n)
	if err != nil {
		return nil, err
	}

	if !a.ctrl.AllowAllocation() {
		return nil, ErrRateLimited
	}

	if err := a.ctrl.AcquireMemory(bytes); err != nil {
		return nil, err
	}

	p, err := a.upstream.Allocate(typ, n)
	if err != nil {
		a.ctrl.ReleaseMemory(bytes)
		return nil, err
	}
	return p, nil
}

// Deallocate implements alloc.Allocator.
func (a *Allocator) Deallocate(p unsafe.Pointer, typ reflect.Type, n int) {
	a.upstream.Deallocate(p, typ, n)

	bytes, err := byteSize(typ, n)
	if err != nil {
		return
	}
	a.ctrl.ReleaseMemory(bytes)
}

func byteSize(typ reflect.Type, n int) (int64, error) {
	size, err := alloc.SizeOf(typ, n)
	if err != nil {
		return 0, err
	}
	return conv.UintptrToInt64(size)
}
