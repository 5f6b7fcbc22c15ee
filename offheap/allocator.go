package offheap

import (
	"errors"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/refgo/alloc"
	"github.com/hupe1980/refgo/internal/mmap"
)

// ErrClosed is returned when allocating from a closed Allocator.
var ErrClosed = errors.New("offheap: allocator is closed")

// AccessPattern hints how mapped storage will be accessed.
type AccessPattern = mmap.AccessPattern

// Access hints forwarded to madvise(2).
const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
)

// Options configures an Allocator.
type Options struct {
	// MinSize is the smallest request in bytes served from a mapping.
	// Smaller requests go to Fallback. Defaults to the OS page size.
	MinSize int

	// Advice is applied to every new mapping.
	Advice AccessPattern

	// Fallback serves small and pointer-carrying requests. Defaults to alloc.Heap.
	Fallback alloc.Allocator
}

// Stats is a snapshot of Allocator usage.
type Stats struct {
	LiveMappings   int64 // Current: mappings not yet deallocated
	MappedBytes    int64 // Current: bytes held by live mappings
	TotalMappings  int64 // Historical: mappings ever created
	FallbackAllocs int64 // Historical: requests delegated to the fallback
	UnmapErrors    int64 // Historical: failed munmap calls
}

// Allocator serves pointer-free allocations from anonymous mappings.
type Allocator struct {
	opts Options

	mu       sync.Mutex
	mappings map[uintptr]*mmap.Mapping
	closed   bool

	liveMappings   atomic.Int64
	mappedBytes    atomic.Int64
	totalMappings  atomic.Int64
	fallbackAllocs atomic.Int64
	unmapErrors    atomic.Int64
}

var _ alloc.Allocator = (*Allocator)(nil)

// New creates an Allocator.
func New(optFns ...func(o *Options)) *Allocator {
	opts := Options{
		MinSize:  os.Getpagesize(),
		Advice:   AccessDefault,
		Fallback: alloc.Heap{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.MinSize <= 0 {
		opts.MinSize = 1
	}
	if opts.Fallback == nil {
		opts.Fallback = alloc.Heap{}
	}

	return &Allocator{
		opts:     opts,
		mappings: make(map[uintptr]*mmap.Mapping),
	}
}

// Allocate implements alloc.Allocator.
func (a *Allocator) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	size, err := alloc.SizeOf(typ, n)
	if err != nil {
		return nil, err
	}

	if !a.offHeap(typ, size) {
		a.fallbackAllocs.Add(1)
		return a.opts.Fallback.Allocate(typ, n)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	m, err := mmap.MapAnon(int(size))
	if err != nil {
		return nil, err
	}
	if a.opts.Advice != AccessDefault {
		_ = m.Advise(a.opts.Advice)
	}

	p := m.Pointer()
	a.mappings[uintptr(p)] = m

	a.liveMappings.Add(1)
	a.mappedBytes.Add(int64(m.Size()))
	a.totalMappings.Add(1)

	return p, nil
}

// Deallocate implements alloc.Allocator.
func (a *Allocator) Deallocate(p unsafe.Pointer, typ reflect.Type, n int) {
	if p == nil {
		return
	}

	a.mu.Lock()
	m, ok := a.mappings[uintptr(p)]
	if ok {
		delete(a.mappings, uintptr(p))
	}
	a.mu.Unlock()

	if !ok {
		a.opts.Fallback.Deallocate(p, typ, n)
		return
	}

	a.release(m)
}

// Owns reports whether p is the start of a live mapping of this allocator.
func (a *Allocator) Owns(p unsafe.Pointer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.mappings[uintptr(p)]
	return ok
}

// Stats returns the current allocator statistics.
func (a *Allocator) Stats() Stats {
	return Stats{
		LiveMappings:   a.liveMappings.Load(),
		MappedBytes:    a.mappedBytes.Load(),
		TotalMappings:  a.totalMappings.Load(),
		FallbackAllocs: a.fallbackAllocs.Load(),
		UnmapErrors:    a.unmapErrors.Load(),
	}
}

// Close unmaps every mapping that is still live and rejects further
// off-heap allocations. Storage handed out earlier must not be used afterwards.
func (a *Allocator) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	live := a.mappings
	a.mappings = make(map[uintptr]*mmap.Mapping)
	a.mu.Unlock()

	var errs []error
	for _, m := range live {
		if err := a.release(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Allocator) offHeap(typ reflect.Type, size uintptr) bool {
	if size == 0 || size < uintptr(a.opts.MinSize) {
		return false
	}
	return !alloc.HasPointers(typ)
}

func (a *Allocator) release(m *mmap.Mapping) error {
	size := int64(m.Size())
	err := m.Close()
	if err != nil {
		a.unmapErrors.Add(1)
	}
	a.liveMappings.Add(-1)
	a.mappedBytes.Add(-size)
	return err
}
