package arena

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/refgo/alloc"
	"github.com/hupe1980/refgo/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrClosed is returned when allocating from a closed Arena.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
)

// Options configures an Arena.
type Options struct {
	// ChunkSize is the size of a shared chunk, rounded up to the page size.
	// Requests larger than a quarter chunk get a dedicated mapping.
	ChunkSize int

	// Fallback serves pointer-carrying and zero-size requests. Defaults to alloc.Heap.
	Fallback alloc.Allocator

	// Acquirer, if set, is charged for every chunk before it is mapped.
	Acquirer MemoryAcquirer
}

// Stats tracks arena memory usage metrics.
type Stats struct {
	ActiveChunks    int64 // Current: chunks still mapped
	BytesReserved   int64 // Current: bytes held by mapped chunks
	LiveAllocs      int64 // Current: allocations not yet deallocated
	ChunksAllocated int64 // Historical: chunks ever mapped
	ChunksReclaimed int64 // Historical: chunks unmapped after their last deallocation
	TotalAllocs     int64 // Historical: allocations served from chunks
	BytesUsed       int64 // Historical: bytes requested from chunks (before alignment)
	FallbackAllocs  int64 // Historical: requests delegated to the fallback
}

type atomicStats struct {
	ActiveChunks    atomic.Int64
	BytesReserved   atomic.Int64
	LiveAllocs      atomic.Int64
	ChunksAllocated atomic.Int64
	ChunksReclaimed atomic.Int64
	TotalAllocs     atomic.Int64
	BytesUsed       atomic.Int64
	FallbackAllocs  atomic.Int64
}

type chunk struct {
	mapping   *mmap.Mapping
	base      uintptr
	size      int
	offset    atomic.Int64 // MUST be atomic - bumped concurrently without locks
	live      atomic.Int64 // outstanding allocations; -1 once retired
	dedicated bool
}

// pin registers an allocation in flight. It fails once the chunk is retired.
func (c *chunk) pin() bool {
	for {
		n := c.live.Load()
		if n < 0 {
			return false
		}
		if c.live.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *chunk) bump(size, align uintptr) (unsafe.Pointer, bool) {
	for {
		old := c.offset.Load()
		start := alignUp(c.base+uintptr(old), align) - c.base
		end := start + size
		if end > uintptr(c.size) {
			return nil, false
		}
		if c.offset.CompareAndSwap(old, int64(end)) {
			return c.pointer(start), true
		}
	}
}

func (c *chunk) pointer(off uintptr) unsafe.Pointer {
	return unsafe.Add(c.mapping.Pointer(), off) //nolint:gosec // unsafe is required for arena implementation
}

func (c *chunk) contains(p uintptr) bool {
	return p >= c.base && p < c.base+uintptr(c.size)
}

// Arena is a chunked off-heap allocator.
type Arena struct {
	opts Options

	mu      sync.Mutex
	chunks  []*chunk
	current atomic.Pointer[chunk]
	closed  atomic.Bool

	stats atomicStats
}

var _ alloc.Allocator = (*Arena)(nil)

// New creates an Arena. No memory is mapped until the first allocation.
func New(optFns ...func(o *Options)) *Arena {
	opts := Options{
		ChunkSize: DefaultChunkSize,
		Fallback:  alloc.Heap{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	opts.ChunkSize = int(alignUp(uintptr(opts.ChunkSize), uintptr(os.Getpagesize())))
	if opts.Fallback == nil {
		opts.Fallback = alloc.Heap{}
	}

	return &Arena{opts: opts}
}

// Allocate implements alloc.Allocator.
func (a *Arena) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, alloc.ErrInvalidCount
	}
	size, err := alloc.SizeOf(typ, n)
	if err != nil {
		return nil, err
	}

	if size == 0 || alloc.HasPointers(typ) {
		a.stats.FallbackAllocs.Add(1)
		return a.opts.Fallback.Allocate(typ, n)
	}

	if a.closed.Load() {
		return nil, ErrClosed
	}

	if size > uintptr(a.opts.ChunkSize/4) {
		return a.allocDedicated(size)
	}

	align := uintptr(typ.Align())
	for {
		c := a.current.Load()
		if c != nil && c.pin() {
			if p, ok := c.bump(size, align); ok {
				a.allocated(size)
				return p, nil
			}
			a.unpin(c)
		}
		if err := a.grow(c); err != nil {
			return nil, err
		}
	}
}

// Deallocate implements alloc.Allocator.
func (a *Arena) Deallocate(p unsafe.Pointer, typ reflect.Type, n int) {
	if p == nil {
		return
	}

	c := a.find(uintptr(p))
	if c == nil {
		a.opts.Fallback.Deallocate(p, typ, n)
		return
	}

	a.stats.LiveAllocs.Add(-1)
	a.unpin(c)
}

// Owns reports whether p lies in a chunk of this arena.
func (a *Arena) Owns(p unsafe.Pointer) bool {
	return a.find(uintptr(p)) != nil
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		ActiveChunks:    a.stats.ActiveChunks.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		LiveAllocs:      a.stats.LiveAllocs.Load(),
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		ChunksReclaimed: a.stats.ChunksReclaimed.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		FallbackAllocs:  a.stats.FallbackAllocs.Load(),
	}
}

// Close unmaps every chunk and rejects further off-heap allocations.
// Storage handed out earlier must not be used afterwards.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	a.mu.Lock()
	a.current.Store(nil)
	live := a.chunks
	a.chunks = nil
	a.mu.Unlock()

	var errs []error
	for _, c := range live {
		c.live.Store(-1)
		if err := a.unmap(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Arena) allocated(size uintptr) {
	a.stats.LiveAllocs.Add(1)
	a.stats.TotalAllocs.Add(1)
	a.stats.BytesUsed.Add(int64(size))
}

func (a *Arena) allocDedicated(size uintptr) (unsafe.Pointer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return nil, ErrClosed
	}

	c, err := a.mapChunk(int(size), true)
	if err != nil {
		return nil, err
	}
	c.live.Store(1)
	c.offset.Store(int64(size))
	a.allocated(size)
	return c.pointer(0), nil
}

// grow replaces seen as the current chunk unless another goroutine already did.
func (a *Arena) grow(seen *chunk) error {
	a.mu.Lock()
	if a.closed.Load() {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.current.Load() != seen {
		a.mu.Unlock()
		return nil
	}

	c, err := a.mapChunk(a.opts.ChunkSize, false)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	a.current.Store(c)
	a.mu.Unlock()

	if seen != nil {
		a.tryReclaim(seen)
	}
	return nil
}

func (a *Arena) unpin(c *chunk) {
	if c.live.Add(-1) == 0 && a.current.Load() != c {
		a.tryReclaim(c)
	}
}

// tryReclaim unmaps a retired chunk once nothing is allocated from it.
func (a *Arena) tryReclaim(c *chunk) {
	a.mu.Lock()
	if a.current.Load() == c || !c.live.CompareAndSwap(0, -1) {
		a.mu.Unlock()
		return
	}
	idx := slices.Index(a.chunks, c)
	if idx < 0 {
		a.mu.Unlock()
		return
	}
	a.chunks = slices.Delete(a.chunks, idx, idx+1)
	a.mu.Unlock()

	_ = a.unmap(c)
	a.stats.ChunksReclaimed.Add(1)
}

func (a *Arena) find(p uintptr) *chunk {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.chunks {
		if c.contains(p) {
			return c
		}
	}
	return nil
}

// mapChunk must be called with a.mu held.
func (a *Arena) mapChunk(size int, dedicated bool) (*chunk, error) {
	if a.opts.Acquirer != nil {
		if err := a.opts.Acquirer.AcquireMemory(int64(size)); err != nil {
			return nil, err
		}
	}

	// Use off-heap anonymous mapping to avoid GC pressure
	m, err := mmap.MapAnon(size)
	if err != nil {
		if a.opts.Acquirer != nil {
			a.opts.Acquirer.ReleaseMemory(int64(size))
		}
		return nil, fmt.Errorf("arena: map chunk: %w", err)
	}

	c := &chunk{
		mapping:   m,
		base:      uintptr(m.Pointer()),
		size:      size,
		dedicated: dedicated,
	}
	a.chunks = append(a.chunks, c)

	a.stats.ChunksAllocated.Add(1)
	a.stats.ActiveChunks.Add(1)
	a.stats.BytesReserved.Add(int64(size))

	return c, nil
}

func (a *Arena) unmap(c *chunk) error {
	err := c.mapping.Close()
	if a.opts.Acquirer != nil {
		a.opts.Acquirer.ReleaseMemory(int64(c.size))
	}
	a.stats.ActiveChunks.Add(-1)
	a.stats.BytesReserved.Add(-int64(c.size))
	return err
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
