package offheap

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/refgo/alloc"
)

type countingHeap struct {
	allocs   int
	deallocs int
}

func (c *countingHeap) Allocate(typ reflect.Type, n int) (unsafe.Pointer, error) {
	c.allocs++
	return alloc.Heap{}.Allocate(typ, n)
}

func (c *countingHeap) Deallocate(p unsafe.Pointer, typ reflect.Type, n int) {
	c.deallocs++
}

func TestAllocator_MapsPointerFreeStorage(t *testing.T) {
	a := New(func(o *Options) { o.MinSize = 1024 })
	defer a.Close()

	s, err := alloc.Slice[float32](a, 4096)
	require.NoError(t, err)
	require.Len(t, s, 4096)

	assert.True(t, a.Owns(unsafe.Pointer(&s[0])))
	for i := range s {
		s[i] = float32(i)
	}
	assert.Equal(t, float32(4095), s[4095])

	stats := a.Stats()
	assert.Equal(t, int64(1), stats.LiveMappings)
	assert.Equal(t, int64(4096*4), stats.MappedBytes)

	alloc.FreeSlice(a, s)

	stats = a.Stats()
	assert.Equal(t, int64(0), stats.LiveMappings)
	assert.Equal(t, int64(0), stats.MappedBytes)
	assert.Equal(t, int64(1), stats.TotalMappings)
}

func TestAllocator_FallsBack(t *testing.T) {
	fb := &countingHeap{}
	a := New(func(o *Options) {
		o.MinSize = 1024
		o.Fallback = fb
	})
	defer a.Close()

	t.Run("small request", func(t *testing.T) {
		s, err := alloc.Slice[byte](a, 16)
		require.NoError(t, err)
		assert.False(t, a.Owns(unsafe.Pointer(&s[0])))
		alloc.FreeSlice(a, s)
	})

	t.Run("pointer-carrying type", func(t *testing.T) {
		s, err := alloc.Slice[*int](a, 4096)
		require.NoError(t, err)
		assert.False(t, a.Owns(unsafe.Pointer(&s[0])))
		alloc.FreeSlice(a, s)
	})

	assert.Equal(t, 2, fb.allocs)
	assert.Equal(t, 2, fb.deallocs)
	assert.Equal(t, int64(2), a.Stats().FallbackAllocs)
	assert.Equal(t, int64(0), a.Stats().TotalMappings)
}

func TestAllocator_Close(t *testing.T) {
	a := New(func(o *Options) { o.MinSize = 1 })

	_, err := alloc.Slice[uint64](a, 512)
	require.NoError(t, err)
	_, err = alloc.Slice[uint64](a, 512)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.Stats().LiveMappings)

	require.NoError(t, a.Close())
	assert.Equal(t, int64(0), a.Stats().LiveMappings)

	_, err = alloc.Slice[uint64](a, 512)
	assert.ErrorIs(t, err, ErrClosed)

	// Idempotent
	assert.NoError(t, a.Close())
}

func TestAllocator_Advice(t *testing.T) {
	a := New(func(o *Options) {
		o.MinSize = 1
		o.Advice = AccessSequential
	})
	defer a.Close()

	p, err := alloc.New[[8192]byte](a, 1)
	require.NoError(t, err)
	p[8191] = 1
	alloc.Free(a, p, 1)
}

func TestNew_Defaults(t *testing.T) {
	a := New(nil, func(o *Options) {
		o.MinSize = -1
		o.Fallback = nil
	})
	defer a.Close()

	assert.Equal(t, 1, a.opts.MinSize)
	assert.Equal(t, alloc.Heap{}, a.opts.Fallback)
}
