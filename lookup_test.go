package refgo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/refgo"
	"github.com/hupe1980/refgo/alloc"
	"github.com/hupe1980/refgo/testutil"
)

type countingDeleter struct {
	calls *int
}

func (d countingDeleter) Delete(*int) error {
	*d.calls++
	return nil
}

func TestGetDeleterExactMatch(t *testing.T) {
	calls := 0
	v := 1
	ta := testutil.NewTrackingAllocator(nil)

	s, err := refgo.AdoptWith(&v, countingDeleter{calls: &calls}, ta)
	require.NoError(t, err)

	d := refgo.GetDeleter[countingDeleter](s)
	require.NotNil(t, d)
	assert.Same(t, &calls, d.calls)

	assert.Nil(t, refgo.GetDeleter[*countingDeleter](s), "pointer and value types differ")
	assert.Nil(t, refgo.GetDeleter[refgo.Deleter[*int]](s), "interfaces do not match concrete types")
	assert.Nil(t, refgo.GetDeleter[refgo.DefaultDeleter[int]](s))

	a := refgo.GetAllocator[*testutil.TrackingAllocator](s)
	require.NotNil(t, a)
	assert.Same(t, ta, *a)
	assert.Nil(t, refgo.GetAllocator[alloc.Allocator](s))
	assert.Nil(t, refgo.GetAllocator[alloc.Heap](s))

	w := s.Weak()
	assert.NotNil(t, refgo.GetDeleter[countingDeleter](w), "weak handles can inspect the block")

	require.NoError(t, s.Release())
	assert.Equal(t, 1, calls)
	w.Release()
}

func TestGetDeleterInterfaceType(t *testing.T) {
	v := 1
	var d refgo.Deleter[*int] = refgo.DefaultDeleter[int]{}

	s, err := refgo.AdoptWith(&v, d, alloc.Heap{})
	require.NoError(t, err)
	defer s.Release()

	assert.NotNil(t, refgo.GetDeleter[refgo.Deleter[*int]](s))
	assert.Nil(t, refgo.GetDeleter[refgo.DefaultDeleter[int]](s))
}

func TestGetDeleterDirectBlock(t *testing.T) {
	s, err := refgo.Make(1)
	require.NoError(t, err)
	defer s.Release()

	assert.Nil(t, refgo.GetDeleter[refgo.DefaultDeleter[int]](s), "direct blocks have no deleter")
	assert.NotNil(t, refgo.GetAllocator[alloc.Heap](s))
}

func TestGetDeleterSlice(t *testing.T) {
	s, err := refgo.AdoptSlice([]int{1, 2, 3})
	require.NoError(t, err)
	defer s.Release()

	assert.NotNil(t, refgo.GetDeleter[refgo.DefaultSliceDeleter[int]](s))
	assert.Nil(t, refgo.GetDeleter[refgo.DefaultDeleter[int]](s))
	assert.NotNil(t, refgo.GetAllocator[alloc.Heap](s))

	w := s.Weak()
	defer w.Release()
	assert.NotNil(t, refgo.GetDeleter[refgo.DefaultSliceDeleter[int]](w))
}

func TestGetDeleterEmpty(t *testing.T) {
	var s refgo.Shared[int]
	var w refgo.WeakSlice[int]

	assert.Nil(t, refgo.GetDeleter[refgo.DefaultDeleter[int]](s))
	assert.Nil(t, refgo.GetAllocator[alloc.Heap](w))
	assert.Nil(t, refgo.GetAllocator[alloc.Heap](nil))
}
