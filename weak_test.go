package refgo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/refgo"
	"github.com/hupe1980/refgo/testutil"
)

func TestWeakLock(t *testing.T) {
	s, err := refgo.Make(42)
	require.NoError(t, err)

	w := refgo.NewWeak(s)
	defer w.Release()
	assert.Equal(t, int64(1), w.WeakCount())
	assert.Equal(t, refgo.KindDirect, w.Kind())

	l := w.Lock()
	require.True(t, l.Valid())
	assert.Equal(t, 42, *l.Get())
	assert.Equal(t, int64(2), s.StrongCount())
	require.NoError(t, l.Release())

	require.NoError(t, s.Release())
	assert.True(t, w.Expired())

	l = w.Lock()
	assert.False(t, l.Valid())
	assert.Zero(t, l.StrongCount())
	assert.Zero(t, w.StrongCount(), "a failed lock never advances from zero")
}

func TestWeakEmpty(t *testing.T) {
	var w refgo.Weak[string]

	assert.False(t, w.Valid())
	assert.True(t, w.Expired())
	assert.False(t, w.Lock().Valid())
	assert.Equal(t, refgo.KindNone, w.Kind())
	assert.False(t, w.Clone().Valid())
	assert.Equal(t, "refgo.Weak[string](empty)", w.String())
	w.Release()
}

func TestWeakKeepsBlockNotPayload(t *testing.T) {
	var lc testutil.Lifecycle
	ta := testutil.NewTrackingAllocator(nil)

	s, err := refgo.AdoptWith(lc.New(1), refgo.DefaultDeleter[testutil.Tracked]{}, ta)
	require.NoError(t, err)
	w := s.Weak()

	require.NoError(t, s.Release())
	assert.Equal(t, int64(1), lc.Destroyed(), "weak references do not keep the payload alive")
	assert.Equal(t, uint64(1), ta.Live(), "the block stays until the last weak reference")

	w.Release()
	assert.True(t, ta.Balanced())
}

func TestWeakCloneAssignMove(t *testing.T) {
	ta := testutil.NewTrackingAllocator(nil)

	s, err := refgo.Allocate(ta, "payload")
	require.NoError(t, err)

	w1 := s.Weak()
	w2 := w1.Clone()
	assert.Equal(t, int64(2), s.WeakCount())

	var w3 refgo.Weak[string]
	w3.Assign(w2)
	assert.Equal(t, int64(3), s.WeakCount())

	w3.Assign(w3)
	assert.Equal(t, int64(3), s.WeakCount())

	w4 := w3.Move()
	assert.False(t, w3.Valid())
	assert.Equal(t, int64(3), s.WeakCount())

	w3.MoveFrom(&w4)
	assert.False(t, w4.Valid())
	w3.MoveFrom(&w3)
	assert.True(t, w3.Valid())

	w1.Swap(&w4)
	assert.False(t, w1.Valid())
	assert.True(t, w4.Valid())

	var w5 refgo.Weak[string]
	w5.AssignShared(s)
	assert.Equal(t, int64(4), s.WeakCount())

	require.NoError(t, s.Release())

	l := w5.Lock()
	assert.False(t, l.Valid())

	w2.Release()
	w3.Reset()
	w4.Release()
	assert.Equal(t, uint64(1), ta.Live())
	w5.Release()

	assert.True(t, ta.Balanced())
}

func TestWeakSlice(t *testing.T) {
	var lc testutil.Lifecycle
	ta := testutil.NewTrackingAllocator(nil)

	s, err := refgo.AllocateSliceFunc(ta, 3, lc.Constructor(-1))
	require.NoError(t, err)

	w := s.Weak()
	assert.Equal(t, refgo.KindIndirectSlice, w.Kind())
	assert.Equal(t, int64(1), w.WeakCount())

	l := w.Lock()
	require.True(t, l.Valid())
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.At(2).ID)
	require.NoError(t, l.Release())

	c := w.Clone()
	var a refgo.WeakSlice[testutil.Tracked]
	a.Assign(c)
	m := a.Move()
	a.MoveFrom(&m)
	a.Swap(&m)
	assert.Equal(t, int64(3), s.WeakCount())

	require.NoError(t, s.Release())
	assert.True(t, w.Expired())
	assert.False(t, w.Lock().Valid())
	assert.Equal(t, []int{2, 1, 0}, lc.DestroyOrder())
	assert.Equal(t, "refgo.WeakSlice[testutil.Tracked](kind=indirect-slice, strong=0, weak=3)", w.String())

	w.Release()
	c.Reset()
	m.Release()
	a.Release()
	assert.True(t, ta.Balanced())

	var empty refgo.WeakSlice[int]
	assert.True(t, empty.Expired())
	assert.False(t, empty.Valid())
	assert.False(t, empty.Lock().Valid())
	assert.Zero(t, empty.StrongCount())
	assert.False(t, refgo.NewWeakSlice(refgo.SharedSlice[int]{}).Valid())
}
