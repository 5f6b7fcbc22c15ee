package refgo_test

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/refgo"
	"github.com/hupe1980/refgo/testutil"
)

type guardedCounter struct {
	n    atomic.Int64
	dead *atomic.Bool
}

func (c *guardedCounter) Close() error {
	c.dead.Store(true)
	return nil
}

func newGuardedCounter(dead *atomic.Bool) func(*guardedCounter) error {
	return func(c *guardedCounter) error {
		c.dead = dead
		return nil
	}
}

func TestConcurrentCloneMutateRelease(t *testing.T) {
	const (
		goroutines = 16
		iterations = 2000
	)

	ta := testutil.NewTrackingAllocator(nil)
	var dead atomic.Bool
	var destroyedEarly atomic.Int64

	root, err := refgo.AllocateFunc(ta, newGuardedCounter(&dead))
	require.NoError(t, err)

	var g errgroup.Group
	for range goroutines {
		h := root.Clone()
		g.Go(func() error {
			defer h.Release()
			for range iterations {
				c := h.Clone()
				if c.Get().dead.Load() {
					destroyedEarly.Add(1)
				}
				c.Get().n.Add(1)
				if err := c.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Zero(t, destroyedEarly.Load())
	assert.Equal(t, int64(goroutines*iterations), root.Get().n.Load(), "no lost updates")
	assert.Equal(t, int64(1), root.StrongCount())

	require.NoError(t, root.Release())
	assert.True(t, dead.Load())
	assert.True(t, ta.Balanced())
}

func TestConcurrentLockRacesRelease(t *testing.T) {
	const rounds = 500

	for range rounds {
		var dead atomic.Bool
		ta := testutil.NewTrackingAllocator(nil)

		s, err := refgo.AllocateFunc(ta, newGuardedCounter(&dead))
		require.NoError(t, err)

		const lockers = 4
		weaks := make([]refgo.Weak[guardedCounter], lockers)
		for i := range weaks {
			weaks[i] = s.Weak()
		}

		var g errgroup.Group

		g.Go(func() error {
			runtime.Gosched()
			return s.Release()
		})

		for i := range weaks {
			w := weaks[i]
			g.Go(func() error {
				defer w.Release()
				for range 8 {
					l := w.Lock()
					if !l.Valid() {
						assert.True(t, w.Expired())
						return nil
					}
					if p := l.Get(); p.dead == nil || p.dead.Load() {
						t.Error("lock returned a destroyed payload")
					}
					l.Get().n.Add(1)
					if err := l.Release(); err != nil {
						return err
					}
				}
				return nil
			})
		}

		require.NoError(t, g.Wait())
		assert.True(t, dead.Load(), "the payload is destroyed exactly when the last strong reference goes")
		assert.True(t, ta.Balanced())
	}
}

func TestConcurrentWeakChurn(t *testing.T) {
	ta := testutil.NewTrackingAllocator(nil)
	metrics := &refgo.BasicMetricsCollector{}

	s, err := refgo.AllocateSlice[int64](ta, 32, refgo.WithMetricsCollector(metrics))
	require.NoError(t, err)

	var g errgroup.Group
	for range 8 {
		w := s.Weak()
		g.Go(func() error {
			defer w.Release()
			for range 1000 {
				c := w.Clone()
				l := c.Lock()
				if l.Valid() {
					_ = *l.At(0)
				}
				c.Release()
				if err := l.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, s.Release())
	assert.True(t, ta.Balanced())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CreateCount)
	assert.Equal(t, int64(1), stats.DestroyCount)
	assert.Equal(t, int64(1), stats.ReclaimCount)
	assert.Equal(t, int64(8000), stats.UpgradeCount)
	assert.Zero(t, stats.UpgradeFailures)
	assert.Zero(t, stats.LiveBlocks)
}
