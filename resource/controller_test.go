package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	rc := NewController(Config{
		MemoryLimitBytes: 100,
	})

	require.NoError(t, rc.AcquireMemory(50))
	assert.Equal(t, int64(50), rc.MemoryUsage())

	require.NoError(t, rc.AcquireMemory(50))
	assert.Equal(t, int64(100), rc.MemoryUsage())

	err := rc.AcquireMemory(1)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(1), rc.Rejected())

	rc.ReleaseMemory(50)
	assert.Equal(t, int64(50), rc.MemoryUsage())
	assert.Equal(t, int64(100), rc.PeakMemoryUsage())

	require.NoError(t, rc.AcquireMemory(10))
	assert.Equal(t, int64(60), rc.MemoryUsage())
}

func TestController_TrackingOnly(t *testing.T) {
	rc := NewController(Config{})

	require.NoError(t, rc.AcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), rc.MemoryUsage())
	assert.Equal(t, int64(0), rc.MemoryLimit())

	rc.ReleaseMemory(1 << 40)
	assert.Zero(t, rc.MemoryUsage())
}

func TestController_NilSafe(t *testing.T) {
	var rc *Controller

	assert.NoError(t, rc.AcquireMemory(1))
	assert.NoError(t, rc.WaitMemory(context.Background(), 1))
	rc.ReleaseMemory(1)
	assert.Zero(t, rc.MemoryUsage())
	assert.Zero(t, rc.PeakMemoryUsage())
	assert.Zero(t, rc.MemoryLimit())
	assert.True(t, rc.AllowAllocation())
	assert.NoError(t, rc.WaitAllocation(context.Background()))
}

func TestController_WaitMemory(t *testing.T) {
	rc := NewController(Config{
		MemoryLimitBytes: 100,
	})

	require.NoError(t, rc.AcquireMemory(100))

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan error, 1)
	go func() {
		defer wg.Done()
		done <- rc.WaitMemory(context.Background(), 40)
	}()

	select {
	case <-done:
		t.Fatal("WaitMemory returned before memory was released")
	case <-time.After(20 * time.Millisecond):
	}

	rc.ReleaseMemory(60)
	wg.Wait()
	require.NoError(t, <-done)
	assert.Equal(t, int64(80), rc.MemoryUsage())
}

func TestController_WaitMemoryCanceled(t *testing.T) {
	rc := NewController(Config{
		MemoryLimitBytes: 10,
	})
	require.NoError(t, rc.AcquireMemory(10))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rc.WaitMemory(ctx, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(10), rc.MemoryUsage())
}

func TestController_WaitMemoryOversized(t *testing.T) {
	rc := NewController(Config{
		MemoryLimitBytes: 10,
	})

	err := rc.WaitMemory(context.Background(), 11)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
}

func TestController_AllocationRate(t *testing.T) {
	rc := NewController(Config{
		AllocationsPerSec: 1,
		AllocationBurst:   2,
	})

	assert.True(t, rc.AllowAllocation())
	assert.True(t, rc.AllowAllocation())
	assert.False(t, rc.AllowAllocation())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rc.WaitAllocation(ctx))
}
