package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
	// ErrRateLimited is returned when the allocation rate limit is exhausted.
	ErrRateLimited = errors.New("allocation rate limit exceeded")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// AllocationsPerSec is the sustained allocation rate.
	// If 0, unlimited.
	AllocationsPerSec float64

	// AllocationBurst is the token bucket size for allocations.
	// If 0, defaults to max(1, AllocationsPerSec).
	AllocationBurst int
}

// Controller manages memory and allocation-rate budgets.
type Controller struct {
	cfg Config

	// Memory
	memSem   *semaphore.Weighted // nil if unlimited
	memUsed  atomic.Int64
	memPeak  atomic.Int64
	rejected atomic.Int64

	// Allocation rate
	allocLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg: cfg,
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.AllocationsPerSec > 0 {
		burst := cfg.AllocationBurst
		if burst <= 0 {
			burst = max(1, int(cfg.AllocationsPerSec))
		}
		c.allocLimiter = rate.NewLimiter(rate.Limit(cfg.AllocationsPerSec), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			c.rejected.Add(1)
			return ErrMemoryLimitExceeded
		}
	}

	c.track(bytes)
	return nil
}

// WaitMemory reserves memory, blocking until it is available or ctx is done.
// Requests larger than the limit fail immediately with ErrMemoryLimitExceeded.
func (c *Controller) WaitMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			c.rejected.Add(1)
			return ErrMemoryLimitExceeded
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.track(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// PeakMemoryUsage returns the highest memory usage observed in bytes.
func (c *Controller) PeakMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memPeak.Load()
}

// Rejected returns how many memory reservations failed the limit.
func (c *Controller) Rejected() int64 {
	if c == nil {
		return 0
	}
	return c.rejected.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AllowAllocation reports whether one allocation may happen now.
// Returns true if there is no rate limit.
func (c *Controller) AllowAllocation() bool {
	if c == nil || c.allocLimiter == nil {
		return true
	}
	return c.allocLimiter.AllowN(time.Now(), 1)
}

// WaitAllocation blocks until the rate limit allows one allocation.
func (c *Controller) WaitAllocation(ctx context.Context) error {
	if c == nil || c.allocLimiter == nil {
		return nil
	}
	return c.allocLimiter.Wait(ctx)
}

func (c *Controller) track(bytes int64) {
	used := c.memUsed.Add(bytes)
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			return
		}
	}
}
