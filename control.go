package refgo

import (
	"reflect"
	"sync/atomic"
	"time"
)

// BlockKind identifies the layout of a control block.
type BlockKind uint8

const (
	// KindNone is reported by empty handles.
	KindNone BlockKind = iota
	// KindDirect is a block colocated with its payload in one allocation.
	KindDirect
	// KindIndirect is a block referencing an adopted scalar payload.
	KindIndirect
	// KindIndirectSlice is a block referencing a slice payload.
	KindIndirectSlice
)

func (k BlockKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDirect:
		return "direct"
	case KindIndirect:
		return "indirect"
	case KindIndirectSlice:
		return "indirect-slice"
	default:
		return "unknown"
	}
}

// counts is the shared bookkeeping embedded in every block.
//
// All strong references collectively own one unit of weak. The strong 1->0
// transition destroys the payload and then gives that unit back, so whichever
// release takes weak to zero is the only one that reclaims the block.
type counts struct {
	strong atomic.Int64
	weak   atomic.Int64
}

func (c *counts) init() {
	c.strong.Store(1)
	c.weak.Store(1)
}

// controlBlock is implemented by directBlock and indirectBlock.
type controlBlock interface {
	refs() *counts
	kind() BlockKind
	env() *options

	// destroyObject tears the payload down. Called exactly once.
	destroyObject() error

	// destroyBlock hands the block storage back to its allocator.
	// Called exactly once and always last.
	destroyBlock()

	// lookup returns a pointer to the stored deleter or allocator whose
	// static type is exactly key, or nil.
	lookup(key reflect.Type) any
}

func retainStrong(b controlBlock) {
	if n := b.refs().strong.Add(1); n <= 1 {
		panic(msgStrongRevived)
	}
}

// tryRetainStrong increments strong unless it has already reached zero.
func tryRetainStrong(b controlBlock) bool {
	c := b.refs()
	for {
		n := c.strong.Load()
		if n <= 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// releaseStrong drops one strong reference and tears the payload down when it
// was the last. The block is reclaimed afterwards even if teardown panics.
func releaseStrong(b controlBlock) error {
	n := b.refs().strong.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		panic(msgStrongUnderflow)
	}

	defer releaseWeak(b)

	o, k := b.env(), b.kind()
	start := time.Now()
	err := b.destroyObject()
	elapsed := time.Since(start)

	o.metricsCollector.RecordDestroy(k, elapsed, err)
	o.logger.LogDestroy(k, elapsed, err)

	if err != nil {
		return &DestroyError{Kind: k, cause: err}
	}
	return nil
}

func retainWeak(b controlBlock) {
	if n := b.refs().weak.Add(1); n <= 1 {
		panic(msgWeakRevived)
	}
}

func releaseWeak(b controlBlock) {
	n := b.refs().weak.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(msgWeakUnderflow)
	}

	o, k := b.env(), b.kind()
	b.destroyBlock()

	o.metricsCollector.RecordReclaim(k)
	o.logger.LogReclaim(k)
}

func strongCount(b controlBlock) int64 {
	if b == nil {
		return 0
	}
	return max(b.refs().strong.Load(), 0)
}

// weakCount excludes the unit held on behalf of the strong references.
func weakCount(b controlBlock) int64 {
	if b == nil {
		return 0
	}
	c := b.refs()
	w := c.weak.Load()
	if c.strong.Load() > 0 {
		w--
	}
	return max(w, 0)
}

func kindOf(b controlBlock) BlockKind {
	if b == nil {
		return KindNone
	}
	return b.kind()
}

func created(o *options, k BlockKind, count int, start time.Time, err error) {
	elapsed := time.Since(start)
	o.metricsCollector.RecordCreate(k, count, elapsed, err)
	o.logger.LogCreate(k, count, err)
}
