package refgo

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrAllocation is matched by every error returned when an allocator fails
	// to provide block or payload storage.
	ErrAllocation = errors.New("refgo: allocation failed")

	// ErrInvalidLength is returned when a slice factory is asked for a negative length.
	ErrInvalidLength = errors.New("refgo: invalid slice length")
)

const (
	msgStrongUnderflow = "refgo: strong count underflow"
	msgWeakUnderflow   = "refgo: weak count underflow"
	msgStrongRevived   = "refgo: clone of a released handle"
	msgWeakRevived     = "refgo: weak reference to a reclaimed block"
)

// AllocError indicates that an allocator could not provide storage.
//
// The original underlying error can be accessed via errors.Unwrap.
type AllocError struct {
	Kind  BlockKind
	Type  reflect.Type
	Count int
	cause error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("refgo: allocate %s block for %d x %s: %v", e.Kind, e.Count, e.Type, e.cause)
}

func (e *AllocError) Unwrap() error { return e.cause }

// Is reports ErrAllocation as a match.
func (e *AllocError) Is(target error) bool { return target == ErrAllocation }

// ConstructError indicates that a payload constructor failed.
// Index is the failing element for slices and -1 for scalar payloads.
//
// The original underlying error can be accessed via errors.Unwrap.
type ConstructError struct {
	Index int
	cause error
}

func (e *ConstructError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("refgo: construct value: %v", e.cause)
	}
	return fmt.Sprintf("refgo: construct element %d: %v", e.Index, e.cause)
}

func (e *ConstructError) Unwrap() error { return e.cause }

// DestroyError indicates that a deleter or Close method failed while the last
// strong reference was released. The counters are already decremented and
// block reclamation has proceeded when it is returned.
//
// The original underlying error can be accessed via errors.Unwrap.
type DestroyError struct {
	Kind  BlockKind
	cause error
}

func (e *DestroyError) Error() string {
	return fmt.Sprintf("refgo: destroy %s payload: %v", e.Kind, e.cause)
}

func (e *DestroyError) Unwrap() error { return e.cause }
