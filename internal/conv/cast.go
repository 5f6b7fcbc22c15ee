package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// UintptrToInt64 converts uintptr to int64 safely.
func UintptrToInt64(v uintptr) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int64 (too large)", v)
	}
	return int64(v), nil
}

// MulSize returns elemSize*n as a byte count.
// It fails for negative n and for products that do not fit into an int,
// which is the largest allocation the runtime can represent.
func MulSize(elemSize uintptr, n int) (uintptr, error) {
	if n < 0 {
		return 0, fmt.Errorf("size overflow: negative count %d", n)
	}
	hi, lo := bits.Mul64(uint64(elemSize), uint64(n))
	if hi != 0 || lo > uint64(math.MaxInt) {
		return 0, fmt.Errorf("size overflow: %d elements of %d bytes", n, elemSize)
	}
	return uintptr(lo), nil
}
