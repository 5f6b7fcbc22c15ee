// Package conv provides safe integer conversion and size arithmetic.
//
// These functions perform bounds checking to prevent integer overflow when
// converting between signed and unsigned types or multiplying element sizes
// by element counts.
//
// Use cases:
//   - Computing the byte size of n values of a type before allocating
//   - Converting between Go's int (platform-dependent) and fixed-width types
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
