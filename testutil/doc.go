// Package testutil provides testing utilities for refgo.
//
// This package is intended for use in tests and benchmarks only.
//
// # Allocation Tracking
//
//	ta := testutil.NewTrackingAllocator(nil)
//	s, _ := refgo.Allocate(ta, 42)
//	_ = s.Release()
//	ta.Live()     // 0
//	ta.Balanced() // every allocation matched by one deallocation of the same size
//
// # Construction and Destruction Counters
//
//	var lc testutil.Lifecycle
//	s, err := refgo.MakeSliceFunc(8, lc.Constructor(5))
//	lc.Constructed() // 5
//	lc.Destroyed()   // 5
//
// # Random Operation Sequences
//
//	rng := testutil.NewRNG(seed)
//	op := rng.Intn(4)
package testutil
