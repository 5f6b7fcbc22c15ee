// Package mmap maps anonymous, zero-filled memory outside the Go heap.
//
// A Mapping is never scanned or moved by the garbage collector, so it may
// only hold pointer-free data. The offheap and arena allocators build on it:
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//
// On Unix the mapping uses mmap(2) and madvise(2); on Windows VirtualAlloc,
// where Advise does nothing. Close may be called more than once, but the
// memory must not be touched after the first Close.
package mmap
