//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size) //nolint:gosec // unsafe is required for off-heap storage

	unmap := func(b []byte) error {
		if len(b) == 0 {
			return nil
		}
		return windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE) //nolint:gosec // unsafe is required for off-heap storage
	}

	return data, unmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	return nil // No-op on Windows
}
