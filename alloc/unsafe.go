package alloc

import "unsafe"

// ptrOf returns the address of b's first byte, used only to compute the
// alignment padding a fresh allocation needs.
func ptrOf(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
