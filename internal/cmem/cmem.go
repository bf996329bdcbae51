// Package cmem wraps the C allocator for the starmock package, so that handle
// storage lives in memory the Go garbage collector neither moves nor frees.
package cmem

/*
#include <stdlib.h>
*/
import "C"
import "unsafe"

// Malloc allocates n bytes of C memory.
func Malloc(n uintptr) unsafe.Pointer {
	return C.malloc(C.size_t(n))
}

// Free releases memory allocated by Malloc or StrDup.
func Free(p unsafe.Pointer) {
	C.free(p)
}

// StrDup copies s into a newly malloc'ed NUL-terminated C string.
func StrDup(s string) unsafe.Pointer {
	return unsafe.Pointer(C.CString(s))
}

// GoString copies a NUL-terminated C string back into a Go string.
func GoString(p unsafe.Pointer) string {
	return C.GoString((*C.char)(p))
}
