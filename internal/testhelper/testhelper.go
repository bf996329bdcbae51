// package testhelper
package testhelper

/*
#include <stdlib.h>
#include <stdint.h>

inline void prefillTokens(int64_t* buf, int n, int64_t v) {
	for (int i = 0; i < n; ++i) {
		buf[i] = v;
	}
}
*/
import "C"

import (
	"unsafe"
)

// SizeOfInt64 ...
const SizeOfInt64 = C.sizeof_int64_t

// Malloc ...
func Malloc(n uintptr) unsafe.Pointer {
	return C.malloc(C.size_t(n))
}

// Free ...
func Free(p unsafe.Pointer) {
	C.free(p)
}

// PrefillTokens fills the first n slots of a C int64 buffer with v, so tests
// can tell written slots from untouched ones.
func PrefillTokens(buf *int64, n int, v int64) {
	C.prefillTokens((*C.int64_t)(unsafe.Pointer(buf)), C.int(n), C.int64_t(v))
}
