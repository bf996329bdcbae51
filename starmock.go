// Package starmock is a mock of the native "Starling" model library. It
// exposes the four FFI patterns bridge code typically has to marshal (opaque
// handles, array-output parameters, callbacks and pointer/integer
// round-tripping) without any real model behind them, so that tests can
// exercise a bridge against native-shaped semantics: handle storage is
// C-allocated, release is a real free, and misuse (double free, stale
// handles, undersized buffers) is deliberately not guarded.
//
// Every call writes one trace line naming the operation and its key
// argument(s), so tests can assert call occurrence and order from captured
// output. See SetTraceWriter.
package starmock

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/ansiwen/starmock/internal/cmem"
)

// Handle is an opaque reference to a loaded model context. It is created by
// Init and must be released exactly once with Free. The zero value is the
// null handle. Operations on a freed handle are undefined, as with a real
// native library.
type Handle unsafe.Pointer

// modelContext is the handle's backing storage. It is laid out in C memory,
// so its fields must stay C-compatible: path holds a malloc'ed C string.
type modelContext struct {
	path        unsafe.Pointer
	loaded      int32
	contextSize int32
}

const (
	defaultContextSize = 4096

	// Tokenize maps code point c to c + tokenOffset.
	tokenOffset = 1000

	// Generate emits numGenerated tokens starting at firstGenerated.
	firstGenerated = 100
	numGenerated   = 3
)

// Init loads a mock model and returns its handle. The path is copied into
// C memory; there is no failure path. The caller owns the handle and must
// eventually call Free.
func Init(path string) Handle {
	tracef("init called with path: %s", path)
	ctx := (*modelContext)(cmem.Malloc(unsafe.Sizeof(modelContext{})))
	ctx.path = cmem.StrDup(path)
	ctx.loaded = 1
	ctx.contextSize = defaultContextSize
	return Handle(unsafe.Pointer(ctx))
}

// IsLoaded reports whether h refers to a loaded model. It returns false for
// the null handle and never fails.
func IsLoaded(h Handle) bool {
	tracef("is_loaded called with %p", unsafe.Pointer(h))
	if h == nil {
		return false
	}
	return contextOf(h).loaded != 0
}

// ModelPath returns the path the handle was created with, or "" for the null
// handle. The returned string is a copy of the handle's C-side storage.
func ModelPath(h Handle) string {
	tracef("model_path called")
	if h == nil {
		return ""
	}
	return cmem.GoString(contextOf(h).path)
}

// ContextSize returns the handle's context size (fixed at 4096), or 0 for
// the null handle.
func ContextSize(h Handle) int {
	tracef("context_size called")
	if h == nil {
		return 0
	}
	return int(contextOf(h).contextSize)
}

// Free releases the handle's path storage and the handle itself. Freeing the
// null handle is a no-op. Freeing a handle twice is undefined, exactly as
// free() is: callers testing a bridge's ownership discipline rely on this
// not being guarded.
func Free(h Handle) {
	tracef("free called")
	if h == nil {
		return
	}
	ctx := contextOf(h)
	cmem.Free(ctx.path)
	cmem.Free(unsafe.Pointer(ctx))
}

// Tokenize writes min(n, maxTokens) values into out, where n is the number
// of code points in text and value i is code point i plus 1000, and returns
// the count written. Longer text is silently truncated to maxTokens; that is
// the buffer-boundary behavior bridges must cope with, not an error. out
// must have room for maxTokens values; the handle is not validated.
func Tokenize(h Handle, text string, out []int64, maxTokens int) int {
	tracef("tokenize called with text: %s", text)
	count := 0
	for _, r := range text {
		if count >= maxTokens {
			break
		}
		out[count] = int64(r) + tokenOffset
		count++
	}
	return count
}

// TokenCallback receives one generated token and its position. It is always
// invoked synchronously on the caller's goroutine.
type TokenCallback func(token, pos int64)

// Generate mocks text generation: it ignores the content of inputIDs (only
// their count appears in the trace) and invokes onToken exactly three times
// before returning, in order, with (100,0), (101,1) and (102,2). Bridges use
// it to verify that repeated callbacks from a single outer call arrive
// in-order and on the calling thread.
func Generate(h Handle, inputIDs []int64, onToken TokenCallback) {
	tracef("generate called with %d input tokens", len(inputIDs))
	for i := 0; i < numGenerated; i++ {
		token := int64(firstGenerated + i)
		tracef("generating token %d at pos %d", token, i)
		onToken(token, int64(i))
	}
}

// PtrToInt reinterprets a handle's address as an int64, so bridges can check
// that their integer type carries a full native address without precision
// loss. The value is only meaningful to IntToPtr.
func PtrToInt(h Handle) int64 {
	tracef("ptr_to_int called with %p", unsafe.Pointer(h))
	return int64(uintptr(unsafe.Pointer(h)))
}

// IntToPtr is the inverse of PtrToInt. The result is not validated in any
// way; like the C cast it mocks, this is an escape hatch, and anything but a
// value obtained from PtrToInt yields a handle that must not be used. The
// conversion is safe for real handles because their storage is C memory,
// which the Go runtime never moves.
func IntToPtr(v int64) Handle {
	tracef("int_to_ptr called with %d", v)
	return Handle(unsafe.Pointer(uintptr(v)))
}

// PtrToInt requires addresses to fit in 64 bits. This constant expression
// fails to compile on any platform where they don't.
const _ = 8 - unsafe.Sizeof(uintptr(0))

func contextOf(h Handle) *modelContext {
	return (*modelContext)(unsafe.Pointer(h))
}

// nil selects os.Stdout at call time, so trace lines follow stdout
// redirection done after package init.
var traceWriter io.Writer

// SetTraceWriter redirects the per-call trace lines to w and returns the
// previous writer. A nil writer selects os.Stdout, the default. Tests use
// this to capture the trace or to silence it with io.Discard. Like
// everything else here it is not synchronized.
func SetTraceWriter(w io.Writer) io.Writer {
	prev := traceWriter
	traceWriter = w
	return prev
}

func tracef(format string, a ...interface{}) {
	w := traceWriter
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[starmock] "+format+"\n", a...)
}
