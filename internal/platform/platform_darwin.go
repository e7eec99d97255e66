//go:build darwin && cgo

package platform

/*
#include <stdint.h>
#include <stdlib.h>

uintptr_t blocks_isa(int kind);

uintptr_t blocks_invoke_0(void *blk);
uintptr_t blocks_invoke_1(void *blk, uintptr_t a0);
uintptr_t blocks_invoke_2(void *blk, uintptr_t a0, uintptr_t a1);
uintptr_t blocks_invoke_3(void *blk, uintptr_t a0, uintptr_t a1, uintptr_t a2);
void blocks_invoke_v0(void *blk);
void blocks_invoke_v1(void *blk, uintptr_t a0);
void blocks_invoke_v2(void *blk, uintptr_t a0, uintptr_t a1);
void blocks_invoke_v3(void *blk, uintptr_t a0, uintptr_t a1, uintptr_t a2);
void blocks_copy_helper(void *dst, const void *src);
void blocks_dispose_helper(const void *blk);

uintptr_t blocks_call(uintptr_t fn, void *blk, const uintptr_t *args, int n, int isvoid);
void blocks_call_copy(uintptr_t fn, void *dst, const void *src);
void blocks_call_dispose(uintptr_t fn, const void *blk);
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/blocks/errors"
)

var (
	wordInvoke = [MaxArity + 1]uintptr{
		uintptr(unsafe.Pointer(C.blocks_invoke_0)),
		uintptr(unsafe.Pointer(C.blocks_invoke_1)),
		uintptr(unsafe.Pointer(C.blocks_invoke_2)),
		uintptr(unsafe.Pointer(C.blocks_invoke_3)),
	}
	voidInvoke = [MaxArity + 1]uintptr{
		uintptr(unsafe.Pointer(C.blocks_invoke_v0)),
		uintptr(unsafe.Pointer(C.blocks_invoke_v1)),
		uintptr(unsafe.Pointer(C.blocks_invoke_v2)),
		uintptr(unsafe.Pointer(C.blocks_invoke_v3)),
	}
	copyHelper    = uintptr(unsafe.Pointer(C.blocks_copy_helper))
	disposeHelper = uintptr(unsafe.Pointer(C.blocks_dispose_helper))
	stackIsa      = uintptr(C.blocks_isa(0))
	mallocIsa     = uintptr(C.blocks_isa(1))
	globalIsa     = uintptr(C.blocks_isa(2))
)

// Native reports whether trampolines are real C functions.
const Native = true

//export blocksGoInvoke
func blocksGoInvoke(blk unsafe.Pointer, args *C.uintptr_t, n C.int) C.uintptr_t {
	words := unsafe.Slice((*uintptr)(unsafe.Pointer(args)), int(n))
	return C.uintptr_t(goInvoke(blk, words))
}

//export blocksGoCopy
func blocksGoCopy(dst, src unsafe.Pointer) {
	goCopy(dst, src)
}

//export blocksGoDispose
func blocksGoDispose(blk unsafe.Pointer) {
	goDispose(blk)
}

// AllocStatic returns size bytes of zeroed C memory that is never freed.
// Descriptors live here because the native runtime keeps their addresses in
// heap copies long after the call that handed it the record.
func AllocStatic(size uintptr) unsafe.Pointer {
	p := C.calloc(1, C.size_t(size))
	if p == nil {
		panic(errors.Unsupported(errors.PhaseConstruct, "out of static memory"))
	}
	return p
}

// CallInvoke calls the C function fn with the block and argument words.
// Trampolines declared void return 0; foreign invoke functions are assumed to
// return a word.
func CallInvoke(fn uintptr, blk unsafe.Pointer, args []uintptr) uintptr {
	var argp *C.uintptr_t
	if len(args) > 0 {
		argp = (*C.uintptr_t)(unsafe.Pointer(&args[0]))
	}
	var isvoid C.int
	if _, void, ok := ArityOf(fn); ok && void {
		isvoid = 1
	}
	return uintptr(C.blocks_call(C.uintptr_t(fn), blk, argp, C.int(len(args)), isvoid))
}

// CallCopy calls a copy helper through C.
func CallCopy(fn uintptr, dst, src unsafe.Pointer) {
	C.blocks_call_copy(C.uintptr_t(fn), dst, src)
}

// CallDispose calls a dispose helper through C.
func CallDispose(fn uintptr, blk unsafe.Pointer) {
	C.blocks_call_dispose(C.uintptr_t(fn), blk)
}
