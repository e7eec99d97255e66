//go:build !(darwin && cgo)

package platform

import (
	"sync"
	"unsafe"

	"github.com/wippyai/blocks/errors"
)

// Without cgo on darwin there is no C code to jump into. Code and isa addresses
// are distinct static sentinels that only the in-process runtime understands:
// CallInvoke, CallCopy and CallDispose resolve them back to the Go handlers.

var (
	codeSlots [2*(MaxArity+1) + 2]byte
	isaSlots  [3][32]uintptr
)

var (
	wordInvoke    [MaxArity + 1]uintptr
	voidInvoke    [MaxArity + 1]uintptr
	copyHelper    uintptr
	disposeHelper uintptr
	stackIsa      uintptr
	mallocIsa     uintptr
	globalIsa     uintptr
)

func init() {
	for i := 0; i <= MaxArity; i++ {
		wordInvoke[i] = uintptr(unsafe.Pointer(&codeSlots[2*i]))
		voidInvoke[i] = uintptr(unsafe.Pointer(&codeSlots[2*i+1]))
	}
	copyHelper = uintptr(unsafe.Pointer(&codeSlots[len(codeSlots)-2]))
	disposeHelper = uintptr(unsafe.Pointer(&codeSlots[len(codeSlots)-1]))
	stackIsa = uintptr(unsafe.Pointer(&isaSlots[0]))
	mallocIsa = uintptr(unsafe.Pointer(&isaSlots[1]))
	globalIsa = uintptr(unsafe.Pointer(&isaSlots[2]))
}

// Native reports whether trampolines are real C functions.
const Native = false

var (
	staticMu sync.Mutex
	static   [][]uintptr
)

// AllocStatic returns size bytes of zeroed memory that stays valid for the life
// of the process. Nothing native can see it here, so it comes from a pool the
// package keeps reachable.
func AllocStatic(size uintptr) unsafe.Pointer {
	words := make([]uintptr, (size+wordSize-1)/wordSize)
	staticMu.Lock()
	static = append(static, words)
	staticMu.Unlock()
	return unsafe.Pointer(&words[0])
}

// CallInvoke calls the invoke function fn as native code would.
func CallInvoke(fn uintptr, blk unsafe.Pointer, args []uintptr) uintptr {
	arity, void, ok := ArityOf(fn)
	if !ok {
		panic(errors.InvalidRecord(errors.PhaseInvoke, "invoke pointer is not a known trampoline"))
	}
	if arity != len(args) {
		panic(errors.Arity(errors.PhaseInvoke, arity, len(args)))
	}
	r := goInvoke(blk, args)
	if void {
		return 0
	}
	return r
}

// CallCopy calls the copy helper fn as the native runtime would.
func CallCopy(fn uintptr, dst, src unsafe.Pointer) {
	if fn != copyHelper {
		panic(errors.InvalidRecord(errors.PhaseCopy, "copy helper is not a known trampoline"))
	}
	goCopy(dst, src)
}

// CallDispose calls the dispose helper fn as the native runtime would.
func CallDispose(fn uintptr, blk unsafe.Pointer) {
	if fn != disposeHelper {
		panic(errors.InvalidRecord(errors.PhaseDispose, "dispose helper is not a known trampoline"))
	}
	goDispose(blk)
}
