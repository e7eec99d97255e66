package platform

import (
	"sync/atomic"
	"unsafe"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
)

// MaxArity is the largest number of call arguments (excluding the block itself)
// a trampoline accepts.
const MaxArity = 3

const wordSize = unsafe.Sizeof(uintptr(0))

// Handlers are the Go entry points every trampoline funnels into.
type Handlers struct {
	// Invoke runs the closure behind blk with the raw argument words.
	Invoke func(blk unsafe.Pointer, args []uintptr) uintptr
	// Copy runs after the native runtime memcpy'd src into dst.
	Copy func(dst, src unsafe.Pointer)
	// Dispose runs when the native runtime frees blk.
	Dispose func(blk unsafe.Pointer)
}

var handlers atomic.Pointer[Handlers]

// Install registers the Go entry points. The block package installs them from
// its init function; later calls replace the previous set.
func Install(h Handlers) {
	handlers.Store(&h)
}

func installed() *Handlers {
	h := handlers.Load()
	if h == nil {
		panic(errors.Unsupported(errors.PhaseRuntime, "no block handlers installed"))
	}
	return h
}

func goInvoke(blk unsafe.Pointer, args []uintptr) uintptr {
	return installed().Invoke(blk, args)
}

func goCopy(dst, src unsafe.Pointer) {
	installed().Copy(dst, src)
}

func goDispose(blk unsafe.Pointer) {
	installed().Dispose(blk)
}

// InvokeAddr returns the trampoline address for the given arity and result
// class. void selects the trampoline declared with a void C return type.
func InvokeAddr(arity int, void bool) uintptr {
	if arity < 0 || arity > MaxArity {
		panic(errors.Arity(errors.PhaseConstruct, MaxArity, arity))
	}
	if void {
		return voidInvoke[arity]
	}
	return wordInvoke[arity]
}

// CString copies s into static memory with a trailing NUL.
func CString(s string) *byte {
	p := (*byte)(AllocStatic(uintptr(len(s)) + 1))
	copy(unsafe.Slice(p, len(s)+1), s)
	return p
}

// CopyAddr returns the address of the copy helper trampoline.
func CopyAddr() uintptr { return copyHelper }

// DisposeAddr returns the address of the dispose helper trampoline.
func DisposeAddr() uintptr { return disposeHelper }

// Isa returns the isa pointer identifying kind.
func Isa(kind abi.Kind) uintptr {
	switch kind {
	case abi.KindStack:
		return stackIsa
	case abi.KindMalloc:
		return mallocIsa
	case abi.KindGlobal:
		return globalIsa
	default:
		return 0
	}
}

// KindOf classifies an isa pointer.
func KindOf(isa uintptr) abi.Kind {
	switch isa {
	case stackIsa:
		return abi.KindStack
	case mallocIsa:
		return abi.KindMalloc
	case globalIsa:
		return abi.KindGlobal
	default:
		return abi.KindUnknown
	}
}

// ArityOf reports the arity and result class of an invoke trampoline address.
func ArityOf(fn uintptr) (arity int, void bool, ok bool) {
	for i := 0; i <= MaxArity; i++ {
		if wordInvoke[i] == fn {
			return i, false, true
		}
		if voidInvoke[i] == fn {
			return i, true, true
		}
	}
	return 0, false, false
}
