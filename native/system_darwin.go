//go:build darwin && cgo

package native

/*
#include <stdint.h>

extern void *_Block_copy(const void *aBlock);
extern void _Block_release(const void *aBlock);

static void *blocks_copy(uintptr_t blk) { return _Block_copy((const void *)blk); }
static void blocks_release(uintptr_t blk) { _Block_release((const void *)blk); }
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/internal/platform"
)

// system is the libSystem blocks runtime.
type system struct{}

// System returns the Runtime backed by libSystem's _Block_copy and
// _Block_release. Heap copies live in C memory.
func System() Runtime {
	return system{}
}

func (system) Copy(blk unsafe.Pointer) unsafe.Pointer {
	if blk == nil {
		return nil
	}
	p := C.blocks_copy(C.uintptr_t(uintptr(blk)))
	Logger().Debug("block copied", zap.Uintptr("from", uintptr(blk)), zap.Uintptr("block", uintptr(p)))
	return unsafe.Pointer(p)
}

func (system) Release(blk unsafe.Pointer) {
	if blk == nil {
		return
	}
	C.blocks_release(C.uintptr_t(uintptr(blk)))
}

func (system) Invoke(blk unsafe.Pointer, args ...uintptr) uintptr {
	if blk == nil {
		panic(errors.NilPointer(errors.PhaseInvoke, "block"))
	}
	return platform.CallInvoke(abi.At(blk).Invoke, blk, args)
}
