package native

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/internal/platform"
)

// Option configures an Emulated runtime.
type Option func(*Emulated)

// WithLogger sets the logger used for copy and release events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emulated) { e.log = l }
}

// WithStrictRelease turns misuse that libSystem silently ignores into panics:
// releasing a record that was never copied, releasing a freed record and
// invoking a freed record. Freed memory is quarantined so the checks stay
// reliable.
func WithStrictRelease() Option {
	return func(e *Emulated) { e.strict = true }
}

// Emulated is an in-process Runtime following libclosure's runtime.cpp: the
// reference count latches in the flag word, heap copies are made with the size
// from the descriptor and the record's own copy and dispose helpers run through
// the same trampolines native code would call.
//
// It is safe for concurrent use.
type Emulated struct {
	log    *zap.Logger
	strict bool

	mu     sync.Mutex
	heap   map[uintptr][]uintptr
	freed  map[uintptr][]uintptr
	copies atomic.Int64
	frees  atomic.Int64
}

// NewEmulated creates an emulated runtime.
func NewEmulated(opts ...Option) *Emulated {
	e := &Emulated{
		heap:  make(map[uintptr][]uintptr),
		freed: make(map[uintptr][]uintptr),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = Logger()
	}
	return e
}

var _ Runtime = (*Emulated)(nil)

// Copy implements _Block_copy.
func (e *Emulated) Copy(blk unsafe.Pointer) unsafe.Pointer {
	if blk == nil {
		return nil
	}
	rec := abi.At(blk)
	if e.strict {
		e.checkFreed(blk, errors.PhaseCopy)
	}

	flags := loadFlags(rec)
	switch {
	case flags.Has(abi.FlagNeedsFree):
		refs := latchingIncr(flagWord(rec))
		e.log.Debug("block retained", zap.Uintptr("block", uintptr(blk)), zap.Int("refs", refs))
		return blk
	case flags.Has(abi.FlagIsGlobal):
		return blk
	}

	size := rec.Size()
	if size < abi.HeaderSize {
		panic(errors.InvalidRecord(errors.PhaseCopy, "descriptor size smaller than block header"))
	}

	words := make([]uintptr, (size+wordBytes-1)/wordBytes)
	dst := unsafe.Pointer(&words[0])
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(blk), size))

	result := abi.At(dst)
	result.Flags &^= abi.FlagRefcountMask | abi.FlagDeallocating
	result.Flags |= abi.FlagNeedsFree | 2

	e.mu.Lock()
	e.heap[uintptr(dst)] = words
	e.mu.Unlock()
	e.copies.Add(1)

	if result.Flags.Has(abi.FlagHasCopyDispose) {
		cp, _ := result.Helpers()
		platform.CallCopy(cp, dst, blk)
	}
	result.Isa = platform.Isa(abi.KindMalloc)

	e.log.Debug("block copied to heap",
		zap.Uintptr("from", uintptr(blk)),
		zap.Uintptr("block", uintptr(dst)),
		zap.Uintptr("size", size))
	return dst
}

// Release implements _Block_release.
func (e *Emulated) Release(blk unsafe.Pointer) {
	if blk == nil {
		return
	}
	rec := abi.At(blk)
	if e.strict {
		e.checkFreed(blk, errors.PhaseDispose)
	}
	flags := loadFlags(rec)
	if flags.Has(abi.FlagIsGlobal) {
		return
	}
	if !flags.Has(abi.FlagNeedsFree) {
		if e.strict {
			panic(errors.InvalidRecord(errors.PhaseDispose, "release of a record that was never copied"))
		}
		return
	}
	if !latchingDecrShouldDeallocate(flagWord(rec)) {
		e.log.Debug("block released", zap.Uintptr("block", uintptr(blk)), zap.Int("refs", loadFlags(rec).RefCount()))
		return
	}

	if flags.Has(abi.FlagHasCopyDispose) {
		_, dispose := rec.Helpers()
		platform.CallDispose(dispose, blk)
	}
	e.free(blk)
	e.log.Debug("block freed", zap.Uintptr("block", uintptr(blk)))
}

// Invoke calls the record's invoke pointer the way compiled code calls a block.
func (e *Emulated) Invoke(blk unsafe.Pointer, args ...uintptr) uintptr {
	if blk == nil {
		panic(errors.NilPointer(errors.PhaseInvoke, "block"))
	}
	if e.strict {
		e.checkFreed(blk, errors.PhaseInvoke)
	}
	rec := abi.At(blk)
	if platform.KindOf(rec.Isa) == abi.KindUnknown {
		panic(errors.InvalidRecord(errors.PhaseInvoke, "record has no known isa"))
	}
	return platform.CallInvoke(rec.Invoke, blk, args)
}

// Live returns the number of heap copies not yet freed.
func (e *Emulated) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.heap)
}

// Copies returns the number of stack to heap copies made so far.
func (e *Emulated) Copies() int {
	return int(e.copies.Load())
}

// Frees returns the number of heap copies freed so far.
func (e *Emulated) Frees() int {
	return int(e.frees.Load())
}

// RefCount returns the reference count held in the record's flag word.
// Stack and global records report zero.
func RefCount(blk unsafe.Pointer) int {
	return loadFlags(abi.At(blk)).RefCount()
}

func (e *Emulated) free(blk unsafe.Pointer) {
	e.mu.Lock()
	words, ok := e.heap[uintptr(blk)]
	delete(e.heap, uintptr(blk))
	if ok && e.strict {
		// Poison the header so stray invocations are caught rather than run.
		rec := abi.At(blk)
		rec.Isa = 0
		rec.Invoke = 0
		e.freed[uintptr(blk)] = words
	}
	e.mu.Unlock()
	if ok {
		e.frees.Add(1)
	}
}

func (e *Emulated) checkFreed(blk unsafe.Pointer, phase errors.Phase) {
	e.mu.Lock()
	_, dead := e.freed[uintptr(blk)]
	e.mu.Unlock()
	if dead {
		panic(errors.InvalidRecord(phase, "use of a freed block"))
	}
}

const wordBytes = unsafe.Sizeof(uintptr(0))

func flagWord(rec *abi.Record) *int32 {
	return (*int32)(unsafe.Pointer(&rec.Flags))
}

func loadFlags(rec *abi.Record) abi.Flags {
	return abi.Flags(atomic.LoadInt32(flagWord(rec)))
}

// latchingIncr adds one reference unless the count is pinned at the maximum.
func latchingIncr(p *int32) int {
	for {
		old := atomic.LoadInt32(p)
		if abi.Flags(old)&abi.FlagRefcountMask == abi.FlagRefcountMask {
			return abi.Flags(old).RefCount()
		}
		if atomic.CompareAndSwapInt32(p, old, old+2) {
			return abi.Flags(old + 2).RefCount()
		}
	}
}

// latchingDecrShouldDeallocate drops one reference and reports whether it was
// the last. The deallocating bit is set on the transition to zero. Counts that
// latched at the maximum or already reached zero never move.
func latchingDecrShouldDeallocate(p *int32) bool {
	for {
		old := atomic.LoadInt32(p)
		f := abi.Flags(old)
		if f&abi.FlagRefcountMask == abi.FlagRefcountMask {
			return false
		}
		if f&abi.FlagRefcountMask == 0 {
			return false
		}
		next := old - 2
		last := false
		if f&(abi.FlagRefcountMask|abi.FlagDeallocating) == 2 {
			next = old - 1
			last = true
		}
		if atomic.CompareAndSwapInt32(p, old, next) {
			return last
		}
	}
}
