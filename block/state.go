package block

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/internal/cell"
	"github.com/wippyai/blocks/internal/platform"
)

// cells holds the state of every live record. Records reference it by handle only.
var cells = cell.NewTable()

func init() {
	platform.Install(platform.Handlers{
		Invoke:  invoke,
		Copy:    copyHelper,
		Dispose: disposeHelper,
	})
}

// cellLogger traces reference count changes of block state.
type cellLogger struct{}

func (cellLogger) OnCellEvent(ev cell.Event) {
	if ev.Type == cell.EventCreated {
		return
	}
	Logger().Debug("block state "+ev.Type.String(),
		zap.Uint32("cell", uint32(ev.Handle)),
		zap.Int32("refs", ev.Refs))
}

// LiveCells returns the number of records whose captured state has not been
// released yet.
func LiveCells() int {
	return cells.Len()
}

// LiveBlock describes a record whose captured state is still held.
type LiveBlock struct {
	Signature string
	Refs      int
	Once      bool
	Fired     bool
}

// Live lists the records whose captured state has not been released. Handlers
// that native code copied and never released show up here.
func Live() []LiveBlock {
	type held struct {
		h cell.Handle
		s *state
	}
	var all []held
	cells.Each(func(h cell.Handle, v any) bool {
		if s, ok := v.(*state); ok {
			all = append(all, held{h: h, s: s})
		}
		return true
	})

	out := make([]LiveBlock, 0, len(all))
	for _, e := range all {
		refs := int(cells.Refs(e.h))
		if refs == 0 {
			continue
		}
		out = append(out, LiveBlock{
			Signature: e.s.signature,
			Refs:      refs,
			Once:      e.s.once,
			Fired:     e.s.fired.Load(),
		})
	}
	return out
}

// state is the Go side of one record: the erased closure plus its environment.
// It is owned by the cell table and reached only through the record's handle.
type state struct {
	call      func(args []uintptr) uintptr
	env       any
	signature string
	onRelease []func()
	arity     int
	once      bool
	fired     atomic.Bool
	// stackRef is the reference held by the original stack record. It moves to
	// the first heap copy, or is dropped by Close if the record never escaped.
	stackRef atomic.Bool
}

// Drop releases the environment. The cell table calls it exactly once.
func (s *state) Drop() {
	if d, ok := s.env.(cell.Dropper); ok {
		d.Drop()
	}
	for _, fn := range s.onRelease {
		fn()
	}
	s.call = nil
	s.env = nil
}

func lookup(rec *abi.Record, phase errors.Phase) (*state, cell.Handle) {
	h := cell.Handle(rec.Payload)
	v, ok := cells.Get(h)
	if !ok {
		panic(errors.StaleHandle(phase, uint32(h)))
	}
	return v.(*state), h
}

func invoke(blk unsafe.Pointer, args []uintptr) uintptr {
	s, _ := lookup(abi.At(blk), errors.PhaseInvoke)
	if len(args) != s.arity {
		panic(errors.New(errors.PhaseInvoke, errors.KindArity).
			NativeType(s.signature).
			Value(len(args)).
			Detail("expected %d arguments, got %d", s.arity, len(args)).
			Build())
	}
	if s.once && !s.fired.CompareAndSwap(false, true) {
		panic(errors.Consumed(s.signature))
	}
	return s.call(args)
}

// copyHelper runs after the native runtime copied src into dst. Both records
// carry the same handle, so the copy needs its own reference.
func copyHelper(dst, src unsafe.Pointer) {
	from := abi.At(src)
	switch platform.KindOf(from.Isa) {
	case abi.KindStack:
		s, h := lookup(from, errors.PhaseCopy)
		if s.stackRef.CompareAndSwap(true, false) {
			Logger().Debug("stack reference moved to heap copy", zap.Uint32("cell", uint32(h)))
			return
		}
		retain(h)
	case abi.KindMalloc:
		_, h := lookup(from, errors.PhaseCopy)
		retain(h)
	case abi.KindGlobal:
	default:
		panic(errors.InvalidRecord(errors.PhaseCopy, "copy from record with unknown isa"))
	}
}

// disposeHelper runs when a record holding a reference goes away.
func disposeHelper(blk unsafe.Pointer) {
	rec := abi.At(blk)
	switch platform.KindOf(rec.Isa) {
	case abi.KindMalloc:
		release(cell.Handle(rec.Payload))
	case abi.KindStack:
		s, h := lookup(rec, errors.PhaseDispose)
		if s.stackRef.CompareAndSwap(true, false) {
			release(h)
		}
	case abi.KindGlobal:
	default:
		panic(errors.InvalidRecord(errors.PhaseDispose, "dispose of record with unknown isa"))
	}
}

// retain adds a reference for a new copy. The cell can die between lookup and
// here when the host closes a record while native code copies it.
func retain(h cell.Handle) {
	if !cells.Retain(h) {
		panic(errors.StaleHandle(errors.PhaseCopy, uint32(h)))
	}
}

func release(h cell.Handle) {
	cells.Release(h)
}

type descriptorKey struct {
	signature string
	helpers   bool
}

// descriptors are interned for the process lifetime, like the static
// descriptors a compiler emits. They live in static memory because heap copies
// made by the native runtime keep their addresses.
var (
	descriptors  sync.Map
	descriptorMu sync.Mutex
)

func descriptorFor(signature string, helpers bool) unsafe.Pointer {
	key := descriptorKey{signature: signature, helpers: helpers}
	if d, ok := descriptors.Load(key); ok {
		return d.(unsafe.Pointer)
	}

	descriptorMu.Lock()
	defer descriptorMu.Unlock()
	if d, ok := descriptors.Load(key); ok {
		return d.(unsafe.Pointer)
	}

	sig := platform.CString(signature)
	var d unsafe.Pointer
	if helpers {
		d = platform.AllocStatic(unsafe.Sizeof(abi.DescriptorHelpers{}))
		*(*abi.DescriptorHelpers)(d) = abi.DescriptorHelpers{
			Size:      abi.RecordSize,
			Copy:      platform.CopyAddr(),
			Dispose:   platform.DisposeAddr(),
			Signature: sig,
		}
	} else {
		d = platform.AllocStatic(unsafe.Sizeof(abi.DescriptorBasic{}))
		*(*abi.DescriptorBasic)(d) = abi.DescriptorBasic{
			Size:      abi.RecordSize,
			Signature: sig,
		}
	}
	descriptors.Store(key, d)
	return d
}
