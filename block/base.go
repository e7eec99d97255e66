package block

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/internal/cell"
	"github.com/wippyai/blocks/internal/platform"
)

// shape is what a typed constructor knows about its signature.
type shape struct {
	call   func(args []uintptr) uintptr
	env    any
	result string
	args   []string
	arity  int
	void   bool
	once   bool
}

// base is the record and handle shared by every wrapper type.
type base struct {
	rec    *abi.Record
	state  *state
	handle cell.Handle
}

func build(sh shape, opts []Option) base {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	sig := cfg.signature
	if sig == "" {
		sig = abi.SignatureOf(sh.result, sh.args...)
	}

	st := &state{
		call:      sh.call,
		env:       sh.env,
		signature: sig,
		onRelease: cfg.onRelease,
		arity:     sh.arity,
		once:      sh.once,
	}
	st.stackRef.Store(true)

	h, err := cells.Insert(st)
	if err != nil {
		panic(errors.New(errors.PhaseConstruct, errors.KindUnsupported).
			NativeType(sig).
			Cause(err).
			Detail("cannot allocate block state").
			Build())
	}

	kind := abi.KindStack
	flags := abi.FlagHasSignature
	switch {
	case cfg.static:
		kind = abi.KindGlobal
		flags |= abi.FlagIsGlobal
	case cfg.noEscape:
		flags |= abi.FlagIsNoescape
	default:
		flags |= abi.FlagHasCopyDispose
	}

	rec := &abi.Record{
		Isa:        platform.Isa(kind),
		Flags:      flags,
		Invoke:     platform.InvokeAddr(sh.arity, sh.void),
		Descriptor: descriptorFor(sig, flags.Has(abi.FlagHasCopyDispose)),
		Payload:    uintptr(h),
	}

	Logger().Debug("block created",
		zap.Uint32("cell", uint32(h)),
		zap.String("signature", sig),
		zap.Stringer("kind", kind),
		zap.Bool("once", sh.once))

	return base{rec: rec, state: st, handle: h}
}

// Ptr returns the block pointer to hand to native code.
func (b *base) Ptr() unsafe.Pointer {
	return b.rec.Ptr()
}

// Record returns the underlying record.
func (b *base) Record() *abi.Record {
	return b.rec
}

// Kind returns the record's storage class.
func (b *base) Kind() abi.Kind {
	return platform.KindOf(b.rec.Isa)
}

// Signature returns the ObjC type encoding stored in the descriptor.
func (b *base) Signature() string {
	return b.state.signature
}

// Refs returns the references held on the captured state: the host's stack
// reference until it moves or is closed, plus one per distinct heap copy.
// It is zero once the state is released.
func (b *base) Refs() int {
	return int(cells.Refs(b.handle))
}

// Escaped reports whether a native copy has taken over the stack reference.
func (b *base) Escaped() bool {
	return !b.state.stackRef.Load() && cells.Live(b.handle)
}

// Close ends the host's scope for the record, like the implicit dispose of a
// stack block at the end of its frame. If the record escaped, the native copies
// keep the state alive and Close does nothing; otherwise the state is released.
// Global records are never released.
func (b *base) Close() {
	if b.Kind() == abi.KindGlobal {
		return
	}
	if b.state.stackRef.CompareAndSwap(true, false) {
		release(b.handle)
	}
}
