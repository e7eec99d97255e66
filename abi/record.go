package abi

import (
	"unsafe"
)

// Flags is the block header flag word (Block_layout.flags).
type Flags int32

// Flag bits as defined by libclosure (Block_private.h).
const (
	FlagDeallocating      Flags = 0x0001
	FlagRefcountMask      Flags = 0xfffe
	FlagIsNoescape        Flags = 1 << 23
	FlagNeedsFree         Flags = 1 << 24
	FlagHasCopyDispose    Flags = 1 << 25
	FlagHasCtor           Flags = 1 << 26
	FlagIsGC              Flags = 1 << 27
	FlagIsGlobal          Flags = 1 << 28
	FlagUseStret          Flags = 1 << 29
	FlagHasSignature      Flags = 1 << 30
	FlagHasExtendedLayout Flags = -1 << 31
)

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// RefCount returns the logical reference count stored in the flag word.
// libclosure counts in units of two so bit 0 can hold the deallocating latch.
func (f Flags) RefCount() int {
	return int(f&FlagRefcountMask) >> 1
}

// Kind is the storage class of a record, derived from its isa.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindStack        // _NSConcreteStackBlock: lives in the creator's frame
	KindMalloc       // _NSConcreteMallocBlock: heap copy made by Block_copy
	KindGlobal       // _NSConcreteGlobalBlock: static, never copied or freed
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindMalloc:
		return "malloc"
	case KindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Record is the in-memory block literal handed to native code.
//
// Field order and sizes follow struct Block_layout followed by one captured word.
// The captured word is an opaque cell handle, never a Go pointer: the native side
// memcpy's records into C memory on Block_copy. For the same reason Descriptor
// must point outside the Go heap once the record is handed to native code.
type Record struct {
	Isa        uintptr
	Flags      Flags
	Reserved   int32
	Invoke     uintptr
	Descriptor unsafe.Pointer
	Payload    uintptr
}

// RecordSize is sizeof(struct Block_layout) plus the captured payload word.
const RecordSize = unsafe.Sizeof(Record{})

// HeaderSize is sizeof(struct Block_layout) without captures.
const HeaderSize = unsafe.Offsetof(Record{}.Payload)

// DescriptorHelpers is Block_descriptor_1 followed by Block_descriptor_2 and
// Block_descriptor_3. Used when FlagHasCopyDispose is set.
type DescriptorHelpers struct {
	Reserved  uintptr
	Size      uintptr
	Copy      uintptr // void (*)(void *dst, const void *src)
	Dispose   uintptr // void (*)(const void *)
	Signature *byte   // const char *, NUL-terminated
}

// DescriptorBasic is Block_descriptor_1 followed by Block_descriptor_3.
// Used for records without copy/dispose helpers.
type DescriptorBasic struct {
	Reserved  uintptr
	Size      uintptr
	Signature *byte
}

// At reinterprets p as a record. p must point to at least HeaderSize bytes laid out
// as a block.
func At(p unsafe.Pointer) *Record {
	return (*Record)(p)
}

// Ptr returns the record address as the native-callable block pointer.
func (r *Record) Ptr() unsafe.Pointer {
	return unsafe.Pointer(r)
}

// Size returns the record size recorded in its descriptor.
func (r *Record) Size() uintptr {
	if r.Descriptor == nil {
		return 0
	}
	// Both descriptor variants start with {reserved, size}.
	return (*DescriptorBasic)(r.Descriptor).Size
}

// Helpers returns the copy/dispose helper addresses, or zeros when the record
// carries none.
func (r *Record) Helpers() (cp, dispose uintptr) {
	if r.Descriptor == nil || !r.Flags.Has(FlagHasCopyDispose) {
		return 0, 0
	}
	d := (*DescriptorHelpers)(r.Descriptor)
	return d.Copy, d.Dispose
}

// Signature returns the ObjC type encoding stored in the descriptor, if any.
func (r *Record) Signature() string {
	if r.Descriptor == nil || !r.Flags.Has(FlagHasSignature) {
		return ""
	}
	if r.Flags.Has(FlagHasCopyDispose) {
		return cString((*DescriptorHelpers)(r.Descriptor).Signature)
	}
	return cString((*DescriptorBasic)(r.Descriptor).Signature)
}

func cString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
