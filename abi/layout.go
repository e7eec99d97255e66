package abi

import (
	"fmt"
	"strings"
	"unsafe"
)

// Field describes one field of a native structure.
type Field struct {
	Name   string
	CType  string
	Offset uintptr
	Size   uintptr
}

// Info is the computed layout of a native structure.
type Info struct {
	Name   string
	Fields []Field
	Size   uintptr
	Align  uintptr
}

// Layouts returns the layouts of every structure that crosses the native boundary.
func Layouts() []Info {
	var r Record
	var h DescriptorHelpers
	var d DescriptorBasic
	return []Info{
		{
			Name: "Block_layout",
			Fields: []Field{
				{Name: "isa", CType: "void *", Offset: unsafe.Offsetof(r.Isa), Size: unsafe.Sizeof(r.Isa)},
				{Name: "flags", CType: "volatile int32_t", Offset: unsafe.Offsetof(r.Flags), Size: unsafe.Sizeof(r.Flags)},
				{Name: "reserved", CType: "int32_t", Offset: unsafe.Offsetof(r.Reserved), Size: unsafe.Sizeof(r.Reserved)},
				{Name: "invoke", CType: "BlockInvokeFunction", Offset: unsafe.Offsetof(r.Invoke), Size: unsafe.Sizeof(r.Invoke)},
				{Name: "descriptor", CType: "struct Block_descriptor_1 *", Offset: unsafe.Offsetof(r.Descriptor), Size: unsafe.Sizeof(r.Descriptor)},
				{Name: "payload", CType: "uintptr_t", Offset: unsafe.Offsetof(r.Payload), Size: unsafe.Sizeof(r.Payload)},
			},
			Size:  unsafe.Sizeof(r),
			Align: unsafe.Alignof(r),
		},
		{
			Name: "Block_descriptor_helpers",
			Fields: []Field{
				{Name: "reserved", CType: "uintptr_t", Offset: unsafe.Offsetof(h.Reserved), Size: unsafe.Sizeof(h.Reserved)},
				{Name: "size", CType: "uintptr_t", Offset: unsafe.Offsetof(h.Size), Size: unsafe.Sizeof(h.Size)},
				{Name: "copy", CType: "BlockCopyFunction", Offset: unsafe.Offsetof(h.Copy), Size: unsafe.Sizeof(h.Copy)},
				{Name: "dispose", CType: "BlockDisposeFunction", Offset: unsafe.Offsetof(h.Dispose), Size: unsafe.Sizeof(h.Dispose)},
				{Name: "signature", CType: "const char *", Offset: unsafe.Offsetof(h.Signature), Size: unsafe.Sizeof(h.Signature)},
			},
			Size:  unsafe.Sizeof(h),
			Align: unsafe.Alignof(h),
		},
		{
			Name: "Block_descriptor_basic",
			Fields: []Field{
				{Name: "reserved", CType: "uintptr_t", Offset: unsafe.Offsetof(d.Reserved), Size: unsafe.Sizeof(d.Reserved)},
				{Name: "size", CType: "uintptr_t", Offset: unsafe.Offsetof(d.Size), Size: unsafe.Sizeof(d.Size)},
				{Name: "signature", CType: "const char *", Offset: unsafe.Offsetof(d.Signature), Size: unsafe.Sizeof(d.Signature)},
			},
			Size:  unsafe.Sizeof(d),
			Align: unsafe.Alignof(d),
		},
	}
}

// Describe renders Layouts as text, one structure per block.
func Describe() string {
	var b strings.Builder
	for i, info := range Layouts() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "struct %s size=%d align=%d\n", info.Name, info.Size, info.Align)
		for _, f := range info.Fields {
			fmt.Fprintf(&b, "  %3d %2d %-12s %s\n", f.Offset, f.Size, f.Name, f.CType)
		}
	}
	return b.String()
}
