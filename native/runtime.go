package native

import (
	"unsafe"
)

// Runtime is the native side of the blocks ABI: what libSystem does with a
// record once Go hands it over.
type Runtime interface {
	// Copy is _Block_copy. Stack records are moved to the heap, heap records
	// gain a reference and global records are returned as is.
	Copy(blk unsafe.Pointer) unsafe.Pointer
	// Release is _Block_release. The last release of a heap record runs its
	// dispose helper and frees it.
	Release(blk unsafe.Pointer)
	// Invoke calls the record's invoke function with the argument words.
	Invoke(blk unsafe.Pointer, args ...uintptr) uintptr
}
