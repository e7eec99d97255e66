// Package abi defines the in-memory shape of clang blocks as seen by native code.
//
// A block is a record whose first fields are fixed by the blocks ABI:
//
//	struct Block_layout {
//	    void *isa;                     // _NSConcrete{Stack,Malloc,Global}Block
//	    volatile int32_t flags;        // Flag* bits and the latching ref count
//	    int32_t reserved;
//	    R (*invoke)(void *block, ...); // trampoline, first argument is the block
//	    struct Block_descriptor_1 *descriptor;
//	    // captured variables follow
//	};
//
// Record mirrors that header and carries exactly one captured word, an opaque
// handle into the Go-side cell table. DescriptorHelpers and DescriptorBasic mirror
// the two descriptor shapes, with and without copy/dispose helpers. Descriptors
// reachable from a record given to native code must not live in the Go heap.
//
// Arguments and results cross the boundary as machine words (the Word constraint).
// Void selects a void-returning trampoline. Encoding and SignatureOf build the
// ObjC type encodings stored in descriptors.
//
// Any deviation from this layout is undefined behavior at the native boundary.
// The layout is pinned by tests and by the golden file testdata/layout.golden.
package abi
