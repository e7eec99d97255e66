// Package blocks provides a typed Go interface to the clang blocks ABI used by
// Apple platform libraries.
//
// Go closures become block records that native code can call, copy and release,
// and native completion handlers are bridged back into one-shot continuations a
// Go consumer can await.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	blocks/
//	├── abi/             Record, descriptor and flag layout; type encodings
//	├── block/           Typed once, multi-call and environment wrappers
//	├── native/          Block runtime: in-process emulation and libSystem
//	├── continuation/    One-shot Completer/Continuation pair, accept gate
//	├── completion/      Completion handler blocks and lazily begun tasks
//	├── errors/          Structured error types for contract violations
//	├── internal/cell/   Ref-counted handle table holding closures
//	└── internal/platform/ Invoke, copy and dispose trampolines
//
// # Quick Start
//
// Await a native completion handler:
//
//	c, p := continuation.New[uintptr]()
//	h := completion.Handler1(p)
//	defer h.Close()
//
//	C.start_operation(h.Ptr())
//
//	result, err := c.Await(ctx)
//
// Hand native code a callback with shared state:
//
//	counter := block.NewManyEnv0(0, func(n *int) int {
//	    *n++
//	    return *n
//	})
//	defer counter.Close()
//	C.enumerate(counter.Ptr())
//
// # Word Types
//
// Arguments and results travel in integer registers: any abi.Word type (Go
// integer kinds and uintptr). Use uintptr for object pointers and abi.Void for
// blocks returning void.
package blocks
