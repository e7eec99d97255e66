// Package block packages Go closures as native block records.
//
// A record is the struct clang emits for a block literal: isa, flags, invoke
// function, descriptor and captured variables. Native code can call it, copy it
// to the heap with _Block_copy and release it with _Block_release. The records
// built here follow that ABI bit for bit. The one captured word is a handle into
// a table of Go closures, so records can be memcpy'd by the native runtime
// without carrying Go pointers into C memory.
//
// # Wrapper types
//
// Each wrapper fixes its signature at compile time. Arguments and results are
// abi.Word types; abi.Void selects a void-returning block.
//
//	Once0..Once3       fire at most once; a second call panics
//	Many0..Many3       fire any number of times, no shared state
//	ManyEnv0..ManyEnv3 fire any number of times with a shared *E environment
//
// # Lifecycle
//
// A new record is a stack block. It holds one reference to its closure until
// either Close is called (the record never escaped) or the native side copies it
// to the heap, which takes that reference over. From then on the closure lives
// until the last heap copy is released:
//
//	b := block.NewOnce1(func(err uintptr) abi.Void { ...; return 0 })
//	defer b.Close()
//	C.do_something_async(b.Ptr())
//
// NoEscape records carry no helpers and must not outlive the call that receives
// them. Static records are global blocks that live for the rest of the process.
package block
