// Package native provides the other side of the blocks ABI: the runtime that
// copies, releases and invokes block records once Go code hands them out.
//
// Emulated implements the libclosure algorithm in process and works on every
// platform. It is what tests and non-Apple builds use to drive records exactly
// as libSystem would:
//
//	rt := native.NewEmulated()
//	b := block.NewMany1(func(n int64) int64 { return n * 2 }, block.OnRelease(done))
//	heap := rt.Copy(b.Ptr()) // the record escapes
//	b.Close()                // the stack frame ends
//	rt.Invoke(heap, 21)      // 42
//	rt.Release(heap)         // dispose helper runs, done is called
//
// On darwin with cgo, System binds the real _Block_copy and _Block_release.
package native
