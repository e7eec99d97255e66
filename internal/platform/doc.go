// Package platform supplies the code and isa addresses stored in block records.
//
// Every record points at one of a fixed set of trampolines, chosen by arity
// (0..MaxArity) and by whether the C return type is void. All trampolines funnel
// into the Handlers installed by the block package, which resolve the record's
// captured cell handle back to the Go closure.
//
// On darwin with cgo the trampolines are C functions (platform_darwin.c) and the
// isa pointers are libSystem's _NSConcrete*Block symbols, so records are valid
// blocks for any Apple API. Elsewhere the addresses are static sentinels: records
// can only be driven by the in-process runtime in package native, which calls
// them through CallInvoke, CallCopy and CallDispose.
//
// AllocStatic hands out memory that outlives every record pointing into it.
// Descriptors and their signatures live there: native heap copies keep those
// addresses, so on darwin the memory comes from calloc rather than the Go heap.
package platform
