// Package errors provides structured error types for the blocks module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: path, Go type and native type encoding, and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindArity).
//		NativeType("v24@?0Q8q16").
//		Detail("expected %d arguments, got %d", 2, 1).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DoublePost("int")
//	err := errors.StaleHandle(errors.PhaseDispose, 7)
//
// Contract violations (a Once block fired twice, a second post on a completer, an
// accept after a result exists) are not returned: they panic with an *Error so they
// cannot be ignored. Use Violation to inspect a recovered panic value.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
