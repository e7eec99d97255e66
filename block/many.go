package block

import (
	"github.com/wippyai/blocks/abi"
)

// Many0 is an escaping block with no shared state that may fire any number of
// times until the native side disposes it.
type Many0[R abi.Word] struct{ base }

// NewMany0 wraps f in a multi-call block.
func NewMany0[R abi.Word](f func() R, opts ...Option) *Many0[R] {
	return &Many0[R]{build(shape{
		call:   func([]uintptr) uintptr { return uintptr(f()) },
		result: abi.Encoding[R](),
		void:   abi.IsVoid[R](),
	}, opts)}
}

// Many1 is a multi-call block taking one argument.
type Many1[A, R abi.Word] struct{ base }

// NewMany1 wraps f in a multi-call block.
func NewMany1[A, R abi.Word](f func(A) R, opts ...Option) *Many1[A, R] {
	return &Many1[A, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A]()},
		arity:  1,
		void:   abi.IsVoid[R](),
	}, opts)}
}

// Many2 is a multi-call block taking two arguments.
type Many2[A, B, R abi.Word] struct{ base }

// NewMany2 wraps f in a multi-call block.
func NewMany2[A, B, R abi.Word](f func(A, B) R, opts ...Option) *Many2[A, B, R] {
	return &Many2[A, B, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]), B(w[1]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B]()},
		arity:  2,
		void:   abi.IsVoid[R](),
	}, opts)}
}

// Many3 is a multi-call block taking three arguments.
type Many3[A, B, C, R abi.Word] struct{ base }

// NewMany3 wraps f in a multi-call block.
func NewMany3[A, B, C, R abi.Word](f func(A, B, C) R, opts ...Option) *Many3[A, B, C, R] {
	return &Many3[A, B, C, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]), B(w[1]), C(w[2]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B](), abi.Encoding[C]()},
		arity:  3,
		void:   abi.IsVoid[R](),
	}, opts)}
}
