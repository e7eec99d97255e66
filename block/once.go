package block

import (
	"github.com/wippyai/blocks/abi"
)

// Once0 is an escaping block taking no arguments that fires at most once,
// the usual shape of a completion handler.
//
// Firing it a second time is a contract violation and panics with
// errors.KindConsumed. If the native side never fires it, the closure is released
// when the native side disposes the record.
type Once0[R abi.Word] struct{ base }

// NewOnce0 wraps f in a once block.
func NewOnce0[R abi.Word](f func() R, opts ...Option) *Once0[R] {
	return &Once0[R]{build(shape{
		call:   func([]uintptr) uintptr { return uintptr(f()) },
		result: abi.Encoding[R](),
		void:   abi.IsVoid[R](),
		once:   true,
	}, opts)}
}

// Fired reports whether the block has been invoked.
func (b *Once0[R]) Fired() bool { return b.state.fired.Load() }

// Once1 is a once block taking one argument.
type Once1[A, R abi.Word] struct{ base }

// NewOnce1 wraps f in a once block.
func NewOnce1[A, R abi.Word](f func(A) R, opts ...Option) *Once1[A, R] {
	return &Once1[A, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A]()},
		arity:  1,
		void:   abi.IsVoid[R](),
		once:   true,
	}, opts)}
}

// Fired reports whether the block has been invoked.
func (b *Once1[A, R]) Fired() bool { return b.state.fired.Load() }

// Once2 is a once block taking two arguments.
type Once2[A, B, R abi.Word] struct{ base }

// NewOnce2 wraps f in a once block.
func NewOnce2[A, B, R abi.Word](f func(A, B) R, opts ...Option) *Once2[A, B, R] {
	return &Once2[A, B, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]), B(w[1]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B]()},
		arity:  2,
		void:   abi.IsVoid[R](),
		once:   true,
	}, opts)}
}

// Fired reports whether the block has been invoked.
func (b *Once2[A, B, R]) Fired() bool { return b.state.fired.Load() }

// Once3 is a once block taking three arguments, e.g. the
// (data, response, error) handler of NSURLSession data tasks.
type Once3[A, B, C, R abi.Word] struct{ base }

// NewOnce3 wraps f in a once block.
func NewOnce3[A, B, C, R abi.Word](f func(A, B, C) R, opts ...Option) *Once3[A, B, C, R] {
	return &Once3[A, B, C, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(A(w[0]), B(w[1]), C(w[2]))) },
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B](), abi.Encoding[C]()},
		arity:  3,
		void:   abi.IsVoid[R](),
		once:   true,
	}, opts)}
}

// Fired reports whether the block has been invoked.
func (b *Once3[A, B, C, R]) Fired() bool { return b.state.fired.Load() }
