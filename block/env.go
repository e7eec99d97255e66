package block

import (
	"github.com/wippyai/blocks/abi"
)

// Environment state
//
// A multi-call block cannot move values into any single invocation, so state
// shared across invocations lives in an environment: it moves into the block once,
// at construction, and every invocation receives a pointer to it.
//
// The environment belongs to the record. It is released when the native side
// disposes the last copy of the record, which happens some time after the last
// invocation the native side chose to make. If a pointer to the environment has a
// Drop() method, it runs at that point, exactly once.
//
// Invocations get exclusive mutable access. The caller guarantees the native side
// never invokes the record reentrantly or from two threads at once; this is not
// checked.

// ManyEnv0 is a multi-call block with a shared environment and no arguments.
type ManyEnv0[E any, R abi.Word] struct{ base }

// NewManyEnv0 moves env into a new multi-call block running f.
func NewManyEnv0[E any, R abi.Word](env E, f func(*E) R, opts ...Option) *ManyEnv0[E, R] {
	p := &env
	return &ManyEnv0[E, R]{build(shape{
		call:   func([]uintptr) uintptr { return uintptr(f(p)) },
		env:    p,
		result: abi.Encoding[R](),
		void:   abi.IsVoid[R](),
	}, opts)}
}

// ManyEnv1 is a multi-call block with a shared environment and one argument.
type ManyEnv1[E any, A, R abi.Word] struct{ base }

// NewManyEnv1 moves env into a new multi-call block running f.
func NewManyEnv1[E any, A, R abi.Word](env E, f func(*E, A) R, opts ...Option) *ManyEnv1[E, A, R] {
	p := &env
	return &ManyEnv1[E, A, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(p, A(w[0]))) },
		env:    p,
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A]()},
		arity:  1,
		void:   abi.IsVoid[R](),
	}, opts)}
}

// ManyEnv2 is a multi-call block with a shared environment and two arguments.
type ManyEnv2[E any, A, B, R abi.Word] struct{ base }

// NewManyEnv2 moves env into a new multi-call block running f.
func NewManyEnv2[E any, A, B, R abi.Word](env E, f func(*E, A, B) R, opts ...Option) *ManyEnv2[E, A, B, R] {
	p := &env
	return &ManyEnv2[E, A, B, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(p, A(w[0]), B(w[1]))) },
		env:    p,
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B]()},
		arity:  2,
		void:   abi.IsVoid[R](),
	}, opts)}
}

// ManyEnv3 is a multi-call block with a shared environment and three arguments.
type ManyEnv3[E any, A, B, C, R abi.Word] struct{ base }

// NewManyEnv3 moves env into a new multi-call block running f.
func NewManyEnv3[E any, A, B, C, R abi.Word](env E, f func(*E, A, B, C) R, opts ...Option) *ManyEnv3[E, A, B, C, R] {
	p := &env
	return &ManyEnv3[E, A, B, C, R]{build(shape{
		call:   func(w []uintptr) uintptr { return uintptr(f(p, A(w[0]), B(w[1]), C(w[2]))) },
		env:    p,
		result: abi.Encoding[R](),
		args:   []string{abi.Encoding[A](), abi.Encoding[B](), abi.Encoding[C]()},
		arity:  3,
		void:   abi.IsVoid[R](),
	}, opts)}
}
