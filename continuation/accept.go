package continuation

import (
	"context"
	"reflect"

	"github.com/wippyai/blocks/errors"
)

// gate pins the value type of an erased pair.
type gate struct {
	admits func(v any) bool
	goType string
}

// Accepted is an erased Continuation whose value type has been pinned to T.
type Accepted[T any] struct {
	c      *Continuation[any]
	goType string
}

// Accept pins the value type of an erased continuation to T. It must be called
// before any result exists and at most once. From then on, posting a value that
// is not a T panics in the completer.
func Accept[T any](c *Continuation[any]) *Accepted[T] {
	name := reflect.TypeFor[T]().String()
	switch c.s.load() {
	case stateEmpty:
	case stateRegistering, stateAwaiting:
		panic(errors.AcceptAfterSuspend(name))
	default:
		panic(errors.AcceptAfterResult(name))
	}
	g := &gate{
		admits: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		goType: name,
	}
	if !c.s.gate.CompareAndSwap(nil, g) {
		panic(errors.AlreadyAccepted(name))
	}
	return &Accepted[T]{c: c, goType: name}
}

// Poll is Continuation.Poll with the value asserted to T.
func (a *Accepted[T]) Poll(w Waker) (T, bool, error) {
	v, ok, err := a.c.Poll(w)
	if !ok {
		var zero T
		return zero, false, err
	}
	return a.assert(v), true, nil
}

// Await is Continuation.Await with the value asserted to T.
func (a *Accepted[T]) Await(ctx context.Context) (T, error) {
	v, err := a.c.Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.assert(v), nil
}

// Discard abandons the continuation.
func (a *Accepted[T]) Discard() {
	a.c.Discard()
}

// assert covers a Post that raced Accept and passed before the gate was set.
func (a *Accepted[T]) assert(v any) T {
	t, ok := v.(T)
	if !ok {
		panic(errors.TypeMismatch(errors.PhaseAccept, typeName(v), a.goType, v))
	}
	return t
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
