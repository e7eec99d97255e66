package completion

import (
	"context"

	"github.com/wippyai/blocks/continuation"
)

// Canceler is implemented by begun values that can stop an in-flight operation.
type Canceler interface {
	Cancel()
}

type closer interface {
	Close()
}

// Task starts an asynchronous operation on first poll and yields its result.
//
// The begun value B returned by the begin function, typically the completion
// block or a handle to the native operation, is kept until the task completes.
// If it has a Close method, Close is called then.
//
// A Task belongs to a single consumer.
type Task[T, B any] struct {
	begin   func(*continuation.Completer[T]) B
	c       *continuation.Continuation[T]
	p       *continuation.Completer[T]
	begun   B
	started bool
	done    bool
}

// Begin creates a task that calls begin with the completer on first poll.
func Begin[T, B any](begin func(*continuation.Completer[T]) B) *Task[T, B] {
	c, p := continuation.New[T]()
	return &Task[T, B]{begin: begin, c: c, p: p}
}

// Begun returns the value begin produced, and whether begin has run and the
// task is still in flight.
func (t *Task[T, B]) Begun() (B, bool) {
	return t.begun, t.started && !t.done
}

// Poll starts the operation if needed and then polls its continuation.
func (t *Task[T, B]) Poll(w continuation.Waker) (T, bool, error) {
	t.start()
	v, ok, err := t.c.Poll(w)
	if ok || err != nil {
		t.finish()
	}
	return v, ok, err
}

// Await starts the operation if needed and waits for its result. If ctx is
// done first the task is cancelled.
func (t *Task[T, B]) Await(ctx context.Context) (T, error) {
	t.start()
	v, err := t.c.Await(ctx)
	if err != nil && ctx.Err() != nil {
		t.cancelBegun()
	}
	t.finish()
	return v, err
}

// Cancel discards the result and asks the begun value to stop, if it can. A
// task that never started is simply dropped.
func (t *Task[T, B]) Cancel() {
	if t.done {
		return
	}
	t.c.Discard()
	t.cancelBegun()
	t.finish()
}

func (t *Task[T, B]) start() {
	if t.started {
		return
	}
	t.started = true
	p, begin := t.p, t.begin
	t.p, t.begin = nil, nil
	t.begun = begin(p)
}

func (t *Task[T, B]) cancelBegun() {
	if !t.started || t.done {
		return
	}
	if c, ok := any(t.begun).(Canceler); ok {
		c.Cancel()
	}
}

func (t *Task[T, B]) finish() {
	if t.done {
		return
	}
	t.done = true
	if c, ok := any(t.begun).(closer); ok && t.started {
		c.Close()
	}
	var zero B
	t.begun = zero
}
