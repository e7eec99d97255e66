package continuation

import (
	"context"
	"runtime"
)

// Continuation is the consumer end of a one-shot pair: it yields the posted
// value exactly once. It is not safe for concurrent polling; a single consumer
// owns it, though that consumer may resume on any goroutine.
//
// A Continuation that becomes unreachable without being consumed is discarded,
// so a later Post reports false instead of storing into a dead cell.
type Continuation[T any] struct {
	s       *shared[T]
	cleanup runtime.Cleanup
}

// Completer is the producer end of a one-shot pair. Post may be called from
// any goroutine or foreign thread, at most once.
//
// A Completer that becomes unreachable without posting is abandoned and its
// consumer receives ErrAbandoned.
type Completer[T any] struct {
	s       *shared[T]
	cleanup runtime.Cleanup
}

// New creates a connected Continuation and Completer.
func New[T any]() (*Continuation[T], *Completer[T]) {
	s := newShared[T]()
	c := &Continuation[T]{s: s}
	p := &Completer[T]{s: s}
	c.cleanup = runtime.AddCleanup(c, func(s *shared[T]) { s.discard() }, s)
	p.cleanup = runtime.AddCleanup(p, func(s *shared[T]) { s.abandon() }, s)
	return c, p
}

// NewErased creates a pair whose value type is decided later by Accept.
func NewErased() (*Continuation[any], *Completer[any]) {
	return New[any]()
}

// Poll takes the value if it has been posted. Otherwise it stores w, to be
// woken exactly once when the value arrives or the completer is abandoned, and
// reports false. Each Poll replaces the previously stored waker.
//
// Poll returns ErrAbandoned once the completer is gone without posting. Polling
// after the value was taken, or after Discard, panics.
func (c *Continuation[T]) Poll(w Waker) (T, bool, error) {
	v, ok, err := c.s.poll(w)
	if ok || err != nil {
		c.cleanup.Stop()
	}
	return v, ok, err
}

// Await suspends the calling goroutine until the value is posted, the
// completer is abandoned or ctx is done. On ctx done the continuation is
// discarded and ctx.Err() is returned.
func (c *Continuation[T]) Await(ctx context.Context) (T, error) {
	wake := make(chan struct{}, 1)
	w := WakerFunc(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	for {
		v, ok, err := c.Poll(w)
		if ok || err != nil {
			return v, err
		}
		select {
		case <-wake:
		case <-ctx.Done():
			c.Discard()
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Discard abandons the continuation. A later Post returns false; a value
// already posted but not yet taken is dropped. Discard is idempotent.
func (c *Continuation[T]) Discard() {
	c.s.discard()
	c.cleanup.Stop()
}

// Ready reports whether Poll would return without suspending.
func (c *Continuation[T]) Ready() bool {
	st := c.s.load()
	return st == stateCompleted || st == stateBroken
}

// Post delivers v to the continuation and wakes it if it is suspended. It
// never blocks. It reports false when the continuation was already discarded,
// in which case v is dropped.
//
// Posting twice panics with errors.KindDoublePost.
func (p *Completer[T]) Post(v T) bool {
	p.cleanup.Stop()
	return p.s.post(v)
}

// Abandon declares that the completer will never post. A suspended consumer is
// woken and receives ErrAbandoned. Abandon after Post does nothing.
func (p *Completer[T]) Abandon() {
	p.cleanup.Stop()
	p.s.abandon()
}

// Posted reports whether Post or Abandon has been called.
func (p *Completer[T]) Posted() bool {
	return p.s.posted.Load()
}
