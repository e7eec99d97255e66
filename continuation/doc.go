// Package continuation bridges push-style completion callbacks into a single
// suspension point.
//
// New returns a connected pair. The Completer end is handed to whoever produces
// the result, typically a native completion handler running on a foreign thread,
// and posts exactly once. The Continuation end is polled by one consumer with a
// Waker, or awaited directly:
//
//	c, p := continuation.New[int]()
//	go func() { p.Post(42) }()
//	v, err := c.Await(ctx)
//
// The pair shares one lock-free cell. Post never blocks and never takes a lock;
// a value posted before the first poll is returned without suspending, and a
// value posted after the consumer suspended wakes it exactly once.
//
// Either side may go away early. Discarding the continuation, explicitly or by
// letting it be garbage collected, makes a later Post return false. Abandoning
// the completer, explicitly or by garbage collection, resumes the consumer with
// ErrAbandoned.
//
// # Accept gate
//
// NewErased creates a pair of type any. Accept pins the value type afterwards,
// which is useful when the producer is wired up before the result type is
// known. Accept must run while no result exists and only once.
//
// # Contract violations
//
// Posting twice, polling after the value was taken and misuse of the accept
// gate panic with *errors.Error; errors.Violation recovers the details.
package continuation
