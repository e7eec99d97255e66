// Package completion pairs native completion handlers with continuations.
//
// A handler is a once block whose only job is to post its arguments into a
// continuation.Completer. Hand the block to an asynchronous native API and await
// the continuation:
//
//	c, p := continuation.New[uintptr]()
//	h := completion.Handler1(p)
//	defer h.Close()
//	C.start_download(h.Ptr())
//	errPtr, err := c.Await(ctx)
//
// If the native side releases the handler without ever calling it, the
// completer is abandoned and the consumer gets continuation.ErrAbandoned rather
// than waiting forever.
//
// Task wraps the same flow so the operation starts lazily on first poll.
package completion
