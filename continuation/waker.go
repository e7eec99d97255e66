package continuation

// Waker resumes a suspended consumer. It is the whole contract this package
// needs from a scheduler.
//
// Wake may be called from any goroutine or foreign thread, including from
// inside Post, and must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to Waker.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }
