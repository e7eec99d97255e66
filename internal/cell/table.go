package cell

import (
	"sync"
)

// Table maps handles to ref-counted values with observer support.
type Table struct {
	backend   *backend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		backend: newBackend(),
	}
}

// Insert stores a value with a reference count of one and returns its handle.
func (t *Table) Insert(value any) (Handle, error) {
	handle, err := t.backend.create(value)
	if err != nil {
		return 0, err
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Refs:   1,
		Value:  value,
	})

	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.get(handle)
}

// Retain adds a reference. It fails for handles that are not live.
func (t *Table) Retain(handle Handle) bool {
	refs, ok := t.backend.retain(handle)
	if !ok {
		return false
	}
	t.notify(Event{Type: EventRetained, Handle: handle, Refs: refs})
	return true
}

// Release drops a reference. When the last reference goes the value is removed,
// its Drop method (if any) runs and (value, true) is returned.
func (t *Table) Release(handle Handle) (any, bool) {
	value, refs, freed, ok := t.backend.release(handle)
	if !ok {
		return nil, false
	}
	if !freed {
		t.notify(Event{Type: EventReleased, Handle: handle, Refs: refs})
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Value:  value,
	})

	return value, true
}

// Refs returns the current reference count, or 0 for a dead handle.
func (t *Table) Refs(handle Handle) int32 {
	return t.backend.refs(handle)
}

// Live reports whether handle refers to a stored value.
func (t *Table) Live(handle Handle) bool {
	return t.backend.refs(handle) > 0
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live cells.
func (t *Table) Len() int {
	return t.backend.len()
}

// Each iterates over all live cells.
func (t *Table) Each(fn func(Handle, any) bool) {
	t.backend.each(fn)
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnCellEvent(e)
	}
}
