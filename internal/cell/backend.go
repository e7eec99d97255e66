package cell

import (
	"errors"
	"sync"
)

// ErrFull is returned by Insert when every handle index is in use.
var ErrFull = errors.New("cell table full")

// backend is the slot storage behind Table: a slice of entries with a free list
// and per-slot generations so stale handles never alias a reused slot.
type backend struct {
	entries  []entry
	freeList []int
	mu       sync.RWMutex
}

type entry struct {
	value any
	gen   uint32
	refs  int32
	valid bool
}

func newBackend() *backend {
	return &backend{
		entries:  make([]entry, 0, 64),
		freeList: make([]int, 0, 16),
	}
}

// create stores value with one reference.
func (b *backend) create(value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.freeList) > 0 {
		idx := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		e := &b.entries[idx]
		e.value = value
		e.refs = 1
		e.valid = true
		return makeHandle(idx, e.gen), nil
	}

	if len(b.entries) >= indexMask {
		return 0, ErrFull
	}
	b.entries = append(b.entries, entry{value: value, refs: 1, valid: true})
	return makeHandle(len(b.entries)-1, 0), nil
}

// lookup returns the live entry for h. Caller holds b.mu.
func (b *backend) lookup(h Handle) *entry {
	if h == 0 {
		return nil
	}
	idx := h.index()
	if idx < 0 || idx >= len(b.entries) {
		return nil
	}
	e := &b.entries[idx]
	if !e.valid || e.gen&genMask != h.generation() {
		return nil
	}
	return e
}

func (b *backend) get(h Handle) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

func (b *backend) retain(h Handle) (int32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(h)
	if e == nil {
		return 0, false
	}
	e.refs++
	return e.refs, true
}

// release drops one reference. When the count reaches zero the slot is freed and
// the value returned with freed == true.
func (b *backend) release(h Handle) (value any, refs int32, freed, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(h)
	if e == nil {
		return nil, 0, false, false
	}
	e.refs--
	if e.refs > 0 {
		return e.value, e.refs, false, true
	}

	value = e.value
	e.value = nil
	e.refs = 0
	e.valid = false
	e.gen++
	b.freeList = append(b.freeList, h.index())
	return value, 0, true, true
}

func (b *backend) refs(h Handle) int32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(h)
	if e == nil {
		return 0
	}
	return e.refs
}

func (b *backend) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

func (b *backend) each(fn func(Handle, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(makeHandle(i, e.gen), e.value) {
				break
			}
		}
	}
}
