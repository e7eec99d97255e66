package cell

import (
	"sync"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnCellEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h, err := table.Insert("test")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}
	if table.Refs(h) != 1 {
		t.Fatalf("Expected 1 ref, got %d", table.Refs(h))
	}

	val, freed := table.Release(h)
	if !freed {
		t.Fatal("Release of the only reference should free the cell")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok := table.Get(h); ok {
		t.Fatal("Expected Get to fail after release")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after release")
	}
}

func TestTable_RetainRelease(t *testing.T) {
	table := NewTable()
	h, _ := table.Insert(42)

	if !table.Retain(h) || !table.Retain(h) {
		t.Fatal("Retain failed")
	}
	if table.Refs(h) != 3 {
		t.Fatalf("Expected 3 refs, got %d", table.Refs(h))
	}

	for i := 0; i < 2; i++ {
		if _, freed := table.Release(h); freed {
			t.Fatalf("release %d freed early", i)
		}
	}
	if !table.Live(h) {
		t.Fatal("cell should still be live")
	}
	if _, freed := table.Release(h); !freed {
		t.Fatal("last release should free")
	}

	if table.Retain(h) {
		t.Fatal("Retain on a dead handle should fail")
	}
	if _, freed := table.Release(h); freed {
		t.Fatal("Release on a dead handle should not free")
	}
}

func TestTable_StaleHandleAfterReuse(t *testing.T) {
	table := NewTable()

	h1, _ := table.Insert("first")
	table.Release(h1)

	h2, _ := table.Insert("second")
	if h1.index() != h2.index() {
		t.Fatalf("expected slot reuse, got %d and %d", h1.index(), h2.index())
	}
	if h1 == h2 {
		t.Fatal("reused slot must carry a new generation")
	}

	if _, ok := table.Get(h1); ok {
		t.Fatal("stale handle must not resolve to the reused slot")
	}
	val, ok := table.Get(h2)
	if !ok || val != "second" {
		t.Fatalf("Get(h2) = %v, %v", val, ok)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h, _ := table.Insert("test")
	table.Retain(h)
	table.Release(h)
	table.Release(h)

	want := []EventType{EventCreated, EventRetained, EventReleased, EventDropped}
	if len(obs.events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(obs.events))
	}
	for i, typ := range want {
		if obs.events[i].Type != typ {
			t.Errorf("event %d = %v, want %v", i, obs.events[i].Type, typ)
		}
		if obs.events[i].Handle != h {
			t.Errorf("event %d has wrong handle", i)
		}
	}
	if obs.events[1].Refs != 2 || obs.events[2].Refs != 1 {
		t.Errorf("unexpected ref counts in events: %+v", obs.events)
	}

	table.Unsubscribe(obs)
	table.Insert("test2")
	if len(obs.events) != len(want) {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h, _ := table.Insert(d)
	table.Retain(h)
	table.Release(h)
	if d.count != 0 {
		t.Fatal("Drop() must not run while references remain")
	}
	table.Release(h)
	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
	table.Release(h)
	if d.count != 1 {
		t.Fatal("Drop() ran again on a dead handle")
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable()
	table.Insert("a")
	h, _ := table.Insert("b")
	table.Insert("c")
	table.Release(h)

	seen := map[any]bool{}
	table.Each(func(h Handle, v any) bool {
		seen[v] = true
		return true
	})
	if len(seen) != 2 || !seen["a"] || !seen["c"] {
		t.Fatalf("unexpected iteration result %v", seen)
	}

	count := 0
	table.Each(func(Handle, any) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Each should stop early, visited %d", count)
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	table := NewTable()

	if _, ok := table.Get(0); ok {
		t.Fatal("handle 0 must be invalid")
	}
	if _, ok := table.Get(makeHandle(99, 0)); ok {
		t.Fatal("out of range handle must be invalid")
	}
	if table.Refs(0) != 0 {
		t.Fatal("Refs on invalid handle should be 0")
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable()
	h, _ := table.Insert(&dropCounter{})

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		table.Retain(h)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.Release(h)
		}()
	}
	wg.Wait()

	if table.Refs(h) != 1 {
		t.Fatalf("Expected 1 ref, got %d", table.Refs(h))
	}
	v, freed := table.Release(h)
	if !freed {
		t.Fatal("final release should free")
	}
	if v.(*dropCounter).count != 1 {
		t.Fatal("Drop should run exactly once")
	}
}
