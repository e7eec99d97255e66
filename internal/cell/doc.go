// Package cell stores the Go state captured by native block records.
//
// A block record crosses into C memory, so it cannot hold Go pointers. Instead its
// single captured word is a Handle into a Table. Each entry carries a reference
// count: one reference per record copy that may still call or dispose it.
//
//	table := cell.NewTable()
//	h, _ := table.Insert(state) // refs = 1
//	table.Retain(h)             // copy helper
//	table.Release(h)            // dispose helper
//	table.Release(h)            // last release: state.Drop() runs, slot freed
//
// Handles carry a generation so a stale handle never resolves to a reused slot.
// Observers see created, retained, released and dropped events.
package cell
