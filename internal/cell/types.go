package cell

// Handle is an opaque reference to a cell, small enough to live in a block's
// captured word. The low bits hold the slot index plus one, the high bits a
// generation that changes every time the slot is freed. Handle 0 is always invalid.
type Handle uint32

const (
	indexBits = 20
	indexMask = 1<<indexBits - 1
	genMask   = 1<<(32-indexBits) - 1
)

func makeHandle(index int, gen uint32) Handle {
	return Handle(gen&genMask)<<indexBits | Handle(index+1)
}

func (h Handle) index() int { return int(h&indexMask) - 1 }

func (h Handle) generation() uint32 { return uint32(h) >> indexBits }

// Dropper is implemented by values that release resources when their cell is
// freed. Drop runs exactly once, outside the table lock.
type Dropper interface {
	Drop()
}

// EventType identifies a cell lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventRetained
	EventReleased
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventRetained:
		return "retained"
	case EventReleased:
		return "released"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a cell lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Refs   int32
	Type   EventType
}

// Observer receives notifications about cell lifecycle events.
type Observer interface {
	OnCellEvent(Event)
}
