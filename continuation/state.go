package continuation

import (
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/errors"
)

// state is the tag of the cell shared by a Continuation and its Completer.
type state = uint32

const (
	stateEmpty       state = iota // nothing posted, nobody waiting
	stateRegistering              // consumer is storing its waker
	stateAwaiting                 // waker stored, consumer suspended
	stateCompleted                // value stored, not yet taken
	stateConsumed                 // value taken by the consumer
	stateAbandoned                // consumer discarded the continuation
	stateBroken                   // completer dropped without posting
)

// ErrAbandoned is returned to a consumer whose Completer was abandoned or
// garbage collected without posting.
var ErrAbandoned = errors.New(errors.PhasePoll, errors.KindAbandoned).
	Detail("completer dropped without posting").
	Build()

// shared is the single synchronization cell of a pair.
//
// value is written by the completer before the transition to Completed and read
// by the consumer after observing it. waker is written by the consumer while in
// Registering and read by the completer only after it moves the state out of
// Awaiting.
type shared[T any] struct {
	state  atomic.Uint32
	posted atomic.Bool
	gate   atomic.Pointer[gate]
	value  T
	waker  Waker
	goType string
}

func newShared[T any]() *shared[T] {
	return &shared[T]{goType: reflect.TypeFor[T]().String()}
}

func (s *shared[T]) post(v T) bool {
	if !s.posted.CompareAndSwap(false, true) {
		panic(errors.DoublePost(s.goType))
	}
	if g := s.gate.Load(); g != nil && !g.admits(v) {
		s.brk()
		panic(errors.TypeMismatch(errors.PhasePost, typeName(v), g.goType, v))
	}

	s.value = v
	for {
		switch st := s.state.Load(); st {
		case stateEmpty, stateRegistering:
			if s.state.CompareAndSwap(st, stateCompleted) {
				return true
			}
		case stateAwaiting:
			if s.state.CompareAndSwap(stateAwaiting, stateCompleted) {
				s.wake()
				return true
			}
		default:
			var zero T
			s.value = zero
			Logger().Debug("post to abandoned continuation dropped", zap.String("type", s.goType))
			return false
		}
	}
}

// abandon is the completer saying it will never post.
func (s *shared[T]) abandon() {
	if !s.posted.CompareAndSwap(false, true) {
		return
	}
	if s.brk() {
		Logger().Debug("completer abandoned", zap.String("type", s.goType))
	}
}

// brk moves a live cell to Broken, waking a suspended consumer. It reports
// whether the consumer was still interested.
func (s *shared[T]) brk() bool {
	for {
		switch st := s.state.Load(); st {
		case stateEmpty, stateRegistering:
			if s.state.CompareAndSwap(st, stateBroken) {
				return true
			}
		case stateAwaiting:
			if s.state.CompareAndSwap(stateAwaiting, stateBroken) {
				s.wake()
				return true
			}
		default:
			return false
		}
	}
}

// wake runs the stored waker. Callers own the transition out of Awaiting.
func (s *shared[T]) wake() {
	w := s.waker
	s.waker = nil
	if w != nil {
		w.Wake()
	}
}

func (s *shared[T]) poll(w Waker) (T, bool, error) {
	var zero T
	for {
		switch st := s.state.Load(); st {
		case stateCompleted:
			if s.state.CompareAndSwap(stateCompleted, stateConsumed) {
				v := s.value
				s.value = zero
				return v, true, nil
			}
		case stateEmpty, stateAwaiting:
			if !s.state.CompareAndSwap(st, stateRegistering) {
				continue
			}
			s.waker = w
			if s.state.CompareAndSwap(stateRegistering, stateAwaiting) {
				return zero, false, nil
			}
			// The completer finished while we were registering.
			s.waker = nil
		case stateBroken:
			return zero, false, ErrAbandoned
		case stateRegistering:
			panic(errors.New(errors.PhasePoll, errors.KindUnsupported).
				GoType(s.goType).
				Detail("concurrent poll of a single-consumer continuation").
				Build())
		default:
			panic(errors.PolledAfterCompletion(s.goType))
		}
	}
}

// discard is the consumer losing interest. It reports whether a posted value
// was dropped unread.
func (s *shared[T]) discard() bool {
	for {
		switch st := s.state.Load(); st {
		case stateEmpty, stateAwaiting:
			if s.state.CompareAndSwap(st, stateAbandoned) {
				s.waker = nil
				return false
			}
		case stateCompleted:
			if s.state.CompareAndSwap(stateCompleted, stateConsumed) {
				var zero T
				s.value = zero
				return true
			}
		default:
			return false
		}
	}
}

func (s *shared[T]) load() state {
	return s.state.Load()
}
