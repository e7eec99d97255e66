package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the block or bridge lifecycle the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // wrapper construction
	PhaseInvoke    Phase = "invoke"    // native invoke trampoline
	PhaseCopy      Phase = "copy"      // copy helper / Block_copy
	PhaseDispose   Phase = "dispose"   // dispose helper / Block_release
	PhasePost      Phase = "post"      // completer side
	PhasePoll      Phase = "poll"      // continuation side
	PhaseAccept    Phase = "accept"    // accept gate
	PhaseRuntime   Phase = "runtime"   // native runtime operations
)

// Kind categorizes the error
type Kind string

const (
	KindConsumed              Kind = "consumed"
	KindDoublePost            Kind = "double_post"
	KindPolledAfterCompletion Kind = "polled_after_completion"
	KindAcceptAfterResult     Kind = "accept_after_result"
	KindAcceptAfterSuspend    Kind = "accept_after_suspend"
	KindAlreadyAccepted       Kind = "already_accepted"
	KindTypeMismatch          Kind = "type_mismatch"
	KindStaleHandle           Kind = "stale_handle"
	KindNilPointer            Kind = "nil_pointer"
	KindUnsupported           Kind = "unsupported"
	KindInvalidRecord         Kind = "invalid_record"
	KindAbandoned             Kind = "abandoned"
	KindArity                 Kind = "arity"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	NativeType string
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.GoType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.NativeType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.NativeType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// NativeType sets the native type encoding
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Consumed reports a Once record invoked after it already fired
func Consumed(signature string) *Error {
	return &Error{
		Phase:      PhaseInvoke,
		Kind:       KindConsumed,
		NativeType: signature,
		Detail:     "once block invoked more than once",
	}
}

// DoublePost reports a second post on a completer pair
func DoublePost(goType string) *Error {
	return &Error{
		Phase:  PhasePost,
		Kind:   KindDoublePost,
		GoType: goType,
		Detail: "completion handler called more than once",
	}
}

// PolledAfterCompletion reports a poll on a continuation that already delivered
func PolledAfterCompletion(goType string) *Error {
	return &Error{
		Phase:  PhasePoll,
		Kind:   KindPolledAfterCompletion,
		GoType: goType,
		Detail: "continuation polled after its result was delivered",
	}
}

// AcceptAfterResult reports an accept gate used after a result was posted
func AcceptAfterResult(goType string) *Error {
	return &Error{
		Phase:  PhaseAccept,
		Kind:   KindAcceptAfterResult,
		GoType: goType,
		Detail: "accept called after a result exists",
	}
}

// AcceptAfterSuspend reports an accept gate used while the consumer is already
// waiting on the continuation
func AcceptAfterSuspend(goType string) *Error {
	return &Error{
		Phase:  PhaseAccept,
		Kind:   KindAcceptAfterSuspend,
		GoType: goType,
		Detail: "accept called after the consumer suspended",
	}
}

// AlreadyAccepted reports a second accept on the same continuation
func AlreadyAccepted(goType string) *Error {
	return &Error{
		Phase:  PhaseAccept,
		Kind:   KindAlreadyAccepted,
		GoType: goType,
		Detail: "result type already pinned",
	}
}

// TypeMismatch reports a value of type goType where the continuation accepts
// only want. The rejected value is kept in Value.
func TypeMismatch(phase Phase, goType, want string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		GoType: goType,
		Detail: "continuation accepts " + want,
		Value:  value,
	}
}

// StaleHandle reports a record whose cell handle no longer resolves
func StaleHandle(phase Phase, handle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStaleHandle,
		Detail: fmt.Sprintf("cell handle %d is not live", handle),
		Value:  handle,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidRecord reports a record whose header does not match the ABI
func InvalidRecord(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidRecord,
		Detail: detail,
	}
}

// Arity reports a native call with the wrong number of words
func Arity(phase Phase, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Detail: fmt.Sprintf("expected %d arguments, got %d", want, got),
		Value:  got,
	}
}

// Violation extracts the *Error carried by a recovered panic value.
// Contract violations in this module panic with *Error; anything else yields (nil, false).
func Violation(recovered any) (*Error, bool) {
	e, ok := recovered.(*Error)
	return e, ok
}
