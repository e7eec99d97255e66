package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseInvoke,
				Kind:       KindTypeMismatch,
				GoType:     "string",
				NativeType: "Q",
				Detail:     "cannot convert",
			},
			contains: []string{"[invoke]", "type_mismatch", "string", "native type Q", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhasePost,
				Kind:  KindDoublePost,
			},
			contains: []string{"[post]", "double_post"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindInvalidRecord,
				Detail: "bad isa",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "invalid_record", "bad isa", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDispose,
		Kind:  KindStaleHandle,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseInvoke,
		Kind:  KindConsumed,
	}

	if !err.Is(&Error{Phase: PhaseInvoke, Kind: KindConsumed}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhasePost, Kind: KindConsumed}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseInvoke, Kind: KindArity}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseInvoke, Kind: KindConsumed}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseInvoke, KindArity).
		GoType("func(uint64)").
		NativeType("v16@?0Q8").
		Value(2).
		Cause(cause).
		Detail("expected %d, got %d", 1, 2).
		Build()

	if err.Phase != PhaseInvoke {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseInvoke)
	}
	if err.Kind != KindArity {
		t.Errorf("Kind = %v, want %v", err.Kind, KindArity)
	}
	if err.GoType != "func(uint64)" {
		t.Errorf("GoType = %v, want 'func(uint64)'", err.GoType)
	}
	if err.NativeType != "v16@?0Q8" {
		t.Errorf("NativeType = %v, want 'v16@?0Q8'", err.NativeType)
	}
	if err.Value != 2 {
		t.Errorf("Value = %v, want 2", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected 1, got 2" {
		t.Errorf("Detail = %v, want 'expected 1, got 2'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Consumed", func(t *testing.T) {
		err := Consumed("v8@?0")
		if err.Phase != PhaseInvoke || err.Kind != KindConsumed {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("DoublePost", func(t *testing.T) {
		err := DoublePost("int")
		if err.Phase != PhasePost || err.Kind != KindDoublePost {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.GoType != "int" {
			t.Errorf("GoType = %v, want int", err.GoType)
		}
	})

	t.Run("PolledAfterCompletion", func(t *testing.T) {
		err := PolledAfterCompletion("string")
		if err.Kind != KindPolledAfterCompletion {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("AcceptAfterResult", func(t *testing.T) {
		err := AcceptAfterResult("int")
		if err.Phase != PhaseAccept || err.Kind != KindAcceptAfterResult {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("AcceptAfterSuspend", func(t *testing.T) {
		err := AcceptAfterSuspend("int")
		if err.Phase != PhaseAccept || err.Kind != KindAcceptAfterSuspend {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if containsSubstring(err.Detail, "result") {
			t.Errorf("Detail = %v, should not mention a result", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhasePost, "string", "int", "x")
		if err.Kind != KindTypeMismatch || err.GoType != "string" {
			t.Errorf("got %v/%v", err.Kind, err.GoType)
		}
		if err.Value != "x" {
			t.Errorf("Value = %v, want x", err.Value)
		}
		if !containsSubstring(err.Error(), "continuation accepts int") {
			t.Errorf("message %q should name the accepted type", err.Error())
		}
	})

	t.Run("AlreadyAccepted", func(t *testing.T) {
		err := AlreadyAccepted("int")
		if err.Kind != KindAlreadyAccepted {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("StaleHandle", func(t *testing.T) {
		err := StaleHandle(PhaseCopy, 7)
		if err.Kind != KindStaleHandle {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Value != uint32(7) {
			t.Errorf("Value = %v, want 7", err.Value)
		}
		if !containsSubstring(err.Detail, "7") {
			t.Errorf("Detail = %v, should contain handle", err.Detail)
		}
	})

	t.Run("Arity", func(t *testing.T) {
		err := Arity(PhaseInvoke, 2, 3)
		if err.Kind != KindArity {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Value != 3 {
			t.Errorf("Value = %v, want 3", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseRuntime, "*abi.Record")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseConstruct, "float arguments")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("InvalidRecord", func(t *testing.T) {
		err := InvalidRecord(PhaseCopy, "unknown isa")
		if err.Kind != KindInvalidRecord {
			t.Errorf("Kind = %v", err.Kind)
		}
	})
}

func TestViolation(t *testing.T) {
	recovered := func(fn func()) (r any) {
		defer func() { r = recover() }()
		fn()
		return nil
	}

	r := recovered(func() { panic(DoublePost("int")) })
	v, ok := Violation(r)
	if !ok {
		t.Fatal("expected *Error panic value")
	}
	if !errors.Is(v, &Error{Phase: PhasePost, Kind: KindDoublePost}) {
		t.Errorf("unexpected violation %v", v)
	}

	r = recovered(func() { panic("plain") })
	if _, ok := Violation(r); ok {
		t.Error("string panic should not be a violation")
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
