package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "located error",
			err:      MalformedScope(3, 0x1a, "end without open scope"),
			contains: []string{"[scope]", "malformed_scope", "func[3]/0x1a", "end without open scope"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name:     "error with cause",
			err:      Load("decode hex input", errors.New("odd length")),
			contains: []string{"[load]", "invalid_data", "decode hex input", "caused by", "odd length"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ParseFailed("module", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := UnresolvedBranch(1, 0x20, "br", 4)

	if !errors.Is(err, &Error{Phase: PhaseBranch, Kind: KindUnresolvedBranch}) {
		t.Error("Is should match same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseScope, Kind: KindUnresolvedBranch}) {
		t.Error("Is should not match different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseBranch, Kind: KindMalformedScope}) {
		t.Error("Is should not match different kind")
	}
	if err.Value != uint32(4) {
		t.Errorf("Value = %v, want 4", err.Value)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCall, KindOutOfBounds).
		Path(FuncPath(2), OffsetPath(16)).
		Value(42).
		Cause(cause).
		Detail("callee %d of %d", 42, 7).
		Build()

	if err.Phase != PhaseCall {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCall)
	}
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
	}
	if len(err.Path) != 2 || err.Path[0] != "func[2]" || err.Path[1] != "0x10" {
		t.Errorf("Path = %v, want [func[2] 0x10]", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "callee 42 of 7" {
		t.Errorf("Detail = %q, want %q", err.Detail, "callee 42 of 7")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("MissingSuccessor", func(t *testing.T) {
		err := MissingSuccessor(0, 8, "no block after if")
		if err.Phase != PhaseEdge || err.Kind != KindMissingSuccessor {
			t.Errorf("got %v/%v, want edge/missing_successor", err.Phase, err.Kind)
		}
	})

	t.Run("MalformedOperand", func(t *testing.T) {
		cause := errors.New("invalid syntax")
		err := MalformedOperand(PhaseCall, []string{FuncPath(1)}, "x", cause)
		if err.Kind != KindMalformedOperand {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedOperand)
		}
		if err.Value != "x" {
			t.Errorf("Value = %v, want x", err.Value)
		}
		if !errors.Is(err, cause) {
			t.Error("MalformedOperand does not unwrap to its cause")
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseCall, nil, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("FunctionError", func(t *testing.T) {
		cause := MalformedScope(4, 0, "2 scopes left open")
		err := FunctionError(4, cause)
		if err.Phase != PhaseScope {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseScope)
		}
		if !errors.Is(err, &Error{Phase: PhaseScope, Kind: KindMalformedScope}) {
			t.Error("FunctionError does not match its malformed scope cause")
		}

		plain := FunctionError(4, errors.New("truncated"))
		if plain.Phase != PhaseDecode {
			t.Errorf("Phase = %v, want %v", plain.Phase, PhaseDecode)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "opcode 0xff")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseExport, "function", "main")
		if !strings.Contains(err.Detail, `"main"`) {
			t.Errorf("Detail = %q, want quoted name", err.Detail)
		}
	})
}

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	if d.Err() != nil {
		t.Errorf("empty Diagnostics.Err() = %v, want nil", d.Err())
	}

	d = append(d,
		UnresolvedBranch(0, 4, "br", 3),
		UnresolvedBranch(0, 9, "br_if", 1),
		MissingSuccessor(0, 12, "no fallthrough block"),
	)
	if got := d.Count(KindUnresolvedBranch); got != 2 {
		t.Errorf("Count(unresolved) = %d, want 2", got)
	}
	if got := d.Count(KindMalformedScope); got != 0 {
		t.Errorf("Count(malformed) = %d, want 0", got)
	}

	err := d.Err()
	if !errors.Is(err, &Error{Phase: PhaseEdge, Kind: KindMissingSuccessor}) {
		t.Error("joined error does not contain the missing successor diagnostic")
	}
}
