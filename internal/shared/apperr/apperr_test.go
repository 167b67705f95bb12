package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("bad"), want: KindValidation},
		{name: "wrapped not found", err: fmt.Errorf("get resume: %w", NotFound("Resume not found.")), want: KindNotFound},
		{name: "conflict", err: Conflict("taken"), want: KindConflict},
		{name: "forbidden", err: Forbidden("nope"), want: KindAuthorization},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Internal to unwrap to cause")
	}
	if err.Message != "Internal server error." {
		t.Fatalf("unexpected message: %q", err.Message)
	}
}
