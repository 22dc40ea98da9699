package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetCode(t *testing.T) {
	t.Parallel()

	notFound := New(CodeNotFound, "thing: not found")

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "direct", err: notFound, want: CodeNotFound},
		{name: "wrapped", err: fmt.Errorf("load: %w", notFound), want: CodeNotFound},
		{name: "plain error is internal", err: errors.New("connection reset"), want: CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetCode(tt.err); got != tt.want {
				t.Fatalf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	t.Parallel()

	denied := New(CodePermissionDenied, "denied")
	if !Is(fmt.Errorf("wrap: %w", denied), CodePermissionDenied) {
		t.Fatal("expected wrapped error to keep its code")
	}
	if Is(nil, CodeInternal) {
		t.Fatal("nil must not match any code")
	}
	if !errors.Is(fmt.Errorf("wrap: %w", denied), denied) {
		t.Fatal("sentinel identity must survive wrapping")
	}
}
