package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
)

func TestErrorIsSentinel(t *testing.T) {
	tests := []struct {
		kind     Kind
		sentinel error
	}{
		{KindSyntax, ErrSyntax},
		{KindAttributeMisuse, ErrAttributeMisuse},
		{KindParameterBinding, ErrParameterBinding},
		{KindTypeConversion, ErrTypeConversion},
		{KindBindingTarget, ErrBindingTarget},
		{KindSchedulingConflict, ErrSchedulingConflict},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := Errorf(tt.kind, "boom")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			wrapped := fmt.Errorf("file.mcc: %w", err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost its kind")
			}
			if KindOf(wrapped) != tt.kind {
				t.Errorf("KindOf = %v, want %v", KindOf(wrapped), tt.kind)
			}
		})
	}
}

func TestAtKeepsFirstPosition(t *testing.T) {
	inner := Errorf(KindTypeConversion, "cannot convert")
	err := At(token.Position{Line: 3, Column: 7}, inner)
	err = At(token.Position{Line: 9, Column: 1}, err)

	pos, ok := PositionOf(err)
	if !ok || pos.Line != 3 || pos.Column != 7 {
		t.Errorf("PositionOf = %v, %v, want 3:7", pos, ok)
	}
	if inner.Pos.Line != 0 {
		t.Error("At must not mutate the original error")
	}
	if !strings.Contains(err.Error(), "line 3, column 7") {
		t.Errorf("message %q lacks location", err.Error())
	}
}

func TestAtWrapsForeignErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	err := At(token.Position{Line: 1, Column: 1}, cause)
	if KindOf(err) != KindUnknown {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if At(token.Position{Line: 1}, nil) != nil {
		t.Error("At(nil) should be nil")
	}
}
