package chronos

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/chronos/types"
)

func TestFailure(t *testing.T) {
	err := NewFailure(CodeParseFailed, `parsing "x" as "%F"`)
	if err.Code != CodeParseFailed {
		t.Errorf("expected code %v, got %v", CodeParseFailed, err.Code)
	}
	expected := `parse failed: parsing "x" as "%F"`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, types.ErrParse) {
		t.Error("expected Failure to match types.ErrParse")
	}
	if errors.Is(err, types.ErrArithmetic) {
		t.Error("parse failure must not match types.ErrArithmetic")
	}
}

func TestAsFailure(t *testing.T) {
	f := NewFailure(CodeClosed, "gone")

	// Direct.
	got, ok := AsFailure(f)
	if !ok || got.Code != CodeClosed {
		t.Fatalf("AsFailure(direct) = %v, %v", got, ok)
	}

	// Wrapped.
	got, ok = AsFailure(fmt.Errorf("dial: %w", f))
	if !ok || got.Code != CodeClosed {
		t.Fatal("expected AsFailure to unwrap wrapped error")
	}

	// Non-failure error.
	if _, ok := AsFailure(errors.New("plain")); ok {
		t.Fatal("expected AsFailure to return false for a plain error")
	}

	// Nil.
	if _, ok := AsFailure(nil); ok {
		t.Fatal("expected AsFailure to return false for nil")
	}
}

func TestCodeOf(t *testing.T) {
	_, divErr := types.Seconds(1).Div(0)
	_, tsErr := types.TimestampFromDurationSinceEpoch(types.Seconds(-1))
	_, parseErr := types.ParseTimestamp("nope", "")
	_, layoutErr := types.ParseTimestamp("nope", "%4")
	_, finiteErr := types.Infinity.Fields()

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeOK},
		{"arithmetic", divErr, CodeArithmetic},
		{"invalid timestamp", tsErr, CodeInvalidTimestamp},
		{"parse", parseErr, CodeParseFailed},
		{"invalid layout while parsing", layoutErr, CodeParseFailed},
		{"layout", types.ValidateTimeFormat("%4"), CodeInvalidParam},
		{"not finite", finiteErr, CodeInvalidParam},
		{"canceled", fmt.Errorf("x: %w", context.Canceled), CodeCanceled},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"closed", ErrClosed, CodeClosed},
		{"unavailable", ErrUnavailable, CodeUnavailable},
		{"failure keeps its code", fmt.Errorf("w: %w", NewFailure(CodeTimeout, "slow")), CodeTimeout},
		{"unknown", errors.New("mystery"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailureOfPreservesIs(t *testing.T) {
	_, err := types.Infinity.Add(types.NegativeInfinity)
	f := FailureOf(err)
	if f.Code != CodeArithmetic || f.Message != err.Error() {
		t.Fatalf("FailureOf = %+v", f)
	}
	if !errors.Is(f, types.ErrArithmetic) {
		t.Fatal("flattened failure lost its sentinel")
	}
	if FailureOf(nil) != nil {
		t.Fatal("FailureOf(nil) != nil")
	}
	if FailureOf(f) != f {
		t.Fatal("FailureOf must return an existing Failure unchanged")
	}
}

func TestCodeString(t *testing.T) {
	if CodeInvalidTimestamp.String() != "invalid timestamp" {
		t.Errorf("unexpected name %q", CodeInvalidTimestamp.String())
	}
	if Code(99).String() != "code(99)" {
		t.Errorf("unexpected name %q", Code(99).String())
	}
	if CodeOK.Sentinel() != nil || CodeUnknown.Sentinel() != nil {
		t.Error("OK and Unknown must not have sentinels")
	}
}
