package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOfWrappedChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(KindSourceUnavailable, "reader.Next", "relational store unreachable", cause)
	wrapped := fmt.Errorf("run aborted: %w", err)

	if KindOf(wrapped) != KindSourceUnavailable {
		t.Fatalf("expected kind %s, got %s", KindSourceUnavailable, KindOf(wrapped))
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatalf("expected chain to preserve cause")
	}
}

func TestIsMatchesOnKind(t *testing.T) {
	err := New(KindWriteFailure, "materializer.Write", "insert batch failed")
	if !stderrors.Is(err, &Error{Kind: KindWriteFailure}) {
		t.Fatalf("expected errors.Is to match on kind")
	}
	if stderrors.Is(err, &Error{Kind: KindSchemaMismatch}) {
		t.Fatalf("did not expect match against a different kind")
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		kind  Kind
		fatal bool
	}{
		{KindSourceUnavailable, true},
		{KindSchemaMismatch, true},
		{KindWriteFailure, true},
		{KindRecoverableAnomaly, false},
	}
	for _, tc := range cases {
		if got := IsFatal(New(tc.kind, "op", "msg")); got != tc.fatal {
			t.Fatalf("IsFatal(%s) = %v, want %v", tc.kind, got, tc.fatal)
		}
	}
	if IsFatal(stderrors.New("plain")) {
		t.Fatalf("plain errors must not be fatal by kind")
	}
}
