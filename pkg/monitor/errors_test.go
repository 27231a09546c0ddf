package monitor

import (
	"errors"
	"testing"
)

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := newError(KindSpawnFailed, "start child", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}

	var me *Error
	if !errors.As(err, &me) {
		t.Fatal("expected errors.As to recover the *Error")
	}
	if me.Kind != KindSpawnFailed {
		t.Fatalf("expected kind %q, got %q", KindSpawnFailed, me.Kind)
	}
}

func TestErrorWithoutCauseOmitsWrappedText(t *testing.T) {
	err := newError(KindInvalidRequest, "command is required", nil)
	if errors.Unwrap(err) != nil {
		t.Fatal("expected no wrapped error when cause is nil")
	}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}
