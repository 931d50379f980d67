package aml

import (
	"strings"
	"testing"
)

func TestErrorImplementsErrorInterface(t *testing.T) {
	var err error = newError(StatusInvalidArgument, "boom")
	if err.Error() != "boom" {
		t.Fatalf("Error(): got %q, want %q", err.Error(), "boom")
	}
}

func TestWithTraceLeavesSentinelUntouched(t *testing.T) {
	sentinel := errDivideByZero
	traced := sentinel.withTrace(frame{table: "DSDT", method: "FOO", offset: 0x10, opcode: "Divide"})

	if len(sentinel.trace) != 0 {
		t.Fatalf("withTrace must not mutate the sentinel it was called on")
	}
	if len(traced.trace) != 1 {
		t.Fatalf("withTrace: got %d trace frames, want 1", len(traced.trace))
	}

	again := traced.withTrace(frame{table: "DSDT", method: "BAR", offset: 0x20, opcode: "Add"})
	if len(traced.trace) != 1 {
		t.Fatalf("withTrace must not mutate its receiver, only return a new copy")
	}
	if len(again.trace) != 2 {
		t.Fatalf("withTrace on an already-traced error: got %d frames, want 2", len(again.trace))
	}
}

func TestStackTraceInnermostFirst(t *testing.T) {
	e := errDivideByZero.
		withTrace(frame{table: "DSDT", method: "INNER", offset: 1, opcode: "Divide"}).
		withTrace(frame{table: "DSDT", method: "OUTER", offset: 2, opcode: "MethodCall"})

	trace := e.StackTrace()
	innerIdx := strings.Index(trace, "INNER")
	outerIdx := strings.Index(trace, "OUTER")
	if innerIdx == -1 || outerIdx == -1 || innerIdx > outerIdx {
		t.Fatalf("StackTrace must list the innermost frame first, got:\n%s", trace)
	}
}

func TestStackTraceEmptyWithoutFrames(t *testing.T) {
	e := newError(StatusBadBytecode, "no trace yet")
	if e.StackTrace() != "No stack trace available" {
		t.Fatalf("StackTrace on an untraced error: got %q", e.StackTrace())
	}
}
