package aml

import "testing"

// TestDerefOfRefOfIdempotence pins spec.md §8 invariant 3: DerefOf(RefOf(x))
// is x, for any x that is not itself a Reference.
func TestDerefOfRefOfIdempotence(t *testing.T) {
	x := NewInteger(42)
	ref := NewReference(RefKindRefOf, x.Ref())

	got := unwindToBottom(ref)
	if got.Kind() != KindInteger || got.Int64() != 42 {
		t.Fatalf("unwindToBottom(RefOf(x)) = %v, want Integer 42", got)
	}
}

func TestUnwindToBottomFollowsChain(t *testing.T) {
	x := NewInteger(7)
	inner := NewReference(RefKindRefOf, x.Ref())
	outer := NewReference(RefKindRefOf, inner)

	got := unwindToBottom(outer)
	if got.Kind() != KindInteger || got.Int64() != 7 {
		t.Fatalf("unwindToBottom did not reach the bottom-most non-Reference: %v", got)
	}
}

func TestUnwindOneLevelStopsAfterOneHop(t *testing.T) {
	x := NewInteger(7)
	inner := NewReference(RefKindRefOf, x.Ref())
	outer := NewReference(RefKindRefOf, inner)

	got, hopped := unwindOneLevel(outer)
	if !hopped {
		t.Fatalf("unwindOneLevel should report it hopped")
	}
	if got.Kind() != KindReference {
		t.Fatalf("unwindOneLevel should stop after exactly one hop, got %s", got.Kind())
	}
}

func TestUnwindOneLevelNoOpOnNonReference(t *testing.T) {
	x := NewInteger(7)
	got, hopped := unwindOneLevel(x)
	if hopped {
		t.Fatalf("unwindOneLevel should not report a hop for a non-Reference")
	}
	if got != x {
		t.Fatalf("unwindOneLevel should return its argument unchanged for a non-Reference")
	}
}
