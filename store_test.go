package aml

import "testing"

// TestStoreImplicitCastsToDestKind pins spec.md §4.6: Store implicit-casts
// the source onto whatever kind the destination slot already holds.
func TestStoreImplicitCastsToDestKind(t *testing.T) {
	m := newTestMachine(2)

	dest := NewInteger(0)
	target := NewReference(RefKindNamed, dest)

	if err := storeToTarget(m, target, NewString([]byte("42\x00"))); err != nil {
		t.Fatalf("store: %v", err)
	}
	if dest.Kind() != KindInteger || dest.Int64() != 42 {
		t.Fatalf("store did not implicit-cast the string onto the Integer dest: %v", dest)
	}
}

// TestStoreToBufferFieldWritesThrough pins spec.md §4.6/§4.7: Store to a
// BufferField/BufferIndex/FieldUnit slot writes through to the backing
// store rather than overwriting the slot's own kind.
func TestStoreToBufferFieldWritesThrough(t *testing.T) {
	m := newTestMachine(2)

	backing := NewBuffer([]byte{0x00, 0x00})
	field := NewBufferField(backing, 0, 8, false)
	target := NewReference(RefKindNamed, field)

	if err := storeToTarget(m, target, NewInteger(0x7F)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if backing.Bytes()[0] != 0x7F {
		t.Fatalf("store to a BufferField did not write through to the backing buffer: %x", backing.Bytes())
	}
	if field.Kind() != KindBufferField {
		t.Fatalf("store to a BufferField must not replace the field slot's own kind")
	}
}

// TestStoreToDebugIsNoop exercises the Debug sink: storing to it must not
// touch the payload or return an error.
func TestStoreToDebugIsNoop(t *testing.T) {
	m := newTestMachine(2)
	target := &Object{kind: KindDebug, refs: 1}

	if err := storeToTarget(m, target, NewInteger(1)); err != nil {
		t.Fatalf("store to Debug: %v", err)
	}
}

// TestCopyObjectReplacesDestKindWholesale pins spec.md §4.5 "CopyObject": the
// destination's prior kind is irrelevant, the clone unconditionally replaces
// it, including swapping out a Reference-typed occupant for a non-Reference
// clone.
func TestCopyObjectReplacesDestKindWholesale(t *testing.T) {
	m := newTestMachine(2)

	x := NewInteger(99)
	dest := NewReference(RefKindRefOf, x.Ref())
	target := NewReference(RefKindLocal, dest)

	if err := copyObjectToTarget(m, target, NewBuffer([]byte{1, 2, 3})); err != nil {
		t.Fatalf("copyobject: %v", err)
	}
	if target.Reference().Inner.Kind() != KindBuffer {
		t.Fatalf("copyobject did not replace the Reference occupant wholesale, got %s", target.Reference().Inner.Kind())
	}
}

// TestCopyObjectToPkgIndexWritesThroughOwner pins the reference-OS
// compatibility quirk (spec.md §9): CopyObject to Index(pkg, n) replaces the
// package slot itself via the owning package, so every other alias of the
// package observes the new value, not just this one Reference.
func TestCopyObjectToPkgIndexWritesThroughOwner(t *testing.T) {
	m := newTestMachine(2)

	pkg := NewPackage(2)
	pkg.SetPackageElem(0, NewInteger(1))
	pkg.SetPackageElem(1, NewInteger(2))

	idxRef := NewPkgIndexReference(pkg.Ref(), 1)

	if err := copyObjectToTarget(m, idxRef, NewInteger(777)); err != nil {
		t.Fatalf("copyobject: %v", err)
	}
	if pkg.PackageElems()[1].Int64() != 777 {
		t.Fatalf("copyobject to Index(pkg,1) did not write through the owning package: %v", pkg.PackageElems()[1])
	}
}

func TestResolveStoreDestUnwindsToBottomBorrowed(t *testing.T) {
	x := NewInteger(5)
	named := NewReference(RefKindNamed, x)

	got := resolveStoreDest(named)
	if got != x {
		t.Fatalf("resolveStoreDest should return the same slot storeToTarget would assign into")
	}
}
