package aml

import "testing"

func TestRefUnrefBalance(t *testing.T) {
	s := NewString([]byte("hi\x00"))
	s.Ref()
	if s.refs != 2 {
		t.Fatalf("refs after Ref(): got %d, want 2", s.refs)
	}
	s.Unref()
	if s.refs != 1 {
		t.Fatalf("refs after one Unref(): got %d, want 1", s.refs)
	}
	s.Unref() // drops to 0, releases the shared buffer; must not panic
}

func TestRefUnrefNilSafe(t *testing.T) {
	var o *Object
	if o.Ref() != nil {
		t.Fatalf("Ref() on a nil Object should return nil")
	}
	o.Unref() // must not panic
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewBuffer([]byte{1, 2, 3})
	clone := orig.Clone()

	clone.Bytes()[0] = 0xFF
	if orig.Bytes()[0] == 0xFF {
		t.Fatalf("Clone shares backing storage with the original")
	}
}

func TestClonePackageDeep(t *testing.T) {
	inner := NewBuffer([]byte{9})
	pkg := NewPackage(1)
	pkg.SetPackageElem(0, inner)

	clone := pkg.Clone()
	clone.PackageElems()[0].Bytes()[0] = 0x42

	if pkg.PackageElems()[0].Bytes()[0] == 0x42 {
		t.Fatalf("Package.Clone shares element storage with the original")
	}
}

func TestPkgIndexReferenceAliasesOriginalSlot(t *testing.T) {
	pkg := NewPackage(2)
	pkg.SetPackageElem(0, NewInteger(10))
	pkg.SetPackageElem(1, NewInteger(20))

	ref := NewPkgIndexReference(pkg.Ref(), 1)
	if ref.Kind() != KindReference {
		t.Fatalf("NewPkgIndexReference must produce a Reference object")
	}
	if unwindToBottom(ref).Int64() != 20 {
		t.Fatalf("PkgIndex reference does not resolve to the target slot's value")
	}
}
