package aml

import "testing"

// TestUpwardSearch pins spec.md §8 scenario S6 and invariant 7: a bare
// single-segment name climbs ancestor scopes, but only when it has no prefix
// characters and no dual/multi marker.
func TestUpwardSearch(t *testing.T) {
	ns := NewNamespace()
	root := ns.Root()

	x := ns.Alloc("X___")
	ns.Install(root, x)
	y := ns.Alloc("Y___")
	ns.Install(x, y)
	z := ns.Alloc("Z___")
	ns.Install(y, z)
	foo := ns.Alloc("FOO_")
	foo.SetObject(NewInteger(7))
	ns.Install(z, foo)

	// Defined at \X.Y.Z.FOO; from scope \X.Y.Z a bare "FOO_" resolves in
	// place, no climbing required.
	got, err := resolveFind(z, root, nameStringSegs{segs: []string{"FOO_"}, bareOneSeg: true})
	if err != nil {
		t.Fatalf("resolve at defining scope: %v", err)
	}
	if got != foo {
		t.Fatalf("resolve at defining scope: got a different node")
	}

	// From scope \X.Y (no local FOO), the search must climb to \X then \
	// and miss: FOO only exists under \X.Y.Z, not in the ancestor chain of
	// \X.Y itself.
	_, err = resolveFind(y, root, nameStringSegs{segs: []string{"FOO_"}, bareOneSeg: true})
	if err == nil || err.Status != StatusNotFound {
		t.Fatalf("resolve from \\X.Y: expected NotFound, got %v", err)
	}
}

// TestFindRelativeMultiSegment checks a multi-segment NameString resolves by
// walking each segment in order, the find-existing mode used for any name
// with a '\' root or more than one NameSeg (never the upward-search rule,
// which only applies to a bare single segment).
func TestFindRelativeMultiSegment(t *testing.T) {
	ns := NewNamespace()
	root := ns.Root()

	sb, _ := ns.Predefined("_SB_")
	dev := ns.Alloc("DEV0")
	dev.SetObject(NewDevice())
	ns.Install(sb, dev)

	child := ns.Alloc("FOO_")
	ns.Install(dev, child)

	// A same-named node elsewhere in the tree must not be found instead:
	// FindRelative only ever walks down from base, it never climbs.
	other := ns.Alloc("FOO_")
	ns.Install(root, other)

	got, err := resolveFind(root, root, nameStringSegs{segs: []string{"_SB_", "DEV0", "FOO_"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != child {
		t.Fatalf("resolve: expected the DEV0 child, got a different node")
	}
}

func TestResolveCreateRejectsExisting(t *testing.T) {
	ns := NewNamespace()
	root := ns.Root()

	if _, err := resolveCreate(ns, root, nameStringSegs{segs: []string{"FOO_"}}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := resolveCreate(ns, root, nameStringSegs{segs: []string{"FOO_"}})
	if err == nil || err.Status != StatusAlreadyExists {
		t.Fatalf("second create: expected AlreadyExists, got %v", err)
	}
}

func TestResolveCreateInstallsImmediately(t *testing.T) {
	ns := NewNamespace()
	root := ns.Root()

	node, err := resolveCreate(ns, root, nameStringSegs{segs: []string{"FOO_"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// The new node must be visible to a find-existing lookup right away,
	// without waiting for the owning opcode's handler to run.
	got, err := resolveFind(root, root, nameStringSegs{segs: []string{"FOO_"}, bareOneSeg: true})
	if err != nil || got != node {
		t.Fatalf("newly created node is not immediately resolvable: %v", err)
	}
}
