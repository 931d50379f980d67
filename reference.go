package aml

// RefKind is the closed set of Reference flavors (spec.md §3, §9 "Reference
// semantics": "model the five Reference kinds ... as a tagged variant — not
// a class hierarchy — because the distinctions affect the store/copy
// dispatcher discretely and do not share behavior beyond 'has an inner
// pointer'").
type RefKind uint8

const (
	// RefKindRefOf wraps whatever RefOf(x) was taken of; unwound by DerefOf.
	RefKindRefOf RefKind = iota
	// RefKindNamed wraps a namespace node's object.
	RefKindNamed
	// RefKindArg wraps one of a frame's 7 input-argument slots.
	RefKindArg
	// RefKindLocal wraps one of a frame's 8 local-variable slots.
	RefKindLocal
	// RefKindPkgIndex wraps a single package slot, lazily lifted in by
	// Index(pkg, k) so a later CopyObject against the index reaches the
	// original slot (spec.md §3 invariants, §4.5 Index).
	RefKindPkgIndex
)

func (k RefKind) String() string {
	switch k {
	case RefKindRefOf:
		return "RefOf"
	case RefKindNamed:
		return "Named"
	case RefKindArg:
		return "Arg"
	case RefKindLocal:
		return "Local"
	case RefKindPkgIndex:
		return "PkgIndex"
	default:
		return "Unknown"
	}
}

// Reference is the payload of a KindReference Object: a kind tag plus the
// object it points at. A Reference exclusively owns the refcount on Inner
// (spec.md §3: "a Reference exclusively owns the refcount on its inner
// target, forming a chain that may terminate in any non-reference kind").
type Reference struct {
	Kind  RefKind
	Inner *Object

	// PkgOwner/PkgSlot are set only when Kind == RefKindPkgIndex: Inner is a
	// ref'd alias of PkgOwner's element at PkgSlot, but replacing a package
	// element (Store/CopyObject) must go through SetPackageElem so every
	// other alias of the package sees the new slot, not just this Reference
	// (spec.md §3 invariants, §4.5 "Index").
	PkgOwner *Object
	PkgSlot  int
}

// NewPkgIndexReference returns a Reference of kind PkgIndex over pkg's
// element at slot. Takes ownership of the caller's ref on pkg.
func NewPkgIndexReference(pkg *Object, slot int) *Object {
	inner := pkg.PackageElems()[slot].Ref()
	return &Object{kind: KindReference, refs: 1, ref: &Reference{
		Kind: RefKindPkgIndex, Inner: inner, PkgOwner: pkg, PkgSlot: slot,
	}}
}

// unwindToBottom follows a chain of References until it reaches a
// non-Reference object. This is the reference-OS compatibility quirk
// DerefOf relies on (spec.md §4.5, §9: "DerefOf unwinds to the bottom-most
// non-reference, not just one level, which is a reference-OS quirk not
// found in the printed specification").
func unwindToBottom(o *Object) *Object {
	for o.Kind() == KindReference {
		o = o.Reference().Inner
	}
	return o
}

// unwindOneLevel follows exactly one Reference hop, or returns o unchanged
// if it is not a Reference. Used by the store/copy dispatcher (store.go),
// which the spec defines in terms of "unwind chain, then assign" (Store to
// RefOf/Named) versus "if the wrapped value is itself a Reference, unwind"
// (Store to Local/PkgIndex/Arg) — both phrased as a single conditional hop,
// not DerefOf's unconditional unwind-to-bottom.
func unwindOneLevel(o *Object) (*Object, bool) {
	if o.Kind() != KindReference {
		return o, false
	}
	return o.Reference().Inner, true
}
