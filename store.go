package aml

// store.go implements the Store/CopyObject protocol (spec.md §4.6). Store
// implicit-casts the source onto whatever kind the destination slot already
// holds (a no-op "constant-fold to Debug" for the Debug target); CopyObject
// unconditionally replaces the destination's contents with a clone of the
// source, regardless of the destination's prior kind. Grounded on the
// teacher's vmLoad/vmStore (vm_load_store.go), generalized from the
// teacher's uint64-only locals/args to the full tagged-union Object model.

var errStoreToConstant = newError(StatusInvalidArgument, "store: cannot store to a read-only target")

// storeToTarget implements Store(source, target): target is the Object
// produced by resolving a SuperName (spec.md §4.5 "Store"). Consumes one ref
// on source.
func storeToTarget(m *Machine, target *Object, source *Object) *Error {
	defer source.Unref()

	if target == nil {
		return nil // null target: spec.md §4.5 "Target ::= SuperName | NullName"
	}

	if target.Kind() == KindDebug {
		return nil // Store(x, Debug) only logs; handled by the Store handler itself
	}

	if target.Kind() != KindReference {
		return errStoreToConstant
	}
	ref := target.Reference()

	switch ref.Kind {
	case RefKindRefOf, RefKindNamed:
		dest := unwindToBottom(ref.Inner)
		return assignWithImplicitCast(m, dest, source)

	case RefKindLocal, RefKindArg:
		if inner := ref.Inner; inner.Kind() == KindReference {
			dest, _ := unwindOneLevel(inner)
			dest = unwindToBottom(dest)
			return assignWithImplicitCast(m, dest, source)
		}
		return assignWithImplicitCast(m, ref.Inner, source)

	case RefKindPkgIndex:
		if inner := ref.Inner; inner.Kind() == KindReference {
			dest, _ := unwindOneLevel(inner)
			dest = unwindToBottom(dest)
			return assignWithImplicitCast(m, dest, source)
		}
		return assignWithImplicitCast(m, ref.Inner, source)
	}
	return nil
}

// resolveStoreDest returns the same destination object storeToTarget would
// assign into, without performing an assignment — used by Increment/
// Decrement, which need to read the current value before writing it back
// (spec.md §4.5 "Increment is equivalent to Add(Operand, One, Operand)").
// The returned Object is borrowed; it is target's own slot, not a fresh ref.
func resolveStoreDest(target *Object) *Object {
	if target == nil || target.Kind() != KindReference {
		return target
	}
	ref := target.Reference()
	switch ref.Kind {
	case RefKindRefOf, RefKindNamed:
		return unwindToBottom(ref.Inner)
	case RefKindLocal, RefKindArg, RefKindPkgIndex:
		if inner := ref.Inner; inner.Kind() == KindReference {
			dest, _ := unwindOneLevel(inner)
			return unwindToBottom(dest)
		}
		return ref.Inner
	}
	return target
}

// copyObjectToTarget implements CopyObject(source, target): target is the
// Object produced by resolving a SimpleName (spec.md §4.5 "CopyObject").
// Unlike Store, the destination's prior kind is irrelevant: the clone
// unconditionally replaces it, including replacing a Reference occupant
// with a non-Reference clone.
func copyObjectToTarget(m *Machine, target *Object, source *Object) *Error {
	defer source.Unref()

	if target == nil {
		return nil
	}
	if target.Kind() != KindReference {
		return errStoreToConstant
	}
	ref := target.Reference()
	clone := source.Clone()

	switch ref.Kind {
	case RefKindPkgIndex:
		// Reference-OS compatibility quirk (spec.md §9): CopyObject to
		// Index(pkg, n) is allowed and replaces the package slot itself, via
		// the owning package rather than just this Reference's Inner.
		ref.PkgOwner.SetPackageElem(ref.PkgSlot, clone)
		ref.Inner.Unref()
		ref.Inner = clone.Ref()
		return nil
	case RefKindLocal, RefKindArg, RefKindRefOf, RefKindNamed:
		ref.Inner.Unref()
		ref.Inner = clone
		return nil
	}
	return nil
}

// assignWithImplicitCast overwrites dest's payload in place with source,
// implicit-casting source to dest's existing Kind first (spec.md §4.6
// "Store: implicit-cast-on-store"). dest keeps its identity (any other
// Reference aliasing it observes the new value); source's ref is not
// consumed here (the caller already arranged for exactly one ref to flow
// through storeToTarget's defer).
func assignWithImplicitCast(m *Machine, dest *Object, source *Object) *Error {
	// BufferField/BufferIndex/FieldUnit destinations write through to their
	// backing store rather than being overwritten in place: Store must keep
	// the named slot pointing at the same field, unlike CopyObject (spec.md
	// §4.6, §4.7).
	switch dest.Kind() {
	case KindBufferField:
		return bufferFieldWrite(m, dest, source.Ref())
	case KindBufferIndex:
		return bufferIndexWrite(m, dest, source.Ref())
	case KindFieldUnit:
		return writeFieldUnit(m, dest, source.Ref())
	}

	if dest.Kind() == KindUninitialized || dest.Kind() == source.Kind() {
		overwrite(dest, source.Clone())
		return nil
	}

	switch dest.Kind() {
	case KindInteger:
		v, err := toIntegerValue(m, source)
		if err != nil {
			return err
		}
		dest.SetInt64(v)
		return nil
	case KindString:
		s, err := toStringValue(m, source)
		if err != nil {
			return err
		}
		overwrite(dest, NewString(s))
		return nil
	case KindBuffer:
		b, err := toBufferValue(m, source)
		if err != nil {
			return err
		}
		overwrite(dest, NewBuffer(b))
		return nil
	default:
		// Package, Reference-typed, and object kinds with no implicit
		// conversion: Store behaves like CopyObject (ACPI spec table 19-6).
		overwrite(dest, source.Clone())
		return nil
	}
}

// overwrite replaces dest's kind-specific payload with repl's, releasing
// whatever dest held, while repl itself is consumed (never exposed to
// anyone else).
func overwrite(dest *Object, repl *Object) {
	releasePayload(dest)
	dest.kind = repl.kind
	dest.asU64 = repl.asU64
	dest.str = repl.str
	dest.buf = repl.buf
	dest.pkg = repl.pkg
	dest.ref = repl.ref
	dest.field = repl.field
	dest.index = repl.index
	dest.region = repl.region
	dest.fieldUnit = repl.fieldUnit
	dest.method = repl.method
	dest.mutex = repl.mutex
	dest.event = repl.event
	dest.processor = repl.processor
	dest.powerRes = repl.powerRes
	dest.device = repl.device
	dest.thermalZone = repl.thermalZone
	// repl itself is a throwaway wrapper now that its payload has been
	// moved into dest; its refcount is never observed again.
}

// releasePayload drops dest's kind-specific shared payload without touching
// dest's own refcount (used by overwrite, which is about to replace the
// payload in place rather than free the Object itself).
func releasePayload(dest *Object) {
	switch dest.kind {
	case KindString:
		dest.str.unref()
	case KindBuffer:
		dest.buf.unref()
	case KindPackage:
		dest.pkg.refs--
		if dest.pkg.refs == 0 {
			for _, e := range dest.pkg.elems {
				e.Unref()
			}
		}
	case KindReference:
		dest.ref.Inner.Unref()
		if dest.ref.PkgOwner != nil {
			dest.ref.PkgOwner.Unref()
		}
	case KindBufferField:
		dest.field.backing.unref()
	case KindBufferIndex:
		dest.index.backing.unref()
	}
}
