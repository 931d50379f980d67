package aml

// operand.go collects the small helpers every handlers_*.go file uses to
// pull a concrete value or node out of a collected Item, and to resolve a
// SuperName Item down to either "the Reference to write through" or "the
// value it reads as", the two ends of the read/write split transferItem
// maintains (exec.go).

// objectAt returns the Object a (non-name, non-pkglen) Item carries, or nil
// with errNameNotFound if the position resolved to "not found" under an
// Unresolved-tolerant argKind.
func objectAt(it Item) (*Object, *Error) {
	if it.kind != itemObject || it.obj == nil {
		return nil, errNameNotFound
	}
	return it.obj, nil
}

// integerAt resolves it to a uint64, applying ToInteger's conversion rules
// to whatever Kind the operand turned out to be (spec.md §4.5 "Operand").
func integerAt(m *Machine, it Item) (uint64, *Error) {
	obj, err := objectAt(it)
	if err != nil {
		return 0, err
	}
	return toIntegerValue(m, obj)
}

// targetAt returns the destination Object a Target/SuperName/SimpleName Item
// names, or nil for a null target (spec.md §4.5 "Target ::= SuperName |
// NullName"). The caller (Store, arithmetic's optional result operand, ...)
// owns the returned ref and must route it through storeToTarget/
// copyObjectToTarget, which release it.
func targetAt(it Item) *Object {
	if it.kind == itemNode && it.node == nil {
		return nil // NullName
	}
	if it.kind != itemObject || it.obj == nil {
		return nil
	}
	return it.obj
}

// storeResult writes v into the Target Item at position idx of ctx.Items,
// if any (the common "compute, then optionally store to an output operand"
// pattern: Add/Subtract/.../ShiftRight/And/.../Not/ToInteger/...). Always
// consumes one ref on v beyond what the caller returns, since the return
// value and the stored value are independent aliases.
func storeResult(m *Machine, ctx *OpContext, idx int, v *Object) (*Object, *Error) {
	if target := targetAt(ctx.Items[idx]); target != nil {
		if err := storeToTarget(m, target, v.Ref()); err != nil {
			v.Unref()
			return nil, err
		}
	}
	return v, nil
}
