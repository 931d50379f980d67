package aml

import "testing"

func TestCallFrameArgsPopulatedFromNewCallFrame(t *testing.T) {
	a0 := NewInteger(10)
	a1 := NewInteger(20)
	f := NewCallFrame("DSDT", nil, nil, nil, []*Object{a0, a1})

	got := resolveStoreDest(f.Arg(0))
	if got.Int64() != 10 {
		t.Fatalf("Arg(0): got %v, want 10", got)
	}
	got = resolveStoreDest(f.Arg(1))
	if got.Int64() != 20 {
		t.Fatalf("Arg(1): got %v, want 20", got)
	}
}

func TestCallFrameLocalLazyAllocatesUninitialized(t *testing.T) {
	f := NewCallFrame("DSDT", nil, nil, nil, nil)

	l0 := f.Local(0)
	if l0.Kind() != KindReference || l0.Reference().Kind != RefKindLocal {
		t.Fatalf("Local(0) must be a RefKindLocal Reference, got %v", l0)
	}
	if resolveStoreDest(l0).Kind() != KindUninitialized {
		t.Fatalf("a never-stored Local must start Uninitialized")
	}

	// Fetching the same index again returns the same slot, not a fresh one.
	if f.Local(0) != l0 {
		t.Fatalf("Local(0) allocated a second time instead of reusing the slot")
	}
}

// TestOpContextStackEmptiesOnReturn pins half of spec.md §8 invariant 1: a
// frame's op-context stack returns to empty once every pushed context has
// been popped.
func TestOpContextStackEmptiesOnReturn(t *testing.T) {
	f := NewCallFrame("DSDT", nil, nil, nil, nil)

	if _, ok := f.TopOpContext(); ok {
		t.Fatalf("a fresh frame must start with an empty op-context stack")
	}

	ctx1 := newOpContext(opAdd, mustOpcodeInfo(opAdd), 0)
	f.PushOpContext(ctx1)
	ctx2 := newOpContext(opStore, mustOpcodeInfo(opStore), 4)
	f.PushOpContext(ctx2)

	top, ok := f.TopOpContext()
	if !ok || top != ctx2 {
		t.Fatalf("TopOpContext must return the most recently pushed context")
	}

	f.PopOpContext()
	top, ok = f.TopOpContext()
	if !ok || top != ctx1 {
		t.Fatalf("after one pop, the prior context must be back on top")
	}

	f.PopOpContext()
	if _, ok := f.TopOpContext(); ok {
		t.Fatalf("op-context stack must be empty after popping every pushed context")
	}
}

func TestOpContextReserveSlotAndTransfer(t *testing.T) {
	ctx := newOpContext(opAdd, mustOpcodeInfo(opAdd), 0)

	idx := ctx.reserveSlot()
	if ctx.Items[idx].kind != itemEmpty {
		t.Fatalf("reserveSlot must push an empty Item")
	}

	ctx.Items[idx] = objectItem(NewInteger(5))
	if ctx.lastItem().obj.Int64() != 5 {
		t.Fatalf("lastItem did not reflect the filled-in slot")
	}
}

func TestOpContextReleaseItemsUnrefsObjects(t *testing.T) {
	ctx := newOpContext(opAdd, mustOpcodeInfo(opAdd), 0)
	o := NewInteger(1)
	ctx.pushItem(objectItem(o))

	ctx.releaseItems()
	if o.refs != 0 {
		t.Fatalf("releaseItems must drop the op-context's own ref on each object item")
	}
}

func TestCallFrameReleaseUnrefsLocalsAndArgs(t *testing.T) {
	f := NewCallFrame("DSDT", nil, nil, nil, []*Object{NewInteger(1)})
	f.Local(0) // force allocation

	f.Release(nil)
	// Arg/local slots are each a lone-owned Reference; after Release their
	// refcount must have dropped to zero.
	if f.args[0].refs != 0 {
		t.Fatalf("Release must unref every populated arg slot")
	}
	if f.locals[0].refs != 0 {
		t.Fatalf("Release must unref every allocated local slot")
	}
}

func mustOpcodeInfo(op opcode) opcodeInfo {
	info, ok := lookupOpcodeInfo(op)
	if !ok {
		panic("no opcodeInfo registered for " + op.String())
	}
	return info
}
