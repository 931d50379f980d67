package aml

import "testing"

func runHandler(t *testing.T, op opcode, m *Machine, items []Item) (*Object, *Error) {
	t.Helper()
	fn, ok := execHandlers[op]
	if !ok {
		t.Fatalf("no handler registered for %s", op)
	}
	return fn(m, nil, &OpContext{Op: op, Items: items})
}

func TestAddNoTarget(t *testing.T) {
	m := newTestMachine(2)
	v, err := runHandler(t, opAdd, m, []Item{
		objectItem(NewInteger(3)),
		objectItem(NewInteger(4)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v.Int64() != 7 {
		t.Fatalf("Add(3,4): got %d, want 7", v.Int64())
	}
}

func TestAddStoresToTarget(t *testing.T) {
	m := newTestMachine(2)
	dest := NewInteger(0)
	target := NewReference(RefKindNamed, dest)

	_, err := runHandler(t, opAdd, m, []Item{
		objectItem(NewInteger(10)),
		objectItem(NewInteger(5)),
		objectItem(target),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if dest.Int64() != 15 {
		t.Fatalf("Add with target: dest = %d, want 15", dest.Int64())
	}
}

func TestSubtractTruncatesToIntegerWidth(t *testing.T) {
	m := newTestMachine(1) // revision 1: 32-bit integers
	v, err := runHandler(t, opSubtract, m, []Item{
		objectItem(NewInteger(0)),
		objectItem(NewInteger(1)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if v.Int64() != 0xFFFFFFFF {
		t.Fatalf("Subtract(0,1) at 32-bit width: got %#x, want 0xFFFFFFFF", v.Int64())
	}
}

func TestDivideByZero(t *testing.T) {
	m := newTestMachine(2)
	_, err := runHandler(t, opDivide, m, []Item{
		objectItem(NewInteger(10)),
		objectItem(NewInteger(0)),
		emptyItem(),
		emptyItem(),
	})
	if err == nil {
		t.Fatalf("expected a divide-by-zero error")
	}
}

func TestDivideQuotientAndRemainder(t *testing.T) {
	m := newTestMachine(2)
	remDest := NewInteger(0)
	quotDest := NewInteger(0)

	v, err := runHandler(t, opDivide, m, []Item{
		objectItem(NewInteger(17)),
		objectItem(NewInteger(5)),
		objectItem(NewReference(RefKindNamed, remDest)),
		objectItem(NewReference(RefKindNamed, quotDest)),
	})
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if v.Int64() != 3 {
		t.Fatalf("Divide return value (quotient): got %d, want 3", v.Int64())
	}
	if remDest.Int64() != 2 {
		t.Fatalf("Divide remainder target: got %d, want 2", remDest.Int64())
	}
	if quotDest.Int64() != 3 {
		t.Fatalf("Divide quotient target: got %d, want 3", quotDest.Int64())
	}
}

func TestFindSetLeftBit(t *testing.T) {
	m := newTestMachine(2)
	v, err := runHandler(t, opFindSetLeftBit, m, []Item{
		objectItem(NewInteger(0b1000)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("FindSetLeftBit: %v", err)
	}
	if v.Int64() != 4 {
		t.Fatalf("FindSetLeftBit(0b1000): got %d, want 4 (1-based)", v.Int64())
	}
}

func TestFindSetRightBit(t *testing.T) {
	m := newTestMachine(2)
	v, err := runHandler(t, opFindSetRightBit, m, []Item{
		objectItem(NewInteger(0b1000)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("FindSetRightBit: %v", err)
	}
	if v.Int64() != 4 {
		t.Fatalf("FindSetRightBit(0b1000): got %d, want 4 (1-based)", v.Int64())
	}
}

func TestIncrementDecrement(t *testing.T) {
	m := newTestMachine(2)
	dest := NewInteger(5)

	v, err := runHandler(t, opIncrement, m, []Item{
		objectItem(NewReference(RefKindNamed, dest)),
	})
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if v.Int64() != 6 || dest.Int64() != 6 {
		t.Fatalf("Increment: return=%d dest=%d, want both 6", v.Int64(), dest.Int64())
	}

	v, err = runHandler(t, opDecrement, m, []Item{
		objectItem(NewReference(RefKindNamed, dest)),
	})
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if v.Int64() != 5 || dest.Int64() != 5 {
		t.Fatalf("Decrement: return=%d dest=%d, want both 5", v.Int64(), dest.Int64())
	}
}

func TestFromBCDToBCDRoundTrip(t *testing.T) {
	m := newTestMachine(2)

	v, err := runHandler(t, opFromBCD, m, []Item{
		objectItem(NewInteger(0x1234)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("FromBCD: %v", err)
	}
	if v.Int64() != 1234 {
		t.Fatalf("FromBCD(0x1234): got %d, want 1234", v.Int64())
	}

	back, err := runHandler(t, opToBCD, m, []Item{
		objectItem(NewInteger(1234)),
		emptyItem(),
	})
	if err != nil {
		t.Fatalf("ToBCD: %v", err)
	}
	if back.Int64() != 0x1234 {
		t.Fatalf("ToBCD(1234): got %#x, want 0x1234", back.Int64())
	}
}
