package aml

import "testing"

func TestLEqualLGreaterLLessIntegers(t *testing.T) {
	m := newTestMachine(2)

	v, err := runHandler(t, opLEqual, m, []Item{objectItem(NewInteger(5)), objectItem(NewInteger(5))})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LEqual(5,5): got %v err=%v, want 1", v, err)
	}

	v, err = runHandler(t, opLGreater, m, []Item{objectItem(NewInteger(7)), objectItem(NewInteger(5))})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LGreater(7,5): got %v err=%v, want 1", v, err)
	}

	v, err = runHandler(t, opLLess, m, []Item{objectItem(NewInteger(3)), objectItem(NewInteger(5))})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LLess(3,5): got %v err=%v, want 1", v, err)
	}
}

func TestLEqualStringsCompareByteContent(t *testing.T) {
	m := newTestMachine(2)
	v, err := runHandler(t, opLEqual, m, []Item{
		objectItem(NewString([]byte("abc\x00"))),
		objectItem(NewString([]byte("abc\x00"))),
	})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LEqual on equal strings: got %v err=%v, want 1", v, err)
	}
}

func TestLAndLOrShortCircuitValues(t *testing.T) {
	m := newTestMachine(2)

	v, err := runHandler(t, opLand, m, []Item{objectItem(NewInteger(1)), objectItem(NewInteger(0))})
	if err != nil || v.Int64() != 0 {
		t.Fatalf("LAnd(1,0): got %v err=%v, want 0", v, err)
	}

	v, err = runHandler(t, opLor, m, []Item{objectItem(NewInteger(0)), objectItem(NewInteger(1))})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LOr(0,1): got %v err=%v, want 1", v, err)
	}
}

// TestLAndReadsOnlyFirstFourBytesOfBuffer pins the reference-OS quirk noted
// in spec.md §9: Land/Lor coerce a Buffer operand by reading only its first
// 4 bytes, not the full machine-word ToInteger conversion used elsewhere.
func TestLAndReadsOnlyFirstFourBytesOfBuffer(t *testing.T) {
	m := newTestMachine(2)
	// Nonzero only in byte 5, outside the 4-byte window Land/Lor look at.
	buf := NewBuffer([]byte{0, 0, 0, 0, 1, 0, 0, 0})

	v, err := runHandler(t, opLand, m, []Item{objectItem(buf), objectItem(NewInteger(1))})
	if err != nil {
		t.Fatalf("LAnd: %v", err)
	}
	if v.Int64() != 0 {
		t.Fatalf("LAnd must not see bytes past the first 4 of a Buffer operand, got %d", v.Int64())
	}
}

func TestLnot(t *testing.T) {
	m := newTestMachine(2)
	v, err := runHandler(t, opLnot, m, []Item{objectItem(NewInteger(0))})
	if err != nil || v.Int64() != 1 {
		t.Fatalf("LNot(0): got %v err=%v, want 1", v, err)
	}
	v, err = runHandler(t, opLnot, m, []Item{objectItem(NewInteger(5))})
	if err != nil || v.Int64() != 0 {
		t.Fatalf("LNot(5): got %v err=%v, want 0", v, err)
	}
}
