package aml

import "bytes"

// handlers_logic.go implements the logic/compare opcodes (spec.md §4.5
// "Logic"). LEqual/LGreater/LLess require both operands to convert to the
// same kind (Integer, String, or Buffer) and compare accordingly, with
// string/buffer ties on content broken by length. Land/Lor apply the
// reference-OS compatibility quirk noted in spec.md §9: unlike every other
// integer coercion, they read only the first 4 bytes of a Buffer operand,
// not the full 8 ToInteger uses elsewhere. Grounded on the teacher's
// jump-table entries for these opcodes (vm_jumptable.go's vmOpLogical*).

func boolInt(b bool) *Object {
	if b {
		return NewInteger(1)
	}
	return NewInteger(0)
}

// land4ByteInt mirrors toIntegerValue for Integer/String sources but reads
// only the first 4 bytes (zero-extended) of a Buffer source.
func land4ByteInt(m *Machine, o *Object) (uint64, *Error) {
	if o.Kind() != KindBuffer {
		return toIntegerValue(m, o)
	}
	data := o.Bytes()
	var v uint64
	for i := 0; i < 4 && i < len(data); i++ {
		v |= uint64(data[i]) << (8 * uint(i))
	}
	return v, nil
}

func init() {
	registerHandler(opLand, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		a, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		b, err := objectAt(ctx.Items[1])
		if err != nil {
			return nil, err
		}
		av, err := land4ByteInt(m, a)
		if err != nil {
			return nil, err
		}
		bv, err := land4ByteInt(m, b)
		if err != nil {
			return nil, err
		}
		return boolInt(av != 0 && bv != 0), nil
	})

	registerHandler(opLor, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		a, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		b, err := objectAt(ctx.Items[1])
		if err != nil {
			return nil, err
		}
		av, err := land4ByteInt(m, a)
		if err != nil {
			return nil, err
		}
		bv, err := land4ByteInt(m, b)
		if err != nil {
			return nil, err
		}
		return boolInt(av != 0 || bv != 0), nil
	})

	registerHandler(opLnot, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		return boolInt(v == 0), nil
	})

	cmp := func(op opcode, pick func(c int) bool) {
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			a, err := objectAt(ctx.Items[0])
			if err != nil {
				return nil, err
			}
			b, err := objectAt(ctx.Items[1])
			if err != nil {
				return nil, err
			}
			c, err := compareOperands(m, a, b)
			if err != nil {
				return nil, err
			}
			return boolInt(pick(c)), nil
		})
	}
	cmp(opLEqual, func(c int) bool { return c == 0 })
	cmp(opLGreater, func(c int) bool { return c > 0 })
	cmp(opLLess, func(c int) bool { return c < 0 })
}

// compareOperands implements the same-kind-as-left-operand comparison rule
// (ACPI spec table 19-6: the second operand is converted to the first
// operand's kind before comparing). Strings and Buffers compare bytewise,
// with a shorter-but-equal-prefix operand sorting first (length tiebreak).
func compareOperands(m *Machine, a, b *Object) (int, *Error) {
	switch a.Kind() {
	case KindString:
		bb, err := toStringValue(m, b)
		if err != nil {
			return 0, err
		}
		return bytes.Compare(trimNUL(a.Bytes()), trimNUL(bb)), nil
	case KindBuffer:
		bb, err := toBufferValue(m, b)
		if err != nil {
			return 0, err
		}
		return bytes.Compare(a.Bytes(), bb), nil
	default:
		av, err := toIntegerValue(m, a)
		if err != nil {
			return 0, err
		}
		bv, err := toIntegerValue(m, b)
		if err != nil {
			return 0, err
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	}
}
