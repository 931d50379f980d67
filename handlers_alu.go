package aml

// handlers_alu.go implements the arithmetic opcodes (spec.md §4.5
// "Arithmetic"): every one reads its operand(s) as Integers, computes in the
// machine's configured integer width, optionally stores the result to a
// Target, and returns the result value. Grounded on the teacher's
// vm_op_alu.go, generalized from its fixed uint64 arithmetic to operate
// through toIntegerValue so String/Buffer operands implicit-cast first, per
// ACPI spec table 19-6.

func init() {
	binop := func(op opcode, fn func(a, b uint64) uint64) {
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			a, err := integerAt(m, ctx.Items[0])
			if err != nil {
				return nil, err
			}
			b, err := integerAt(m, ctx.Items[1])
			if err != nil {
				return nil, err
			}
			return storeResult(m, ctx, 2, NewInteger(m.truncate(fn(a, b))))
		})
	}

	binop(opAdd, func(a, b uint64) uint64 { return a + b })
	binop(opSubtract, func(a, b uint64) uint64 { return a - b })
	binop(opMultiply, func(a, b uint64) uint64 { return a * b })
	binop(opAnd, func(a, b uint64) uint64 { return a & b })
	binop(opNand, func(a, b uint64) uint64 { return ^(a & b) })
	binop(opOr, func(a, b uint64) uint64 { return a | b })
	binop(opNor, func(a, b uint64) uint64 { return ^(a | b) })
	binop(opXor, func(a, b uint64) uint64 { return a ^ b })
	binop(opShiftLeft, func(a, b uint64) uint64 {
		if b >= 64 {
			return 0
		}
		return a << b
	})
	binop(opShiftRight, func(a, b uint64) uint64 {
		if b >= 64 {
			return 0
		}
		return a >> b
	})
	binop(opMod, func(a, b uint64) uint64 {
		if b == 0 {
			return 0
		}
		return a % b
	})

	registerHandler(opDivide, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		dividend, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		divisor, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}
		if divisor == 0 {
			return nil, errDivideByZero
		}
		quotient := m.truncate(dividend / divisor)
		remainder := m.truncate(dividend % divisor)
		if _, err := storeResult(m, ctx, 2, NewInteger(remainder)); err != nil {
			return nil, err
		}
		return storeResult(m, ctx, 3, NewInteger(quotient))
	})

	registerHandler(opNot, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		return storeResult(m, ctx, 1, NewInteger(m.truncate(^v)))
	})

	registerHandler(opFindSetLeftBit, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		result := uint64(0)
		for i := m.sizeOfIntInBits - 1; i >= 0; i-- {
			if v&(uint64(1)<<uint(i)) != 0 {
				result = uint64(i) + 1
				break
			}
		}
		return storeResult(m, ctx, 1, NewInteger(result))
	})

	registerHandler(opFindSetRightBit, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		result := uint64(0)
		for i := 0; i < m.sizeOfIntInBits; i++ {
			if v&(uint64(1)<<uint(i)) != 0 {
				result = uint64(i) + 1
				break
			}
		}
		return storeResult(m, ctx, 1, NewInteger(result))
	})

	registerHandler(opIncrement, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return incDec(m, ctx, 1)
	})
	registerHandler(opDecrement, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return incDec(m, ctx, -1)
	})

	registerHandler(opFromBCD, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		var result uint64
		var mul uint64 = 1
		for v != 0 {
			result += (v & 0xf) * mul
			mul *= 10
			v >>= 4
		}
		return storeResult(m, ctx, 1, NewInteger(result))
	})

	registerHandler(opToBCD, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		var result uint64
		var shift uint
		for v != 0 {
			result |= (v % 10) << shift
			shift += 4
			v /= 10
		}
		return storeResult(m, ctx, 1, NewInteger(result))
	})
}

// incDec implements Increment/Decrement: equivalent to Add/Subtract(Operand,
// One, Operand) (spec.md §4.5).
func incDec(m *Machine, ctx *OpContext, delta int64) (*Object, *Error) {
	target := targetAt(ctx.Items[0])
	if target == nil {
		return nil, errStoreToConstant
	}
	dest := resolveStoreDest(target)
	cur, err := toIntegerValue(m, dest)
	if err != nil {
		return nil, err
	}
	next := m.truncate(uint64(int64(cur) + delta))
	if err := storeToTarget(m, target, NewInteger(next)); err != nil {
		return nil, err
	}
	return NewInteger(next), nil
}
