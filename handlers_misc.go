package aml

// handlers_misc.go implements the remaining Type1/Type2 opcodes that don't
// fit the arithmetic/logic/named-object/control-flow groupings: reference
// construction and dereference, conversion, Index, Match, synchronization
// primitives, and the external-service opcodes (Notify/Load/LoadTable/
// Unload/Timer/Stall/Sleep). The teacher's jump table (vm_jumptable.go)
// registers none of these opcodes, so they have no teacher counterpart.

var (
	errIndexOutOfBounds = newError(StatusOutOfBounds, "Index: index beyond source's element/byte count")
	errNotAMutex        = newError(StatusInvalidArgument, "Acquire/Release: target is not a Mutex")
	errNotAnEvent       = newError(StatusInvalidArgument, "Signal/Wait/Reset: target is not an Event")
)

func init() {
	registerHandler(opMethodCall, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		// The top-level op-context Execute synthesizes to drive a method's
		// own body (exec.go) shares opMethodCall's identity for stack-trace
		// purposes but carries a tracked pkglen, not a resolved node, as its
		// first Item; it has nothing left to invoke once its TermList body
		// has run.
		if len(ctx.Items) == 0 || ctx.Items[0].kind != itemNode {
			return nil, nil
		}
		node := ctx.Items[0].node
		methodObj := node.Object()
		args := make([]*Object, 0, len(ctx.Items)-1)
		for _, it := range ctx.Items[1:] {
			v, err := objectAt(it)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return m.Execute(node, f.TableName, methodObj, args)
	})

	registerHandler(opStore, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		src, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		target := targetAt(ctx.Items[1])
		if target != nil && target.Kind() == KindDebug {
			m.logger.Printf("Store: %s", src.Kind())
			return src.Ref(), nil
		}
		if err := storeToTarget(m, target, src.Ref()); err != nil {
			return nil, err
		}
		return src.Ref(), nil
	})

	registerHandler(opRefOf, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		target := targetAt(ctx.Items[0])
		if target == nil {
			return nil, errStoreToConstant
		}
		return NewReference(RefKindRefOf, target.Ref()), nil
	})

	registerHandler(opCondRefOf, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		target := targetAt(ctx.Items[0])
		if target == nil {
			return boolInt(false), nil
		}
		dest := targetAt(ctx.Items[1])
		if dest != nil {
			ref := NewReference(RefKindRefOf, target.Ref())
			if err := storeToTarget(m, dest, ref); err != nil {
				return nil, err
			}
		}
		return boolInt(true), nil
	})

	registerHandler(opDerefOf, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		bottom := unwindToBottom(v)
		return dereferenceValue(m, bottom)
	})

	registerHandler(opSizeOf, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		switch v.Kind() {
		case KindString, KindBuffer:
			n := len(v.Bytes())
			if v.Kind() == KindString && n > 0 {
				n-- // SizeOf(String) excludes the trailing NUL (ACPI spec table 19-6)
			}
			return NewInteger(uint64(n)), nil
		case KindPackage:
			return NewInteger(uint64(len(v.PackageElems()))), nil
		default:
			return nil, errConvertUnsupported
		}
	})

	registerHandler(opObjectType, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		k := v.Kind()
		if k == KindBufferIndex {
			// Reference-OS compatibility quirk (spec.md §9): a BufferIndex
			// reports its ObjectType as BufferField, not a type of its own.
			k = KindBufferField
		}
		return NewInteger(uint64(objectTypeCode(k))), nil
	})

	registerHandler(opIndex, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		src, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		idx, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}

		var result *Object
		switch src.Kind() {
		case KindPackage:
			if int(idx) >= len(src.PackageElems()) {
				return nil, errIndexOutOfBounds
			}
			result = NewPkgIndexReference(src.Ref(), int(idx))
		case KindBuffer, KindString:
			if int(idx) >= len(src.Bytes()) {
				return nil, errIndexOutOfBounds
			}
			result = NewBufferIndex(src, uint32(idx))
		default:
			return nil, errConvertUnsupported
		}
		return storeResult(m, ctx, 2, result)
	})

	registerHandler(opMatch, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		pkg, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if pkg.Kind() != KindPackage {
			return nil, errConvertUnsupported
		}
		op1 := matchOp(ctx.Items[1].imm)
		v1, err := integerAt(m, ctx.Items[2])
		if err != nil {
			return nil, err
		}
		op2 := matchOp(ctx.Items[3].imm)
		v2, err := integerAt(m, ctx.Items[4])
		if err != nil {
			return nil, err
		}
		start, err := integerAt(m, ctx.Items[5])
		if err != nil {
			return nil, err
		}

		elems := pkg.PackageElems()
		for i := int(start); i < len(elems); i++ {
			ev, everr := toIntegerValue(m, elems[i])
			if everr != nil {
				continue
			}
			if matchOpHolds(op1, ev, v1) && matchOpHolds(op2, ev, v2) {
				return NewInteger(uint64(i)), nil
			}
		}
		return NewInteger(^uint64(0)), nil
	})

	concat := func(op opcode) {
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			a, err := objectAt(ctx.Items[0])
			if err != nil {
				return nil, err
			}
			b, err := objectAt(ctx.Items[1])
			if err != nil {
				return nil, err
			}
			v, cerr := concatenate(m, a, b)
			if cerr != nil {
				return nil, cerr
			}
			return storeResult(m, ctx, 2, v)
		})
	}
	concat(opConcat)
	concat(opConcatRes) // a distinct resource-descriptor concat in real ACPI; the engine has no resource-descriptor model, so this reduces to Concat's byte-level join

	convertOp := func(op opcode, fn func(m *Machine, src *Object) (*Object, *Error)) {
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			src, err := objectAt(ctx.Items[0])
			if err != nil {
				return nil, err
			}
			v, cerr := fn(m, src)
			if cerr != nil {
				return nil, cerr
			}
			return storeResult(m, ctx, 1, v)
		})
	}
	convertOp(opToBuffer, func(m *Machine, src *Object) (*Object, *Error) {
		b, err := toBufferValue(m, src)
		if err != nil {
			return nil, err
		}
		return NewBuffer(b), nil
	})
	convertOp(opToDecimalString, func(m *Machine, src *Object) (*Object, *Error) {
		s, err := toDecimalStringValue(src)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})
	convertOp(opToHexString, func(m *Machine, src *Object) (*Object, *Error) {
		s, err := toHexStringValue(src)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})
	convertOp(opToInteger, func(m *Machine, src *Object) (*Object, *Error) {
		v, err := toIntegerValue(m, src)
		if err != nil {
			return nil, err
		}
		return NewInteger(m.truncate(v)), nil
	})
	convertOp(opToString, func(m *Machine, src *Object) (*Object, *Error) {
		s, err := toStringValue(m, src)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})

	registerHandler(opMid, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		src, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		index, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}
		length, err := integerAt(m, ctx.Items[2])
		if err != nil {
			return nil, err
		}
		v, merr := mid(src, index, length)
		if merr != nil {
			return nil, merr
		}
		return storeResult(m, ctx, 3, v)
	})

	registerHandler(opCopyObject, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		src, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		target := targetAt(ctx.Items[1])
		if err := copyObjectToTarget(m, target, src.Ref()); err != nil {
			return nil, err
		}
		return src.Ref(), nil
	})

	registerHandler(opFatal, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		fatalType := byte(ctx.Items[0].imm)
		fatalCode := uint32(ctx.Items[1].imm)
		arg, err := integerAt(m, ctx.Items[2])
		if err != nil {
			return nil, err
		}
		return nil, newError(StatusInvalidArgument, fatalMessage(fatalType, fatalCode, arg))
	})

	registerHandler(opTimer, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewInteger(m.services.Ticks()), nil
	})

	registerHandler(opStall, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		micros, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		m.services.Stall(micros)
		return nil, nil
	})

	registerHandler(opSleep, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		millis, err := integerAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		m.services.Sleep(millis)
		return nil, nil
	})

	registerHandler(opAcquire, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		mu, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if mu.Kind() != KindMutex {
			return nil, errNotAMutex
		}
		timeout := uint16(ctx.Items[1].imm)
		ok := m.services.AcquireMutex(mu, timeout)
		return boolInt(!ok), nil // Acquire returns True on timeout, False on success (ACPI spec table 19-6)
	})

	registerHandler(opRelease, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		mu, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if mu.Kind() != KindMutex {
			return nil, errNotAMutex
		}
		m.services.ReleaseMutex(mu)
		return nil, nil
	})

	registerHandler(opSignal, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		ev, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if ev.Kind() != KindEvent {
			return nil, errNotAnEvent
		}
		m.services.SignalEvent(ev)
		return nil, nil
	})

	registerHandler(opWait, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		ev, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if ev.Kind() != KindEvent {
			return nil, errNotAnEvent
		}
		timeout, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}
		ok := m.services.WaitEvent(ev, uint16(timeout))
		return boolInt(!ok), nil
	})

	registerHandler(opReset, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		ev, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if ev.Kind() != KindEvent {
			return nil, errNotAnEvent
		}
		m.services.ResetEvent(ev)
		return nil, nil
	})

	registerHandler(opNotify, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		// opNotify's object operand is akSuperName, a dynamic arg resolved
		// through transferItem like any other operand; it arrives as an
		// objectItem wrapping a Reference, never a nodeItem, so the target
		// Object (not a Node) is what Services gets handed.
		target, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		value, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}
		m.services.Notify(unwindToBottom(target), value)
		return nil, nil
	})

	registerHandler(opLoad, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		// DefinitionBlock tables are located by signature/OEMID/OEMTableID,
		// none of which the engine can recover from a bare NameString
		// pointing at an already-in-namespace Buffer/Field holding the raw
		// table bytes; LoadTable covers the one path Services actually
		// exposes, so Load always reports NotFound rather than faking a load.
		return nil, newError(StatusNotFound, "Load: table-by-name loading is not supported, use LoadTable")
	})

	registerHandler(opLoadTable, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		sig, err := stringArgAt(m, ctx.Items[0])
		if err != nil {
			return nil, err
		}
		oemID, err := stringArgAt(m, ctx.Items[1])
		if err != nil {
			return nil, err
		}
		oemTableID, err := stringArgAt(m, ctx.Items[2])
		if err != nil {
			return nil, err
		}
		handle, lerr := m.services.LoadTable(sig, oemID, oemTableID)
		if lerr != nil {
			return boolInt(false), nil
		}
		return NewReference(RefKindRefOf, handle), nil
	})

	registerHandler(opUnload, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		v, err := objectAt(ctx.Items[0])
		if err != nil {
			return nil, err
		}
		if v.Kind() != KindReference {
			return nil, errConvertUnsupported
		}
		handle := unwindToBottom(v)
		return nil, m.services.Unload(handle)
	})
}

// stringArgAt converts an operand Item to a Go string (used by LoadTable's
// signature/OEMID/OEMTableID arguments, which arrive as ACPI Strings).
func stringArgAt(m *Machine, it Item) (string, *Error) {
	obj, err := objectAt(it)
	if err != nil {
		return "", err
	}
	s, cerr := toStringValue(m, obj)
	if cerr != nil {
		return "", cerr
	}
	return string(trimNUL(s)), nil
}

// objectTypeCode maps a Kind to ACPI's ObjectType numbering (ACPI spec table
// 19-7), not to Kind's declaration order: 0-4 for Uninitialized through
// Package, 5-14 for FieldUnit through BufferField, 20 for Reference, and 0
// for every kind without a code of its own (BufferIndex, Debug).
func objectTypeCode(k Kind) uint64 {
	switch k {
	case KindUninitialized:
		return 0
	case KindInteger:
		return 1
	case KindString:
		return 2
	case KindBuffer:
		return 3
	case KindPackage:
		return 4
	case KindFieldUnit:
		return 5
	case KindDevice:
		return 6
	case KindEvent:
		return 7
	case KindMethod:
		return 8
	case KindMutex:
		return 9
	case KindOperationRegion:
		return 10
	case KindPowerResource:
		return 11
	case KindProcessor:
		return 12
	case KindThermalZone:
		return 13
	case KindBufferField:
		return 14
	case KindReference:
		return 20
	default:
		return 0
	}
}

// matchOp is the closed set of Match's six comparators (MTR/MEQ/MLE/MLT/MGE/
// MGT), decoded from the raw byte operand (spec.md §4.5 "Match").
type matchOp uint8

const (
	matchTrue matchOp = iota
	matchEq
	matchLe
	matchLt
	matchGe
	matchGt
)

func matchOpHolds(op matchOp, v, operand uint64) bool {
	switch op {
	case matchTrue:
		return true
	case matchEq:
		return v == operand
	case matchLe:
		return v <= operand
	case matchLt:
		return v < operand
	case matchGe:
		return v >= operand
	case matchGt:
		return v > operand
	default:
		return false
	}
}

func fatalMessage(fatalType byte, fatalCode uint32, arg uint64) string {
	return "Fatal: AML requested a fatal system error"
}
