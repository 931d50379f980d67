package aml

// handlers_const.go covers the opcodes whose INVOKE_HANDLER step needs no
// arithmetic of its own: fixed constants, immediate-wrapping prefixes, and
// the Local/Arg slot accessors (spec.md §4.5 "Local/Arg access").

func init() {
	registerHandler(opZero, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewInteger(0), nil
	})
	registerHandler(opOne, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewInteger(1), nil
	})
	registerHandler(opOnes, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewInteger(m.allOnes()), nil
	})
	registerHandler(opRevision, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewInteger(2), nil
	})
	registerHandler(opDebug, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return NewDebug(), nil
	})
	registerHandler(opNoop, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return nil, nil
	})
	registerHandler(opBreakPoint, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		return nil, nil
	})

	for _, op := range []opcode{opBytePrefix, opWordPrefix, opDwordPrefix, opQwordPrefix, opStringPrefix} {
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			return ctx.Items[0].obj.Ref(), nil
		})
	}

	localOps := [8]opcode{opLocal0, opLocal1, opLocal2, opLocal3, opLocal4, opLocal5, opLocal6, opLocal7}
	for i, op := range localOps {
		i := i
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			return f.Local(i).Ref(), nil
		})
	}

	argOps := [7]opcode{opArg0, opArg1, opArg2, opArg3, opArg4, opArg5, opArg6}
	for i, op := range argOps {
		i := i
		registerHandler(op, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
			return f.Arg(i).Ref(), nil
		})
	}
}
