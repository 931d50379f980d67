package aml

// handlers_flow.go implements the control-flow opcodes (spec.md §4.5
// "Control flow"). If/Else/While/Scope/Device/Processor/PowerResource/
// ThermalZone have no work left to do by the time INVOKE_HANDLER runs: their
// bodies are already driven statement-by-statement by exec.go's
// stepTermList, which also handles If/Else's predicate-skip and While's
// predicate re-test, so none of them register a handler here. Only Break,
// Continue, and Return carry their own side effect (setting the frame's
// control-flow flag, and for Return, its result), grounded on the teacher's
// vm_op_flow.go.

func init() {
	registerHandler(opBreak, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		f.CtrlFlow = ctrlFlowBreak
		return nil, nil
	})

	registerHandler(opContinue, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		f.CtrlFlow = ctrlFlowContinue
		return nil, nil
	})

	registerHandler(opReturn, func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error) {
		var ret *Object
		if v, err := objectAt(ctx.Items[0]); err == nil && v != nil {
			ret = v.Ref()
		}
		f.RetVal.Unref()
		f.RetVal = ret
		f.CtrlFlow = ctrlFlowReturn
		return nil, nil
	})
}
