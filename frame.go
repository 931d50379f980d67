package aml

const (
	maxLocalArgs  = 8
	maxMethodArgs = 7
)

// CallFrame is one AML method invocation (spec.md §3 "Call frame"). Args and
// locals are always References (RefKindArg/RefKindLocal) wrapping an Object,
// lazily allocated on first use per spec.md §3 invariants and §4.5 "Local/Arg
// access". Grounded on the teacher's execContext (vm.go), generalized from a
// flat localArg/methodArg `interface{}` array into the Reference-typed slots
// the spec's store/copy dispatcher (store.go) requires.
type CallFrame struct {
	Method *Object // the Method object being run, or nil for the top-level table load

	locals [maxLocalArgs]*Object
	args   [maxMethodArgs]*Object
	numArgs int

	PendingOps []*OpContext

	// TempNodes are namespace nodes installed by this frame with
	// temporary==true; uninstalled in reverse install order at frame exit
	// (spec.md §3, §7).
	TempNodes []*Node

	CurScope   *Node
	CodeOffset uint32
	Code       []byte

	TableName  string
	MethodName string

	CtrlFlow ctrlFlowKind
	RetVal   *Object

	// SkipElse is set by an If whose predicate was true, consumed by the
	// Else that (per AML grammar) immediately follows it in the same
	// statement list: Else only runs when the preceding If didn't (spec.md
	// §4.5 "If/Else").
	SkipElse bool
}

// ctrlFlowKind mirrors the teacher's ctrlFlowType (vm.go): how the driver
// should pick the next instruction after a block finishes executing.
type ctrlFlowKind uint8

const (
	ctrlFlowNext ctrlFlowKind = iota
	ctrlFlowBreak
	ctrlFlowContinue
	ctrlFlowReturn
)

// NewCallFrame builds a frame to run method's code (or a bare table-load
// frame when method is nil) starting at scope.
func NewCallFrame(tableName string, method *Object, scope *Node, code []byte, args []*Object) *CallFrame {
	f := &CallFrame{
		Method:     method,
		CurScope:   scope,
		Code:       code,
		TableName:  tableName,
		numArgs:    len(args),
	}
	for i, a := range args {
		f.args[i] = NewReference(RefKindArg, a.Ref())
	}
	return f
}

// Local returns (allocating on first use) the Reference wrapping locals[i]
// (spec.md §4.5 "Local/Arg access"). The returned Object is the Reference
// itself, not its Inner — callers dereference via store.go's dispatcher.
func (f *CallFrame) Local(i int) *Object {
	if f.locals[i] == nil {
		f.locals[i] = NewReference(RefKindLocal, NewUninitialized())
	}
	return f.locals[i]
}

// Arg returns (allocating on first use, like Local) the Reference wrapping
// args[i]. NewCallFrame binds the first len(args) slots; any other index in
// range gets a fresh Reference wrapping an Uninitialized object.
func (f *CallFrame) Arg(i int) *Object {
	if f.args[i] == nil {
		f.args[i] = NewReference(RefKindArg, NewUninitialized())
	}
	return f.args[i]
}

// PushOpContext pushes a new op-context, preempting whatever was on top.
func (f *CallFrame) PushOpContext(ctx *OpContext) {
	f.PendingOps = append(f.PendingOps, ctx)
}

// TopOpContext returns the active (innermost) op-context, or ok==false if
// the frame's op-context stack is empty (the frame itself is done).
func (f *CallFrame) TopOpContext() (*OpContext, bool) {
	if len(f.PendingOps) == 0 {
		return nil, false
	}
	return f.PendingOps[len(f.PendingOps)-1], true
}

// PopOpContext pops the active op-context.
func (f *CallFrame) PopOpContext() {
	f.PendingOps = f.PendingOps[:len(f.PendingOps)-1]
}

// Release unwinds the frame on exit (normal or error): unref args/locals,
// uninstall temp nodes in reverse install order (spec.md §3, §7).
func (f *CallFrame) Release(ns *Namespace) {
	for i := range f.locals {
		f.locals[i].Unref()
	}
	for i := range f.args {
		f.args[i].Unref()
	}
	for i := len(f.TempNodes) - 1; i >= 0; i-- {
		ns.Free(f.TempNodes[i])
	}
	f.RetVal.Unref()
}
