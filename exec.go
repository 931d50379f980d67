package aml

import "log"

// Machine is the top-level interpreter: the namespace it evaluates against,
// the revision-derived integer width, and the frame stack that is empty
// exactly when no Execute call is in progress (spec.md §8 invariant 1).
// Grounded on the teacher's VM (vm.go), generalized from an Entity-tree
// walker into the byte-stream op-context machine spec.md mandates.
type Machine struct {
	ns     *Namespace
	logger *log.Logger

	// sizeOfIntInBits is 32 for DSDT revisions below 2, 64 otherwise (spec.md §4.6,
	// SPEC_FULL.md §1 "Configuration"). Grounded on VM.sizeOfIntInBits.
	sizeOfIntInBits int

	frames []*CallFrame

	services Services
}

// NewMachine builds a Machine over an already-populated namespace. revision
// is the owning DSDT's Revision field (spec.md §4.6).
func NewMachine(ns *Namespace, logger *log.Logger, revision uint8, services Services) *Machine {
	bits := 32
	if revision >= 2 {
		bits = 64
	}
	return &Machine{ns: ns, logger: logger, sizeOfIntInBits: bits, services: services}
}

// sizeOfInt returns sizeof(Integer) in bytes: 4 or 8 (spec.md §8 invariant 6).
func (m *Machine) sizeOfInt() int { return m.sizeOfIntInBits / 8 }

// truncate masks v to the machine's integer width when that width is 32 bits
// (DSDT revision below 2; spec.md §3 Integer payload, §4.3 TRUNCATE_NUMBER).
func (m *Machine) truncate(v uint64) uint64 {
	if m.sizeOfIntInBits >= 64 {
		return v
	}
	return v & ((1 << uint(m.sizeOfIntInBits)) - 1)
}

func (m *Machine) allOnes() uint64 {
	if m.sizeOfIntInBits >= 64 {
		return ^uint64(0)
	}
	return (1 << uint(m.sizeOfIntInBits)) - 1
}

// curFrame returns the active frame, or nil if none is running.
func (m *Machine) curFrame() *CallFrame {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// Execute is the entry point (spec.md §6 "execute(scope, method, args[]?,
// out_ret?) -> status"): run method against scope with args, synchronously.
func (m *Machine) Execute(scope *Node, tableName string, method *Object, args []*Object) (*Object, *Error) {
	code, argCount, _, _, _ := method.Method()
	if int(argCount) != len(args) {
		return nil, newError(StatusInvalidArgument, "execute: argument count mismatch")
	}

	f := NewCallFrame(tableName, method, scope, code, args)
	// The method's own body is driven as a plain TermList bounded by its
	// length, reusing opMethodCall's opcode identity (for stack traces) but
	// not its registered parse program, which is empty; an in-body method
	// call gets a per-call program from preemptMethodCall instead.
	topInfo := opcodeInfo{op: opMethodCall, name: "MethodCall", flags: opFlagExecutable, program: prog(akTermList)}
	top := newOpContext(opMethodCall, topInfo, 0)
	top.TrackedPkgIdx = 0
	top.pushItem(pkgLenItem(0, uint32(len(code))))
	f.PushOpContext(top)

	m.frames = append(m.frames, f)
	err := m.runFrame()

	ret := f.RetVal
	m.popFrame()
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (m *Machine) popFrame() {
	f := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	f.Release(m.ns)
}

// runFrame drives the top frame until its code is exhausted, Return sets
// ctrlFlowReturn, or an error propagates. Grounded on the teacher's
// execBlock loop (vm.go), generalized to walk raw bytes through nested
// op-contexts instead of a pre-parsed Entity list.
func (m *Machine) runFrame() *Error {
	f := m.curFrame()
	for {
		if f.CtrlFlow == ctrlFlowReturn {
			m.drainPendingOps(f)
			return nil
		}

		ctx, ok := f.TopOpContext()
		if !ok {
			return nil
		}

		if err := m.stepOpContext(f, ctx); err != nil {
			return m.unwind(f, ctx, err)
		}

		// A method invocation pushes a new frame; a completed nested
		// Execute call pops back to f. Either way re-fetch the current top.
		cur := m.curFrame()
		if cur == nil {
			return nil
		}
		f = cur
	}
}

// drainPendingOps releases every still-open op-context's borrowed Items once
// Return has short-circuited out of them (spec.md §4.5 "Return"): a Return
// nested inside If/While/Scope bodies abandons those enclosing op-contexts
// mid-flight, so their accumulated Items need the same release invokeAndEnd
// would have given them had they run to completion normally.
func (m *Machine) drainPendingOps(f *CallFrame) {
	for _, ctx := range f.PendingOps {
		ctx.releaseItems()
	}
	f.PendingOps = nil
}

// unwind appends a stack-trace frame and propagates err (spec.md §7).
func (m *Machine) unwind(f *CallFrame, ctx *OpContext, err *Error) *Error {
	return err.withTrace(frame{
		table:  f.TableName,
		method: f.MethodName,
		offset: ctx.Begin,
		opcode: ctx.Op.String(),
	})
}

// stepOpContext advances ctx by exactly one micro-op (spec.md §4.3).
func (m *Machine) stepOpContext(f *CallFrame, ctx *OpContext) *Error {
	if ctx.Preempted {
		return m.resumeChild(f, ctx)
	}

	kind, more := ctx.step()
	if !more {
		return m.invokeAndEnd(f, ctx)
	}

	if kind.dynamicArg() {
		return m.preempt(f, ctx, kind)
	}

	c := f.cursor()
	start := c.offset
	defer func() {
		if c.offset != start {
			f.CodeOffset = c.offset
		}
	}()

	switch kind {
	case akByteData, akWord, akDword, akQword:
		v, err := decodeNumConstant(c, scalarWidth(kind))
		if err != nil {
			return err
		}
		ctx.pushItem(immediateItem(v))

	case akByteDataObj, akWordObj, akDwordObj, akQwordObj:
		v, err := decodeNumConstant(c, objWidth(kind))
		if err != nil {
			return err
		}
		ctx.pushItem(objectItem(NewInteger(m.truncate(v))))

	case akString:
		s, err := decodeString(c)
		if err != nil {
			return err
		}
		ctx.pushItem(objectItem(NewString(append(append([]byte{}, s...), 0))))

	case akPkgLen, akPkgLenTracked:
		begin, end, err := decodePkgLength(c)
		if err != nil {
			return err
		}
		idx := len(ctx.Items)
		ctx.pushItem(pkgLenItem(begin, end))
		if kind == akPkgLenTracked {
			ctx.TrackedPkgIdx = idx
		}

	case akNameStringDecl:
		segs, err := decodeNameString(c)
		if err != nil {
			return err
		}
		node, err2 := resolveCreate(m.ns, f.CurScope, segs)
		if err2 != nil {
			return err2
		}
		if f.Method != nil {
			if _, _, _, _, persist := f.Method.Method(); !persist {
				node.temporary = true
				f.TempNodes = append(f.TempNodes, node)
			}
		}
		ctx.pushItem(nodeItem(node, true))

	case akNameStringRef, akNameStringRefOrNull:
		segs, err := decodeNameString(c)
		if err != nil {
			return err
		}
		node, err2 := resolveFind(f.CurScope, m.ns.Root(), segs)
		if err2 != nil {
			if kind == akNameStringRefOrNull {
				ctx.pushItem(nodeItem(nil, false))
				ctx.advance()
				return nil
			}
			return err2
		}
		ctx.pushItem(nodeItem(node, false))

	case akByteList:
		end := ctx.Items[ctx.TrackedPkgIdx].pkgEnd
		n := int(end) - int(f.CodeOffset)
		if n < 0 {
			return errTruncatedStream
		}
		data := make([]byte, n)
		copy(data, f.Code[f.CodeOffset:end])
		f.CodeOffset = end
		ctx.pushItem(objectItem(NewBuffer(data)))

	case akFieldList:
		// FieldList's structured elements (NamedField/ReservedField/
		// AccessField/ConnectField) are parsed directly by the owning
		// Field/IndexField/BankField handler from the raw span, since
		// they aren't TermArgs and don't nest through the op-context
		// machine; hand it the span as a pkgLenItem and stop here.
		end := ctx.Items[ctx.TrackedPkgIdx].pkgEnd
		ctx.pushItem(pkgLenItem(f.CodeOffset, end))
		f.CodeOffset = end

	case akTermList:
		return m.stepTermList(f, ctx, ctx.Items[ctx.TrackedPkgIdx].pkgEnd)
	}

	ctx.advance()
	return nil
}

// stepTermList drives a TermList body (If/Else/While/Scope/Device/Processor/
// PowerResource/ThermalZone/Method bodies) one statement at a time, reusing
// the ordinary dynamic-arg preemption machinery for each statement rather
// than a separate walker (spec.md §4.3, §4.5). Grounded on the teacher's
// execBlock loop (vm.go), generalized from its pre-parsed Entity list into a
// byte-driven repeat-until-offset-reaches-end loop.
func (m *Machine) stepTermList(f *CallFrame, ctx *OpContext, end uint32) *Error {
	// Method bodies are never executed at definition time: record the span
	// for later invocation and skip straight past it (spec.md §3 "Method").
	if ctx.Op == opMethod {
		ctx.pushItem(pkgLenItem(f.CodeOffset, end))
		f.CodeOffset = end
		ctx.advance()
		return nil
	}

	if ctx.Op == opElse && f.SkipElse {
		f.SkipElse = false
		f.CodeOffset = end
		ctx.advance()
		return nil
	}

	if ctx.Op == opIf || ctx.Op == opWhile {
		pred, err := integerAt(m, ctx.Items[1])
		if err != nil {
			return err
		}
		if pred == 0 {
			if ctx.Op == opIf {
				f.SkipElse = false
			}
			f.CodeOffset = end
			ctx.advance()
			return nil
		}
		if ctx.Op == opIf {
			f.SkipElse = true
		}
	}

	scopeNode := scopedBodyNode(ctx)
	if scopeNode != nil && !ctx.bodyEntered {
		ctx.bodyEntered = true
		ctx.savedScope = f.CurScope
		f.CurScope = scopeNode
	}

	if f.CtrlFlow != ctrlFlowNext && f.CodeOffset < end {
		f.CodeOffset = end // Break/Continue/Return: unwind remaining statements of this body
	}

	if f.CodeOffset < end && f.CtrlFlow == ctrlFlowNext {
		return m.preempt(f, ctx, akTermObj)
	}

	if scopeNode != nil {
		f.CurScope = ctx.savedScope
	}

	if ctx.Op == opWhile {
		switch f.CtrlFlow {
		case ctrlFlowBreak:
			f.CtrlFlow = ctrlFlowNext
		case ctrlFlowNext, ctrlFlowContinue:
			f.CtrlFlow = ctrlFlowNext
			// While's opcode is one byte: re-enter at its PkgLength so the
			// predicate is decoded and tested again.
			f.CodeOffset = ctx.Begin + 1
			ctx.releaseItems()
			ctx.pc = 0
			ctx.Items = ctx.Items[:0]
			ctx.TrackedPkgIdx = -1
			ctx.bodyEntered = false
			return nil
		}
	}

	ctx.advance()
	return nil
}

// scopedBodyNode returns the namespace node whose scope a TermList body runs
// in, for the opcodes that declare one (Scope/Device/Processor/
// PowerResource/ThermalZone all parse PkgLenTracked, Name, ..., TermList with
// the Name always landing in Items[1]); nil for If/While/Else/Method, which
// don't change scope.
func scopedBodyNode(ctx *OpContext) *Node {
	switch ctx.Op {
	case opScope, opDevice, opProcessor, opPowerRes, opThermalZone:
		if len(ctx.Items) > 1 && ctx.Items[1].kind == itemNode {
			return ctx.Items[1].node
		}
	}
	return nil
}

func scalarWidth(k argKind) uint8 {
	switch k {
	case akByteData:
		return 1
	case akWord:
		return 2
	case akDword:
		return 4
	default:
		return 8
	}
}

func objWidth(k argKind) uint8 {
	switch k {
	case akByteDataObj:
		return 1
	case akWordObj:
		return 2
	case akDwordObj:
		return 4
	default:
		return 8
	}
}

// cursor returns a *cursor view of f's code at its current offset.
func (f *CallFrame) cursor() *cursor { return &cursor{code: f.Code, offset: f.CodeOffset} }

// preempt marks ctx as waiting for a dynamic argument, fetches the nested
// opcode, typechecks it against the role kind expects, and pushes a fresh
// op-context for it (spec.md §4.3). A SuperName/SimpleName/Target can also
// be spelled as a bare NameString on the wire (no opcode byte of its own);
// that case is resolved inline rather than through a pushed child, since a
// name isn't itself an opcode the jump table dispatches on.
func (m *Machine) preempt(f *CallFrame, ctx *OpContext, kind argKind) *Error {
	c := f.cursor()
	b, ok := c.peekByte()
	if !ok {
		return errTruncatedStream
	}

	if (kind == akTarget || kind == akSimpleName) && b == 0x00 {
		c.readByte()
		f.CodeOffset = c.offset
		ctx.pushItem(nodeItem(nil, false))
		ctx.advance()
		return nil
	}

	if isNameLeadByte(b) {
		return m.preemptName(f, ctx, kind, c)
	}

	ctx.Preempted = true
	ctx.reserveSlot()

	begin := f.CodeOffset
	op, err := m.fetchOpcode(f)
	if err != nil {
		return err
	}
	info, ok := lookupOpcodeInfo(op)
	if !ok {
		return errUnknownOpcode
	}
	if !roleSatisfies(kind, info) {
		return errRoleMismatch
	}

	f.PushOpContext(newOpContext(op, info, begin))
	return nil
}

// isNameLeadByte reports whether b can only begin a NameString, never an
// opcode: '\\', '^', DualNamePrefix/MultiNamePrefix, or a LeadNameChar.
// AML's byte assignment keeps these disjoint from every registered opcode
// byte (spec.md §4.1, §4.2).
func isNameLeadByte(b byte) bool {
	return b == '\\' || b == '^' || b == 0x2e || b == 0x2f || b == '_' || (b >= 'A' && b <= 'Z')
}

// preemptName resolves a bare NameString appearing where a SuperName/
// SimpleName/Target/TermArg was expected, wrapping the result as a Named
// reference so Store and read access dispatch through it uniformly
// (spec.md §4.1 "find-existing" mode, §4.5).
func (m *Machine) preemptName(f *CallFrame, ctx *OpContext, kind argKind, c *cursor) *Error {
	segs, err := decodeNameString(c)
	f.CodeOffset = c.offset
	if err != nil {
		return err
	}
	node, err2 := resolveFind(f.CurScope, m.ns.Root(), segs)
	if err2 != nil {
		if kind.allowsUnresolved() {
			ctx.pushItem(objectItem(nil))
			ctx.advance()
			return nil
		}
		return err2
	}
	if node.Object() != nil && node.Object().Kind() == KindMethod {
		return m.preemptMethodCall(f, ctx, node)
	}

	result := NewReference(RefKindNamed, node.Object().Ref())
	item, terr := m.transferItem(result, ctx)
	if terr != nil {
		return terr
	}
	ctx.pushItem(item)
	ctx.advance()
	return nil
}

// preemptMethodCall dispatches a bare NameString that resolved to a Method
// object (spec.md §4.5 "MethodInvocation"): a MethodInvocation carries no
// opcode byte of its own, just ArgCount TermArg operands following the
// name, so the parse program it needs can't be registered statically in
// opcode.go — it's synthesized here from the resolved Method's own ArgCount.
func (m *Machine) preemptMethodCall(f *CallFrame, ctx *OpContext, node *Node) *Error {
	methodObj := node.Object()
	_, argCount, _, _, _ := methodObj.Method()

	kinds := make([]argKind, argCount)
	for i := range kinds {
		kinds[i] = akOperand
	}
	info := opcodeInfo{op: opMethodCall, name: "MethodCall", flags: opFlagExecutable, program: prog(kinds...)}
	child := newOpContext(opMethodCall, info, ctx.Begin)
	child.pushItem(nodeItem(node, false))

	ctx.Preempted = true
	ctx.reserveSlot()
	f.PushOpContext(child)
	return nil
}

// roleSatisfies implements the Typecheck gate (spec.md §4.3): the child
// opcode's static flags must satisfy the parent's expected role.
func roleSatisfies(kind argKind, info opcodeInfo) bool {
	switch kind {
	case akSimpleName:
		return info.flags&opFlagNamed != 0 || info.op.isLocalArg() || info.op.isMethodArg()
	case akTarget:
		return info.flags&opFlagExecutable != 0 || info.flags&opFlagNamed != 0 ||
			info.op.isLocalArg() || info.op.isMethodArg() || info.op == opZero
	case akSuperName, akSuperNameImplicitDeref, akSuperNameOrUnresolved:
		return info.flags&opFlagExecutable != 0 || info.flags&opFlagNamed != 0 ||
			info.op.isLocalArg() || info.op.isMethodArg()
	default:
		return true
	}
}

// fetchOpcode reads one opcode at f's current offset (spec.md §4.2).
func (m *Machine) fetchOpcode(f *CallFrame) (opcode, *Error) {
	c := f.cursor()
	b, ok := c.readByte()
	if !ok {
		return 0, errTruncatedStream
	}
	var op opcode
	if b == extOpPrefix {
		b2, ok := c.readByte()
		if !ok {
			return 0, errTruncatedStream
		}
		op = opcode(0xff) + opcode(b2)
	} else {
		op = opcode(b)
	}
	f.CodeOffset = c.offset
	return op, nil
}

// resumeChild re-activates ctx after its pushed child op-context finished:
// the child's result is already sitting in ctx's reserved Items slot,
// deposited there by invokeAndEnd's caller-side transfer.
func (m *Machine) resumeChild(f *CallFrame, ctx *OpContext) *Error {
	ctx.Preempted = false
	if kind, _ := ctx.step(); kind == akTermList {
		// A TermList statement finished: stay on akTermList so
		// stepTermList runs the next statement of the body.
		return nil
	}
	ctx.advance()
	return nil
}

// invokeAndEnd runs INVOKE_HANDLER (if any) then END (spec.md §4.3): pop ctx,
// fast-forward past a tracked package if any, and deposit the result into
// the parent (OBJECT_TRANSFER_TO_PREV), resuming it.
func (m *Machine) invokeAndEnd(f *CallFrame, ctx *OpContext) *Error {
	result, err := m.invokeHandler(f, ctx)
	ctx.releaseItems()
	if err != nil {
		return err
	}

	if ctx.TrackedPkgIdx >= 0 {
		f.CodeOffset = ctx.Items[ctx.TrackedPkgIdx].pkgEnd
	}

	f.PopOpContext()

	parent, ok := f.TopOpContext()
	if !ok {
		if f.RetVal == nil {
			f.RetVal = result
		} else if result != nil {
			result.Unref()
		}
		return nil
	}

	if parent.Preempted {
		idx := len(parent.Items) - 1
		item, terr := m.transferItem(result, parent)
		if terr != nil {
			return terr
		}
		parent.Items[idx] = item
	}
	return nil
}

// transferItem builds the Item a finished child deposits into its parent's
// reserved slot. Whether the parent sees the raw Reference or its
// dereferenced value depends on the role the parent's current step asked
// for (spec.md §4.3, §9 "Reference semantics"):
//   - write contexts (SuperName/SimpleName/Target) keep the Reference
//     itself, since Store/CopyObject/Increment need the slot, not its value.
//   - SUPERNAME_IMPLICIT_DEREF unconditionally unwinds any Reference
//     (DerefOf's target, CondRefOf's first argument).
//   - every other (read) context transparently dereferences a "slot"
//     Reference (Named/Local/Arg/PkgIndex) down to its value, but leaves a
//     RefOf Reference alone — RefOf produces ACPI's actual ObjectReference
//     data type, which only DerefOf unwraps.
func (m *Machine) transferItem(result *Object, parent *OpContext) (Item, *Error) {
	if result == nil {
		return emptyItem(), nil
	}
	kind, _ := parent.step()
	switch {
	case kind == akSuperNameImplicitDeref:
		if result.Kind() == KindReference {
			deref := unwindToBottom(result).Ref()
			result.Unref()
			result = deref
		}
	case isWriteContext(kind):
		// keep as-is
	default:
		if result.Kind() == KindReference && result.Reference().Kind != RefKindRefOf {
			deref := unwindToBottom(result).Ref()
			result.Unref()
			result = deref
		}
		// A Named/Local/Arg/PkgIndex reference can bottom out on a
		// BufferField/BufferIndex/FieldUnit "slot" object; a read context
		// wants the value that slot currently holds, not the slot itself
		// (spec.md §4.7, SPEC_FULL.md §3 "FieldUnit resolution").
		if isFieldLike(result.Kind()) {
			v, err := dereferenceValue(m, result)
			result.Unref()
			if err != nil {
				return emptyItem(), err
			}
			result = v
		}
	}
	return objectItem(result), nil
}

func isWriteContext(kind argKind) bool {
	switch kind {
	case akSuperName, akSuperNameOrUnresolved, akSimpleName, akTarget:
		return true
	default:
		return false
	}
}

// execHandlers maps an opcode to the function that runs its INVOKE_HANDLER
// step once every argument Item has been collected. Populated by each
// handlers_*.go file's init().
var execHandlers = map[opcode]func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error){}

func registerHandler(op opcode, fn func(m *Machine, f *CallFrame, ctx *OpContext) (*Object, *Error)) {
	execHandlers[op] = fn
}

// invokeHandler looks up and runs op's handler, or returns nil (no result)
// for opcodes that have none (Noop, BreakPoint, structural-only opcodes).
func (m *Machine) invokeHandler(f *CallFrame, ctx *OpContext) (*Object, *Error) {
	fn, ok := execHandlers[ctx.Op]
	if !ok {
		return nil, nil
	}
	return fn(m, f, ctx)
}
