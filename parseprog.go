package aml

// argKind is the closed set of parser micro-ops an opcode's parse program is
// built from (spec §4.3). Each opcodeInfo carries a parseProgram — a slice
// of argKind values — that the op-context machine (opcontext.go, exec.go)
// walks one entry per call to stepOpContext. This mirrors the teacher's
// opArgFlag/makeArgN argument-type lists (opcode_table.go) but is expressed
// as the explicit micro-op contract spec.md names, rather than a bare
// "argument type" the parser special-cases.
type argKind uint8

const (
	// akTermObj preempts for a TERM_ARG / TERM_ARG_UNWRAP_INTERNAL child —
	// any opcode that is itself a TermArg.
	akTermObj argKind = iota
	// akTermObjOrNamedOrUnresolved is TERM_ARG_OR_NAMED_OBJECT_OR_UNRESOLVED:
	// a name that is allowed to resolve to NotFound (forward reference).
	akTermObjOrNamedOrUnresolved
	// akOperand is OPERAND: a TermArg used as an arithmetic/logic operand.
	akOperand
	// akComputationalData is COMPUTATIONAL_DATA: a TermArg restricted to
	// data-like results (Integer/String/Buffer/Package).
	akComputationalData
	// akSuperName preempts for SUPERNAME.
	akSuperName
	// akSuperNameImplicitDeref is SUPERNAME_IMPLICIT_DEREF.
	akSuperNameImplicitDeref
	// akSuperNameOrUnresolved is SUPERNAME_OR_UNRESOLVED.
	akSuperNameOrUnresolved
	// akSimpleName preempts for SIMPLE_NAME.
	akSimpleName
	// akTarget preempts for TARGET (a SuperName, or the null target).
	akTarget
	// akNameStringDecl runs CREATE_NAMESTRING (declares a new name in the
	// create-new-last-seg mode of spec §4.1).
	akNameStringDecl
	// akNameStringRef runs EXISTING_NAMESTRING (find-existing mode).
	akNameStringRef
	// akNameStringRefOrNull runs EXISTING_NAMESTRING_OR_NULL.
	akNameStringRefOrNull
	// akByteData/akWord/akDword/akQword are LOAD_IMM: decode a fixed-width
	// immediate from the bytecode stream as a raw (unwrapped) value.
	akByteData
	akWord
	akDword
	akQword
	// akByteDataObj is LOAD_IMM_AS_OBJECT applied to a single byte (used
	// by e.g. BytePrefix).
	akByteDataObj
	akWordObj
	akDwordObj
	akQwordObj
	// akString decodes a NUL-terminated ASCII string into a String object.
	akString
	// akTermList marks "the rest of this package is a TermList body" —
	// exec.go's stepTermList drives the Scope/If/While/... body one
	// statement at a time (a Method body is only recorded, not run).
	akTermList
	// akByteList marks a raw byte-list body (Buffer initializer data).
	akByteList
	// akFieldList marks a Field/IndexField/BankField element list body.
	akFieldList
	// akPkgLen runs (TRACKED_)PKGLEN immediately before the body it bounds.
	akPkgLen
	// akPkgLenTracked is the TRACKED_PKGLEN variant: remembers its Item
	// index in the op-context so END can fast-forward code_offset to the
	// package's end (spec table 4.3).
	akPkgLenTracked
)

// parseProgram is the ordered list of argKind steps an opcode's operands are
// decoded with.
type parseProgram []argKind

func prog(kinds ...argKind) parseProgram { return parseProgram(kinds) }

// dynamicArg reports whether step k causes the op-context machine to preempt
// and fetch a nested opcode, as opposed to decoding an immediate in place.
func (k argKind) dynamicArg() bool {
	switch k {
	case akTermObj, akTermObjOrNamedOrUnresolved, akOperand, akComputationalData,
		akSuperName, akSuperNameImplicitDeref, akSuperNameOrUnresolved,
		akSimpleName, akTarget:
		return true
	default:
		return false
	}
}

// allowsUnresolved reports whether a NotFound from name resolution during
// this step is demoted to OK (spec §4.3 "Typecheck gate" / §7).
func (k argKind) allowsUnresolved() bool {
	switch k {
	case akTermObjOrNamedOrUnresolved, akSuperNameOrUnresolved, akNameStringRefOrNull:
		return true
	default:
		return false
	}
}
