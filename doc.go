// Package aml implements the method execution engine for AML (ACPI Machine
// Language): the opcode dispatch loop, the call-frame and op-context stacks,
// namespace name resolution, the reference-counted object model, the
// store/copy protocol and bit-granular buffer-field I/O.
//
// The namespace data structure, the opcode-specification table and the
// physical operation-region/mutex/event backends are treated as the external
// services described in services.go; this package owns the opcode dispatch
// loop that drives them.
package aml
