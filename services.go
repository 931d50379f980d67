package aml

// Services is the set of external, kernel-provided operations the engine
// calls out to rather than implementing itself (spec.md §6 "External
// interfaces: kernel services"). Grounded on the teacher's approach of
// routing hardware access through a small interface the owning kernel
// subsystem implements (acpi_region_handler in the broader ACPI subsystem),
// generalized to cover every external touchpoint spec.md names: region I/O,
// a monotonic tick source for Timer/Stall/Sleep, and mutex/event primitives
// for Acquire/Release/Signal/Wait/Reset.
type Services interface {
	// RegionRead/RegionWrite access width bytes of an OperationRegion's
	// address space at offset (spec.md §4.5 "Field/IndexField/BankField
	// access"). width is 1, 2, 4, or 8.
	RegionRead(space RegionSpace, offset uint64, width uint8) (uint64, *Error)
	RegionWrite(space RegionSpace, offset uint64, width uint8, value uint64) *Error

	// Ticks returns a monotonically increasing 100ns tick count (spec.md
	// §4.5 "Timer").
	Ticks() uint64

	// Stall busy-waits for roughly micros microseconds (Stall opcode, which
	// unlike Sleep must not yield the processor).
	Stall(micros uint64)

	// Sleep yields the calling method's execution for roughly millis
	// milliseconds (Sleep opcode).
	Sleep(millis uint64)

	// AcquireMutex/ReleaseMutex implement the Acquire/Release opcodes'
	// blocking semantics; timeoutMillis of 0xffff means wait indefinitely.
	// AcquireMutex reports ok==false on timeout.
	AcquireMutex(mu *Object, timeoutMillis uint16) (ok bool)
	ReleaseMutex(mu *Object)

	// SignalEvent/WaitEvent/ResetEvent implement the Signal/Wait/Reset
	// opcodes against an Event object's counting semaphore.
	SignalEvent(ev *Object)
	WaitEvent(ev *Object, timeoutMillis uint16) (ok bool)
	ResetEvent(ev *Object)

	// Notify delivers a Notify(object, value) event to whatever driver or
	// OSPM layer registered interest in obj. obj is the same Device/
	// Processor/PowerResource/ThermalZone Object identity the namespace node
	// carries for its whole lifetime, so the host may key its registration
	// off the pointer directly rather than a Node.
	Notify(obj *Object, value uint64)

	// LoadTable/Unload implement dynamic table loading; engines that never
	// load secondary tables may return errUnimplementedService. The *Object
	// LoadTable returns is an opaque handle (wrapped by the engine in a
	// RefOf Reference for AML to hold onto) that Unload is later handed
	// back unchanged — the host, not the engine, owns whatever bookkeeping
	// it takes to tear the table down again.
	LoadTable(signature, oemID, oemTableID string) (*Object, *Error)
	Unload(handle *Object) *Error
}

var errUnimplementedService = newError(StatusUnimplemented, "external service not implemented by this host")

// NopServices is a Services implementation that rejects region I/O and
// table loading with errUnimplementedService; its timing, mutex, event and
// Notify hooks do nothing and report success (Ticks is always 0, Acquire and
// Wait never time out). Useful for tests that only exercise pure bytecode
// (arithmetic, control flow, namespace/store semantics) and never touch
// real hardware.
type NopServices struct{}

func (NopServices) RegionRead(RegionSpace, uint64, uint8) (uint64, *Error) {
	return 0, errUnimplementedService
}
func (NopServices) RegionWrite(RegionSpace, uint64, uint8, uint64) *Error {
	return errUnimplementedService
}
func (NopServices) Ticks() uint64  { return 0 }
func (NopServices) Stall(uint64)   {}
func (NopServices) Sleep(uint64)   {}
func (NopServices) AcquireMutex(*Object, uint16) bool { return true }
func (NopServices) ReleaseMutex(*Object)              {}
func (NopServices) SignalEvent(*Object)               {}
func (NopServices) WaitEvent(*Object, uint16) bool    { return true }
func (NopServices) ResetEvent(*Object)                {}
func (NopServices) Notify(*Object, uint64)            {}
func (NopServices) LoadTable(string, string, string) (*Object, *Error) {
	return nil, errUnimplementedService
}
func (NopServices) Unload(*Object) *Error { return errUnimplementedService }
