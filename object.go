package aml

// Kind is the closed set of Object payload tags (spec.md §3). It plays the
// role the teacher's valueType enum (vm_convert.go) plays for diagnostics,
// but here it is also the discriminant of Object's tagged union rather than
// a separate classification computed after the fact.
type Kind uint8

const (
	KindUninitialized Kind = iota
	KindInteger
	KindString
	KindBuffer
	KindPackage
	KindReference
	KindBufferField
	KindBufferIndex
	KindOperationRegion
	KindFieldUnit
	KindMethod
	KindMutex
	KindEvent
	KindProcessor
	KindPowerResource
	KindThermalZone
	KindDevice
	KindDebug
)

func (k Kind) String() string {
	switch k {
	case KindUninitialized:
		return "Uninitialized"
	case KindInteger:
		return "Integer"
	case KindString:
		return "String"
	case KindBuffer:
		return "Buffer"
	case KindPackage:
		return "Package"
	case KindReference:
		return "Reference"
	case KindBufferField:
		return "BufferField"
	case KindBufferIndex:
		return "BufferIndex"
	case KindOperationRegion:
		return "OperationRegion"
	case KindFieldUnit:
		return "FieldUnit"
	case KindMethod:
		return "Method"
	case KindMutex:
		return "Mutex"
	case KindEvent:
		return "Event"
	case KindProcessor:
		return "Processor"
	case KindPowerResource:
		return "PowerResource"
	case KindThermalZone:
		return "ThermalZone"
	case KindDevice:
		return "Device"
	case KindDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// RegionSpace identifies the address space an OperationRegion reads/writes
// through. Named and ordered after the teacher's RegionSpace (entity.go).
type RegionSpace uint8

const (
	RegionSpaceSystemMemory RegionSpace = iota
	RegionSpaceSystemIO
	RegionSpacePCIConfig
	RegionSpaceEmbeddedControl
	RegionSpaceSMBus
	RegionSpacePCIBarTarget
	RegionSpaceIPMI
	RegionSpaceGeneralPurposeIO
	RegionSpaceGenericSerialBus
)

// sharedBuffer is the mutable byte store String/Buffer objects and any
// BufferField/BufferIndex derived from them alias. Refcounted independently
// of the owning Object so a BufferField can keep the bytes alive after the
// Buffer object itself is released (spec.md §5 "shared ownership").
type sharedBuffer struct {
	bytes []byte
	refs  int
}

func newSharedBuffer(data []byte) *sharedBuffer {
	return &sharedBuffer{bytes: data, refs: 1}
}

func (b *sharedBuffer) ref() *sharedBuffer {
	b.refs++
	return b
}

func (b *sharedBuffer) unref() {
	b.refs--
}

// packageData is the shared payload of a Package object: an owned slice of
// Object pointers. Each slot is either a regular Object or a Reference of
// kind PkgIndex lazily lifted in by Index (spec.md §3 invariants).
type packageData struct {
	elems []*Object
	refs  int
}

// bufferFieldData is the payload of a BufferField object (spec.md §3, §4.7).
type bufferFieldData struct {
	backing     *sharedBuffer
	bitIndex    uint32
	bitLength   uint32
	forceBuffer bool
}

// bufferIndexData is the payload of a BufferIndex object: a one-byte view
// into a shared buffer at idx (spec.md §3).
type bufferIndexData struct {
	backing *sharedBuffer
	idx     uint32
}

// regionData is the payload of an OperationRegion object (spec.md §3).
type regionData struct {
	space  RegionSpace
	offset uint64
	length uint64
}

// fieldUnitData describes a Field/IndexField/BankField element: a named view
// into a region (or an index/data register pair) with a bit offset/width and
// access rule, resolved lazily on first access (supplemented feature, see
// SPEC_FULL.md §3, grounded on the teacher's fieldUnitEntity/indexFieldEntity).
type fieldUnitData struct {
	regionPath string // dotted name of the backing OperationRegion (or index register, for IndexField)
	dataPath   string // dotted name of IndexField's data register or BankField's bank register; empty for Field
	bitOffset  uint64
	bitWidth   uint64
	accessType FieldAccessType
	updateRule FieldUpdateRule
	lock       bool
}

// FieldAccessType mirrors the teacher's FieldAccessType (entity.go).
type FieldAccessType uint8

const (
	FieldAccessTypeAny FieldAccessType = iota
	FieldAccessTypeByte
	FieldAccessTypeWord
	FieldAccessTypeDword
	FieldAccessTypeQword
	FieldAccessTypeBuffer
)

// FieldUpdateRule mirrors the teacher's FieldUpdateRule (entity.go).
type FieldUpdateRule uint8

const (
	FieldUpdateRulePreserve FieldUpdateRule = iota
	FieldUpdateRuleWriteAsOnes
	FieldUpdateRuleWriteAsZeros
)

// methodData is the payload of a Method object (spec.md §3, §4.5).
type methodData struct {
	code                []byte
	argCount            uint8
	serialized          bool
	syncLevel           uint8
	namedObjectsPersist bool
}

// mutexData is the payload of a Mutex object.
type mutexData struct {
	syncLevel uint8
	owner     *CallFrame
	acquired  int // reentrant acquire count by the current owner
}

// eventData is the payload of an Event object: a counting signal the Signal/
// Wait/Reset opcodes manipulate through the external event service.
type eventData struct {
	handle uint64
}

// processorData is the payload of a Processor object.
type processorData struct {
	id           uint8
	blockAddress uint32
	blockLength  uint8
}

// powerResourceData is the payload of a PowerResource object.
type powerResourceData struct {
	systemLevel   uint8
	resourceOrder uint16
}

// deviceData marks a Device object; devices carry no payload of their own
// beyond being a namespace scope with named children.
type deviceData struct{}

// thermalZoneData marks a ThermalZone object; same shape as deviceData.
type thermalZoneData struct{}

// Object is the tagged-union value every namespace slot, local, arg, and
// package element ultimately holds. Refcounted per spec.md §3/§5: package
// elements and field backings use shared ownership, and a Reference
// exclusively owns the refcount on its inner target.
//
// This generalizes the teacher's Entity/ScopeEntity interface-and-struct-
// embedding design (entity.go) into a single flat struct keyed by Kind — the
// spec calls for "a tagged variant with a shared reference count and a
// kind-specific payload", which a closed Kind enum expresses more directly
// in Go than the teacher's type-per-entity-kind hierarchy. The payload
// structs above keep the teacher's field names and shapes.
type Object struct {
	kind  Kind
	refs  int
	asU64 uint64 // Integer payload (and sizeof caches for String/Buffer is read via payload fields)

	str *sharedBuffer // String payload
	buf *sharedBuffer // Buffer payload
	pkg *packageData  // Package payload

	ref *Reference // Reference payload

	field       *bufferFieldData
	index       *bufferIndexData
	region      *regionData
	fieldUnit   *fieldUnitData
	method      *methodData
	mutex       *mutexData
	event       *eventData
	processor   *processorData
	powerRes    *powerResourceData
	device      *deviceData
	thermalZone *thermalZoneData
}

// Kind reports the object's tag.
func (o *Object) Kind() Kind { return o.kind }

// NewUninitialized returns a fresh Uninitialized object (refcount 1).
func NewUninitialized() *Object { return &Object{kind: KindUninitialized, refs: 1} }

// NewInteger returns a fresh Integer object wrapping v.
func NewInteger(v uint64) *Object { return &Object{kind: KindInteger, refs: 1, asU64: v} }

// NewDebug returns the write-only Debug sentinel object.
func NewDebug() *Object { return &Object{kind: KindDebug, refs: 1} }

// NewString returns a fresh String object. data must include the trailing
// NUL per spec.md §3 ("size includes trailing NUL").
func NewString(data []byte) *Object {
	return &Object{kind: KindString, refs: 1, str: newSharedBuffer(data)}
}

// NewBuffer returns a fresh Buffer object sharing data.
func NewBuffer(data []byte) *Object {
	return &Object{kind: KindBuffer, refs: 1, buf: newSharedBuffer(data)}
}

// NewPackage returns a fresh Package object owning count slots, each
// initialized to Uninitialized.
func NewPackage(count int) *Object {
	elems := make([]*Object, count)
	for i := range elems {
		elems[i] = NewUninitialized()
	}
	return &Object{kind: KindPackage, refs: 1, pkg: &packageData{elems: elems, refs: 1}}
}

// NewReference returns a fresh Reference object of the given kind wrapping
// inner. The Reference takes ownership of the caller's ref on inner.
func NewReference(kind RefKind, inner *Object) *Object {
	return &Object{kind: KindReference, refs: 1, ref: &Reference{Kind: kind, Inner: inner}}
}

// NewBufferField returns a fresh BufferField object over backing.
func NewBufferField(backing *Object, bitIndex, bitLength uint32, forceBuffer bool) *Object {
	return &Object{
		kind: KindBufferField,
		refs: 1,
		field: &bufferFieldData{
			backing:     backing.buf.ref(),
			bitIndex:    bitIndex,
			bitLength:   bitLength,
			forceBuffer: forceBuffer,
		},
	}
}

// NewBufferIndex returns a fresh BufferIndex object at idx into backing.
func NewBufferIndex(backing *Object, idx uint32) *Object {
	return &Object{kind: KindBufferIndex, refs: 1, index: &bufferIndexData{backing: backing.buf.ref(), idx: idx}}
}

// NewOperationRegion returns a fresh OperationRegion object.
func NewOperationRegion(space RegionSpace, offset, length uint64) *Object {
	return &Object{kind: KindOperationRegion, refs: 1, region: &regionData{space: space, offset: offset, length: length}}
}

// NewFieldUnit returns a fresh FieldUnit object (supplemented feature; see
// SPEC_FULL.md §3).
func NewFieldUnit(regionPath, dataPath string, bitOffset, bitWidth uint64, access FieldAccessType, update FieldUpdateRule, lock bool) *Object {
	return &Object{
		kind: KindFieldUnit,
		refs: 1,
		fieldUnit: &fieldUnitData{
			regionPath: regionPath,
			dataPath:   dataPath,
			bitOffset:  bitOffset,
			bitWidth:   bitWidth,
			accessType: access,
			updateRule: update,
			lock:       lock,
		},
	}
}

// NewMethod returns a fresh Method object.
func NewMethod(code []byte, argCount uint8, serialized bool, syncLevel uint8, namedObjectsPersist bool) *Object {
	return &Object{
		kind: KindMethod,
		refs: 1,
		method: &methodData{
			code:                code,
			argCount:            argCount,
			serialized:          serialized,
			syncLevel:           syncLevel,
			namedObjectsPersist: namedObjectsPersist,
		},
	}
}

// NewMutex returns a fresh Mutex object.
func NewMutex(syncLevel uint8) *Object {
	return &Object{kind: KindMutex, refs: 1, mutex: &mutexData{syncLevel: syncLevel}}
}

// NewEvent returns a fresh Event object.
func NewEvent() *Object { return &Object{kind: KindEvent, refs: 1, event: &eventData{}} }

// NewProcessor returns a fresh Processor object.
func NewProcessor(id uint8, blockAddress uint32, blockLength uint8) *Object {
	return &Object{kind: KindProcessor, refs: 1, processor: &processorData{id: id, blockAddress: blockAddress, blockLength: blockLength}}
}

// NewPowerResource returns a fresh PowerResource object.
func NewPowerResource(systemLevel uint8, resourceOrder uint16) *Object {
	return &Object{kind: KindPowerResource, refs: 1, powerRes: &powerResourceData{systemLevel: systemLevel, resourceOrder: resourceOrder}}
}

// NewDevice returns a fresh Device object.
func NewDevice() *Object { return &Object{kind: KindDevice, refs: 1, device: &deviceData{}} }

// NewThermalZone returns a fresh ThermalZone object.
func NewThermalZone() *Object { return &Object{kind: KindThermalZone, refs: 1, thermalZone: &thermalZoneData{}} }

// Ref increments o's refcount and returns o, for the common "take a ref-
// counted alias" idiom (spec.md §4.5 "Local/Arg access ... return a ref-
// counted alias").
func (o *Object) Ref() *Object {
	if o == nil {
		return nil
	}
	o.refs++
	return o
}

// Unref decrements o's refcount, releasing shared payloads (buffers,
// packages, the wrapped Reference target) once it reaches zero. Follows the
// manual refcount discipline described in spec.md §9 ("Reference cycles"):
// single-threaded, no tracing collector (the teacher itself relies on Go's
// GC and never refcounts).
func (o *Object) Unref() {
	if o == nil {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	switch o.kind {
	case KindString:
		o.str.unref()
	case KindBuffer:
		o.buf.unref()
	case KindBufferField:
		o.field.backing.unref()
	case KindBufferIndex:
		o.index.backing.unref()
	case KindPackage:
		o.pkg.refs--
		if o.pkg.refs == 0 {
			for _, e := range o.pkg.elems {
				e.Unref()
			}
		}
	case KindReference:
		o.ref.Inner.Unref()
		if o.ref.PkgOwner != nil {
			o.ref.PkgOwner.Unref()
		}
	}
}

// Clone returns a deep copy of o: a fresh Object with its own payload,
// independent of o's refcount. Used by CopyObject and by the implicit-cast
// overwrite path (store.go) which always replaces a destination's storage
// rather than aliasing it.
func (o *Object) Clone() *Object {
	switch o.kind {
	case KindUninitialized:
		return NewUninitialized()
	case KindInteger:
		return NewInteger(o.asU64)
	case KindDebug:
		return NewDebug()
	case KindString:
		data := make([]byte, len(o.str.bytes))
		copy(data, o.str.bytes)
		return NewString(data)
	case KindBuffer:
		data := make([]byte, len(o.buf.bytes))
		copy(data, o.buf.bytes)
		return NewBuffer(data)
	case KindPackage:
		cp := NewPackage(len(o.pkg.elems))
		for i, e := range o.pkg.elems {
			cp.pkg.elems[i].Unref()
			cp.pkg.elems[i] = e.Clone()
		}
		return cp
	case KindReference:
		if o.ref.Kind == RefKindPkgIndex {
			return NewPkgIndexReference(o.ref.PkgOwner.Ref(), o.ref.PkgSlot)
		}
		return NewReference(o.ref.Kind, o.ref.Inner.Ref())
	case KindBufferField:
		data := make([]byte, len(o.field.backing.bytes))
		copy(data, o.field.backing.bytes)
		backing := NewBuffer(data)
		cp := NewBufferField(backing, o.field.bitIndex, o.field.bitLength, o.field.forceBuffer)
		backing.Unref()
		return cp
	case KindBufferIndex:
		data := make([]byte, len(o.index.backing.bytes))
		copy(data, o.index.backing.bytes)
		backing := NewBuffer(data)
		cp := NewBufferIndex(backing, o.index.idx)
		backing.Unref()
		return cp
	case KindOperationRegion:
		return NewOperationRegion(o.region.space, o.region.offset, o.region.length)
	case KindFieldUnit:
		fu := o.fieldUnit
		return NewFieldUnit(fu.regionPath, fu.dataPath, fu.bitOffset, fu.bitWidth, fu.accessType, fu.updateRule, fu.lock)
	case KindMethod:
		return NewMethod(o.method.code, o.method.argCount, o.method.serialized, o.method.syncLevel, o.method.namedObjectsPersist)
	case KindMutex:
		return NewMutex(o.mutex.syncLevel)
	case KindEvent:
		return NewEvent()
	case KindProcessor:
		return NewProcessor(o.processor.id, o.processor.blockAddress, o.processor.blockLength)
	case KindPowerResource:
		return NewPowerResource(o.powerRes.systemLevel, o.powerRes.resourceOrder)
	case KindDevice:
		return NewDevice()
	case KindThermalZone:
		return NewThermalZone()
	default:
		return NewUninitialized()
	}
}

// Int64 returns the Integer payload. Callers must check Kind() first.
func (o *Object) Int64() uint64 { return o.asU64 }

// SetInt64 overwrites the Integer payload in place (used by Increment/
// Decrement and by the implicit-cast overwrite path).
func (o *Object) SetInt64(v uint64) { o.asU64 = v }

// Bytes returns the underlying byte slice for String/Buffer objects.
func (o *Object) Bytes() []byte {
	switch o.kind {
	case KindString:
		return o.str.bytes
	case KindBuffer:
		return o.buf.bytes
	default:
		return nil
	}
}

// PackageElems returns the live slot slice for a Package object.
func (o *Object) PackageElems() []*Object { return o.pkg.elems }

// SetPackageElem replaces slot i, releasing the previous occupant.
func (o *Object) SetPackageElem(i int, v *Object) {
	o.pkg.elems[i].Unref()
	o.pkg.elems[i] = v
}

// Reference returns the Reference payload. Callers must check Kind() first.
func (o *Object) Reference() *Reference { return o.ref }

// BufferField returns the BufferField payload.
func (o *Object) BufferField() (backing []byte, bitIndex, bitLength uint32, forceBuffer bool) {
	return o.field.backing.bytes, o.field.bitIndex, o.field.bitLength, o.field.forceBuffer
}

// BufferIndex returns the BufferIndex payload.
func (o *Object) BufferIndex() (backing []byte, idx uint32) {
	return o.index.backing.bytes, o.index.idx
}

// Region returns the OperationRegion payload.
func (o *Object) Region() (space RegionSpace, offset, length uint64) {
	return o.region.space, o.region.offset, o.region.length
}

// FieldUnit returns the FieldUnit payload.
func (o *Object) FieldUnit() (regionPath, dataPath string, bitOffset, bitWidth uint64, access FieldAccessType, update FieldUpdateRule, lock bool) {
	fu := o.fieldUnit
	return fu.regionPath, fu.dataPath, fu.bitOffset, fu.bitWidth, fu.accessType, fu.updateRule, fu.lock
}

// Method returns the Method payload.
func (o *Object) Method() (code []byte, argCount uint8, serialized bool, syncLevel uint8, namedObjectsPersist bool) {
	m := o.method
	return m.code, m.argCount, m.serialized, m.syncLevel, m.namedObjectsPersist
}
