package aml

// fieldaccess.go implements the lazy region-backed read/write path for
// FieldUnit objects (SPEC_FULL.md §3 "FieldUnit resolution", §4.5 "Field/
// IndexField/BankField access"). Field/IndexField/BankField elements only
// record their region path and bit span at declaration time
// (handlers_object.go's parseFieldElements); actual I/O against the
// OperationRegion happens here, through Services.RegionRead/RegionWrite,
// the first time something reads or writes the name. Grounded on the
// teacher's acpi_region_handler dispatch, the closest analog in the pack to
// a region-backed field access boundary.

var errFieldRegionNotFound = newError(StatusNotFound, "FieldUnit: backing region name no longer resolves")

// dereferenceValue converts a BufferField/BufferIndex/FieldUnit "slot"
// object into the value it currently holds (an Integer or Buffer), reading
// through its backing store; every other Kind passes through with an extra
// ref for the caller (spec.md §4.7 "accessing a BufferField/FieldUnit reads
// through its backing store").
func dereferenceValue(m *Machine, o *Object) (*Object, *Error) {
	switch o.Kind() {
	case KindBufferField:
		return bufferFieldRead(o), nil
	case KindBufferIndex:
		return bufferIndexRead(o), nil
	case KindFieldUnit:
		return readFieldUnit(m, o)
	default:
		return o.Ref(), nil
	}
}

func isFieldLike(k Kind) bool {
	return k == KindBufferField || k == KindBufferIndex || k == KindFieldUnit
}

func accessUnitWidth(access FieldAccessType) uint8 {
	switch access {
	case FieldAccessTypeByte:
		return 1
	case FieldAccessTypeWord:
		return 2
	case FieldAccessTypeDword:
		return 4
	case FieldAccessTypeQword:
		return 8
	default:
		return 1
	}
}

func splitDottedPath(path string) []string {
	if len(path) > 0 && path[0] == '\\' {
		path = path[1:]
	}
	var segs []string
	for i := 0; i+amlNameLen <= len(path); i += amlNameLen {
		segs = append(segs, path[i:i+amlNameLen])
	}
	return segs
}

func resolveFieldRegion(m *Machine, path string) (*Object, *Error) {
	node := FindRelative(m.ns.Root(), splitDottedPath(path))
	if node == nil || node.Object() == nil || node.Object().Kind() != KindOperationRegion {
		return nil, errFieldRegionNotFound
	}
	return node.Object(), nil
}

// readSpan reads n bytes of region starting at byteOffset, one access-unit
// RegionRead at a time.
func readSpan(m *Machine, region *Object, byteOffset uint32, n uint32, unit uint8) ([]byte, *Error) {
	space, regionOffset, _ := region.Region()
	out := make([]byte, n)
	for i := uint32(0); i < n; i += uint32(unit) {
		v, err := m.services.RegionRead(space, regionOffset+uint64(byteOffset)+uint64(i), unit)
		if err != nil {
			return nil, err
		}
		for b := uint8(0); b < unit && i+uint32(b) < n; b++ {
			out[i+uint32(b)] = byte(v >> (8 * b))
		}
	}
	return out, nil
}

func writeSpan(m *Machine, region *Object, byteOffset uint32, data []byte, unit uint8) *Error {
	space, regionOffset, _ := region.Region()
	for i := uint32(0); i < uint32(len(data)); i += uint32(unit) {
		var v uint64
		for b := uint8(0); b < unit && i+uint32(b) < uint32(len(data)); b++ {
			v |= uint64(data[i+uint32(b)]) << (8 * b)
		}
		if err := m.services.RegionWrite(space, regionOffset+uint64(byteOffset)+uint64(i), unit, v); err != nil {
			return err
		}
	}
	return nil
}

// readFieldUnit performs the region read a FieldUnit access resolves to,
// producing an Integer when the span is at most 64 bits and a Buffer
// otherwise (mirroring bufferFieldRead's BufferField convention, including
// its fixed 64-bit limit that ignores the machine's integer width).
func readFieldUnit(m *Machine, fu *Object) (*Object, *Error) {
	regionPath, dataPath, bitOffset, bitWidth, access, _, _ := fu.FieldUnit()
	unit := accessUnitWidth(access)

	byteOffset := uint32(bitOffset / 8)
	bitInByte := uint32(bitOffset % 8)
	n := (bitInByte + uint32(bitWidth) + 7) / 8

	var span []byte
	var err *Error
	if dataPath != "" {
		span, err = indexFieldAccess(m, regionPath, dataPath, byteOffset, n, unit, nil)
	} else {
		region, rerr := resolveFieldRegion(m, regionPath)
		if rerr != nil {
			return nil, rerr
		}
		span, err = readSpan(m, region, byteOffset, n, unit)
	}
	if err != nil {
		return nil, err
	}

	bits := readBitSpan(span, bitInByte, uint32(bitWidth))
	if bitWidth <= 64 {
		var v uint64
		for i, b := range bits {
			v |= uint64(b) << (8 * uint(i))
		}
		return NewInteger(v), nil
	}
	return NewBuffer(bits), nil
}

// writeFieldUnit stores source into fu's region-backed bit span, converting
// source to bytes first (read-modify-write across the covering access-unit
// span). Consumes one ref on source.
func writeFieldUnit(m *Machine, fu *Object, source *Object) *Error {
	defer source.Unref()
	regionPath, dataPath, bitOffset, bitWidth, access, _, _ := fu.FieldUnit()
	unit := accessUnitWidth(access)

	byteOffset := uint32(bitOffset / 8)
	bitInByte := uint32(bitOffset % 8)
	n := (bitInByte + uint32(bitWidth) + 7) / 8

	var region *Object
	var err *Error
	if dataPath == "" {
		region, err = resolveFieldRegion(m, regionPath)
		if err != nil {
			return err
		}
	}

	var span []byte
	if dataPath != "" {
		span, err = indexFieldAccess(m, regionPath, dataPath, byteOffset, n, unit, nil)
	} else {
		span, err = readSpan(m, region, byteOffset, n, unit)
	}
	if err != nil {
		return err
	}

	var src []byte
	switch source.Kind() {
	case KindInteger:
		src = make([]byte, n)
		v := source.Int64()
		for i := uint32(0); i < n; i++ {
			src[i] = byte(v >> (8 * i))
		}
	case KindBuffer, KindString:
		b, cerr := toBufferValue(m, source)
		if cerr != nil {
			return cerr
		}
		src = b
	default:
		return errConvertUnsupported
	}
	if uint32(len(src)) < n {
		padded := make([]byte, n)
		copy(padded, src)
		src = padded
	}

	writeBitSpan(span, bitInByte, uint32(bitWidth), src)

	if dataPath != "" {
		_, err = indexFieldAccess(m, regionPath, dataPath, byteOffset, n, unit, span)
		return err
	}
	return writeSpan(m, region, byteOffset, span, unit)
}

// indexFieldAccess implements IndexField/BankField's indirection (ACPI spec
// §19.6.62): the index register (indexPath) selects which access-unit of the
// data register (dataPath) is visible, one unit at a time. write is nil for
// a read (the data read back is returned); non-nil for a write (the return
// slice is unused).
func indexFieldAccess(m *Machine, indexPath, dataPath string, byteOffset, n uint32, unit uint8, write []byte) ([]byte, *Error) {
	indexRegion, err := resolveFieldRegion(m, indexPath)
	if err != nil {
		return nil, err
	}
	dataRegion, err := resolveFieldRegion(m, dataPath)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	for i := uint32(0); i < n; i += uint32(unit) {
		idx := (byteOffset + i) / uint32(unit)
		if err := writeSpan(m, indexRegion, 0, leUint(idx, unit), unit); err != nil {
			return nil, err
		}
		if write != nil {
			end := i + uint32(unit)
			if end > uint32(len(write)) {
				end = uint32(len(write))
			}
			if err := writeSpan(m, dataRegion, 0, write[i:end], unit); err != nil {
				return nil, err
			}
			continue
		}
		chunk, err := readSpan(m, dataRegion, 0, uint32(unit), unit)
		if err != nil {
			return nil, err
		}
		copy(out[i:], chunk)
	}
	return out, nil
}

func leUint(v uint32, width uint8) []byte {
	out := make([]byte, width)
	for i := uint8(0); i < width; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}
