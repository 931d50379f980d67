package aml

import "fmt"

// convert.go implements the ACPI implicit/explicit conversion family: the
// ToInteger/ToBuffer/ToHexString/ToDecimalString/ToString opcodes and the
// helpers assignWithImplicitCast (store.go) uses for Store's implicit casts.
// Grounded on the teacher's vm_convert.go, generalized beyond its Integer/
// String-only coverage to the full Object model.

var (
	errConvertUnsupported = newError(StatusInvalidArgument, "conversion: source kind has no conversion to the requested kind")
	errDivideByZero       = newError(StatusInvalidArgument, "arithmetic: division by zero")
)

// toIntegerValue converts source to an Integer per spec.md §4.5 "ToInteger"
// and the reference-OS quirk noted in SPEC_FULL.md/spec.md §9: a Buffer
// source is always read as exactly 8 little-endian bytes (zero-padded),
// regardless of the machine's configured integer width.
func toIntegerValue(m *Machine, source *Object) (uint64, *Error) {
	switch source.Kind() {
	case KindInteger:
		return source.Int64(), nil
	case KindString:
		return parseIntegerString(source.Bytes())
	case KindBuffer:
		data := source.Bytes()
		var v uint64
		for i := 0; i < 8 && i < len(data); i++ {
			v |= uint64(data[i]) << (8 * uint(i))
		}
		return v, nil
	default:
		return 0, errConvertUnsupported
	}
}

// parseIntegerString parses a String payload as ACPI's ToInteger does: an
// optional "0x"/"0X" prefix selects hex, otherwise decimal; parsing stops at
// the first non-digit character rather than failing (ACPI spec table 19-6).
func parseIntegerString(data []byte) (uint64, *Error) {
	s := data
	for len(s) > 0 && (s[len(s)-1] == 0) {
		s = s[:len(s)-1]
	}
	i := 0
	hex := false
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		hex = true
		i = 2
	}
	var v uint64
	for ; i < len(s); i++ {
		c := s[i]
		var digit uint64
		switch {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case hex && c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case hex && c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			return v, nil
		}
		if hex {
			v = v<<4 | digit
		} else {
			v = v*10 + digit
		}
	}
	return v, nil
}

// toBufferValue converts source to a Buffer's raw bytes (spec.md §4.5
// "ToBuffer").
func toBufferValue(m *Machine, source *Object) ([]byte, *Error) {
	switch source.Kind() {
	case KindBuffer:
		out := make([]byte, len(source.Bytes()))
		copy(out, source.Bytes())
		return out, nil
	case KindString:
		// Includes the trailing NUL, matching the String payload convention.
		out := make([]byte, len(source.Bytes()))
		copy(out, source.Bytes())
		return out, nil
	case KindInteger:
		n := m.sizeOfInt()
		out := make([]byte, n)
		v := source.Int64()
		for i := 0; i < n; i++ {
			out[i] = byte(v >> (8 * uint(i)))
		}
		return out, nil
	default:
		return nil, errConvertUnsupported
	}
}

// toStringValue converts source to a String's raw bytes, trailing NUL
// included (spec.md §4.5 "ToString"/"ToHexString"/"ToDecimalString").
func toStringValue(m *Machine, source *Object) ([]byte, *Error) {
	switch source.Kind() {
	case KindString:
		out := make([]byte, len(source.Bytes()))
		copy(out, source.Bytes())
		return out, nil
	case KindInteger:
		return append([]byte(fmt.Sprintf("%d", source.Int64())), 0), nil
	case KindBuffer:
		// ToString on a Buffer stops at the first NUL or the buffer's end,
		// whichever comes first (ACPI spec table 19-6).
		data := source.Bytes()
		end := len(data)
		for i, b := range data {
			if b == 0 {
				end = i
				break
			}
		}
		out := make([]byte, end+1)
		copy(out, data[:end])
		return out, nil
	default:
		return nil, errConvertUnsupported
	}
}

// toHexStringValue renders source (Integer or Buffer) as a comma-separated
// hex string (spec.md §4.5 "ToHexString").
func toHexStringValue(source *Object) ([]byte, *Error) {
	switch source.Kind() {
	case KindInteger:
		return append([]byte(fmt.Sprintf("0x%X", source.Int64())), 0), nil
	case KindBuffer:
		var out []byte
		for i, b := range source.Bytes() {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, []byte(fmt.Sprintf("0x%02X", b))...)
		}
		return append(out, 0), nil
	case KindString:
		out := make([]byte, len(source.Bytes()))
		copy(out, source.Bytes())
		return out, nil
	default:
		return nil, errConvertUnsupported
	}
}

// toDecimalStringValue renders source (Integer or Buffer) as a comma-
// separated decimal string (spec.md §4.5 "ToDecimalString").
func toDecimalStringValue(source *Object) ([]byte, *Error) {
	switch source.Kind() {
	case KindInteger:
		return append([]byte(fmt.Sprintf("%d", source.Int64())), 0), nil
	case KindBuffer:
		var out []byte
		for i, b := range source.Bytes() {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, []byte(fmt.Sprintf("%d", b))...)
		}
		return append(out, 0), nil
	case KindString:
		out := make([]byte, len(source.Bytes()))
		copy(out, source.Bytes())
		return out, nil
	default:
		return nil, errConvertUnsupported
	}
}

// concatenate implements the Concat opcode (spec.md §4.5). A String first
// operand yields a String: String+String concatenates text (re-joining at
// the single trailing NUL) and String+Integer appends the Integer's hex
// string (toHexStringValue); a String followed by any other kind, Buffer
// included, is rejected as a reference-OS compatibility gap. An Integer or
// Buffer first operand yields a Buffer of both operands' bytes: Integer
// operands are widened to the machine's integer width and a String second
// operand contributes its bytes including the trailing NUL.
func concatenate(m *Machine, a, b *Object) (*Object, *Error) {
	if a.Kind() == KindString && b.Kind() == KindString {
		out := make([]byte, 0, len(a.Bytes())+len(b.Bytes()))
		out = append(out, trimNUL(a.Bytes())...)
		out = append(out, trimNUL(b.Bytes())...)
		out = append(out, 0)
		return NewString(out), nil
	}
	if a.Kind() == KindString && b.Kind() == KindInteger {
		hex, err := toHexStringValue(b)
		if err != nil {
			return nil, err
		}
		out := append(append([]byte{}, trimNUL(a.Bytes())...), trimNUL(hex)...)
		return NewString(append(out, 0)), nil
	}
	if a.Kind() == KindString {
		return nil, errConvertUnsupported
	}

	ab, err := toBufferValue(m, a)
	if err != nil {
		return nil, err
	}
	bb, err := toBufferValue(m, b)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(ab)+len(bb))
	out = append(out, ab...)
	out = append(out, bb...)
	return NewBuffer(out), nil
}

func trimNUL(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == 0 {
		return b[:len(b)-1]
	}
	return b
}

// mid implements the Mid opcode (spec.md §4.5): a substring/subbuffer of
// source starting at index for length bytes, clamped to source's bounds.
func mid(source *Object, index, length uint64) (*Object, *Error) {
	switch source.Kind() {
	case KindString:
		data := trimNUL(source.Bytes())
		lo, hi := clampRange(index, length, uint64(len(data)))
		out := append(append([]byte{}, data[lo:hi]...), 0)
		return NewString(out), nil
	case KindBuffer:
		data := source.Bytes()
		lo, hi := clampRange(index, length, uint64(len(data)))
		out := append([]byte{}, data[lo:hi]...)
		return NewBuffer(out), nil
	default:
		return nil, errConvertUnsupported
	}
}

func clampRange(index, length, total uint64) (lo, hi uint64) {
	if index >= total {
		return total, total
	}
	lo = index
	hi = index + length
	if hi > total {
		hi = total
	}
	return lo, hi
}
