package fmtx

import "rtcnode-go/x/conv"

// appendf is the small formatter behind the MCU build. Supported verbs are
// %s %q %v %d %x %X %t and %%, each with an optional width; a leading 0 in
// the width zero-pads numbers. Values may be strings, byte slices, bools,
// integers, errors or Stringers. Anything else prints as <?>.
func appendf(dst []byte, format string, args ...any) []byte {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			dst = append(dst, c)
			continue
		}
		i++
		if i >= len(format) {
			return append(dst, '%')
		}
		if format[i] == '%' {
			dst = append(dst, '%')
			continue
		}
		zero := false
		if format[i] == '0' {
			zero = true
			i++
		}
		width := 0
		for i < len(format) && '0' <= format[i] && format[i] <= '9' {
			width = width*10 + int(format[i]-'0')
			i++
		}
		if i >= len(format) {
			return dst
		}
		verb := format[i]
		if ai >= len(args) {
			dst = append(dst, "%!"...)
			dst = append(dst, verb)
			continue
		}
		arg := args[ai]
		ai++

		var tmp [24]byte
		body, numeric := formatArg(tmp[:0], arg, verb)
		dst = pad(dst, body, width, zero && numeric)
	}
	return dst
}

func formatArg(dst []byte, arg any, verb byte) ([]byte, bool) {
	if u, neg, ok := integer(arg); ok {
		switch verb {
		case 'd', 'v':
			if neg {
				dst = append(dst, '-')
			}
			var buf [20]byte
			return append(dst, conv.Utoa(buf[:], u)...), true
		case 'x', 'X':
			var buf [16]byte
			h := conv.Hex(buf[:], u, hexDigits(u))
			if verb == 'X' {
				for j, b := range h {
					if 'a' <= b && b <= 'f' {
						h[j] = b - ('a' - 'A')
					}
				}
			}
			return append(dst, h...), true
		}
	}
	var s string
	switch x := arg.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case bool:
		s = "false"
		if x {
			s = "true"
		}
	case error:
		s = x.Error()
	case interface{ String() string }:
		s = x.String()
	default:
		s = "<?>"
	}
	if verb == 'q' {
		return appendQuoted(dst, s), false
	}
	return append(dst, s...), false
}

func integer(v any) (u uint64, neg bool, ok bool) {
	var i int64
	switch x := v.(type) {
	case int:
		i = int64(x)
	case int8:
		i = int64(x)
	case int16:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case uint:
		return uint64(x), false, true
	case uint8:
		return uint64(x), false, true
	case uint16:
		return uint64(x), false, true
	case uint32:
		return uint64(x), false, true
	case uint64:
		return x, false, true
	default:
		return 0, false, false
	}
	if i < 0 {
		return uint64(-i), true, true
	}
	return uint64(i), false, true
}

func hexDigits(u uint64) int {
	n := 1
	for u >>= 4; u != 0; u >>= 4 {
		n++
	}
	return n
}

func pad(dst, body []byte, width int, zero bool) []byte {
	n := width - len(body)
	if n <= 0 {
		return append(dst, body...)
	}
	if zero {
		if len(body) > 0 && body[0] == '-' {
			dst = append(dst, '-')
			body = body[1:]
		}
		for ; n > 0; n-- {
			dst = append(dst, '0')
		}
		return append(dst, body...)
	}
	for ; n > 0; n-- {
		dst = append(dst, ' ')
	}
	return append(dst, body...)
}

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
