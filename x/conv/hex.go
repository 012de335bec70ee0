package conv

// Hex writes n as exactly digits lower-case hex digits, zero-padded, without
// a 0x prefix. Higher digits are truncated. buf must hold digits bytes.
func Hex(buf []byte, n uint64, digits int) []byte {
	if digits <= 0 || len(buf) < digits {
		return buf[:0]
	}
	const hexd = "0123456789abcdef"
	i := digits
	for i > 0 {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[:digits]
}

// HexByte returns "0x" followed by two hex digits.
func HexByte(b byte) string {
	var buf [4]byte
	buf[0], buf[1] = '0', 'x'
	Hex(buf[2:], uint64(b), 2)
	return string(buf[:])
}
