package conv

// U32Hex formats n as eight uppercase hex digits, zero-padded, no prefix.
// The console prints timestamp words this way. buf needs room for 8 bytes;
// a shorter buf yields an empty slice.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	const hexd = "0123456789ABCDEF"
	i := len(buf)
	for j := 0; j < 8; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}
