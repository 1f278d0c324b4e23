package conv

// Utoa formats n in decimal into the tail of buf and returns the used
// slice. No allocation, so it is safe on the firmware output paths. 20
// bytes of buf covers any uint64; a too-short buf truncates high digits.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}
