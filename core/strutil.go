package core

// Itoa converts an integer to a string without using fmt
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	u := uint64(n)
	if negative {
		u = uint64(-n)
	}

	var buf [21]byte
	pos := len(buf)
	for u > 0 {
		pos--
		buf[pos] = byte('0' + u%10)
		u /= 10
	}
	if negative {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// FormatTenths renders a tenths-of-a-degree value as "-15.0"
func FormatTenths(t int32) string {
	sign := ""
	v := int(t)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + Itoa(v/10) + "." + Itoa(v%10)
}
