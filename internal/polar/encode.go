package polar

// Encode maps K information bits (CRC already attached by the caller)
// onto the code's information positions, runs the Arikan polar
// transform, and rate-matches the result to E output bits.
func (c *Code) Encode(info []byte) ([]byte, error) {
	if len(info) != c.K {
		return nil, errInvalid("info length does not match K")
	}
	u := make([]byte, c.N)
	for i, pos := range c.infoPos {
		u[pos] = info[i]
	}
	d := transform(u)
	y := subblockInterleave(d)
	return rateMatch(y, c.E), nil
}

// transform applies the recursive Arikan polar transform: for a
// length-N vector u, split into two halves (v=u1 XOR u2, u2), transform
// each half, and concatenate.
func transform(u []byte) []byte {
	n := len(u)
	if n == 1 {
		return []byte{u[0]}
	}
	half := n / 2
	v := make([]byte, half)
	for i := 0; i < half; i++ {
		v[i] = u[i] ^ u[half+i]
	}
	left := transform(v)
	right := transform(u[half:])
	out := make([]byte, n)
	copy(out, left)
	copy(out[half:], right)
	return out
}
