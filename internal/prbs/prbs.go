// Package prbs implements the 38.211 5.2.1 length-31 Gold sequence used
// throughout the physical layer for scrambling.
package prbs

// Sequence generates n bits of the 38.211 5.2.1 pseudo-random sequence
// seeded by cInit, starting at the beginning of the sequence (no extra
// offset beyond the standard's own Nc=1600 warm-up).
func Sequence(cInit uint32, n int) []byte {
	const nc = 1600
	const lenX = 31

	x1 := make([]byte, 0, nc+n+lenX)
	x2 := make([]byte, 0, nc+n+lenX)

	// x1 is a fixed m-sequence seeded as all-zero state but x1(0)=1.
	x1 = append(x1, 1)
	for i := 1; i < lenX; i++ {
		x1 = append(x1, 0)
	}
	for i := 0; i < lenX; i++ {
		x2 = append(x2, byte((cInit>>uint(i))&1))
	}

	grow := func(x []byte, taps [2]int) []byte {
		i := len(x)
		return append(x, x[i-taps[0]]^x[i-taps[1]])
	}
	grow4 := func(x []byte) []byte {
		i := len(x)
		return append(x, x[i-31]^x[i-30]^x[i-29]^x[i-28])
	}

	total := nc + n
	for len(x1) < total+lenX {
		x1 = grow(x1, [2]int{31, 28})
	}
	for len(x2) < total+lenX {
		x2 = grow4(x2)
	}

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = x1[nc+i] ^ x2[nc+i]
	}
	return out
}

// ApplyXORBits scrambles (or descrambles) in out[i] = in[i] XOR seq[i],
// over unpacked 0/1 bits.
func ApplyXORBits(in []byte, cInit uint32) []byte {
	seq := Sequence(cInit, len(in))
	out := make([]byte, len(in))
	for i := range in {
		out[i] = in[i] ^ seq[i]
	}
	return out
}

// ApplySignFlipLLR flips the sign of each soft LLR where the scrambling
// sequence bit is 1, leaving it unchanged where it is 0 — the standard
// way to descramble soft values without ever hard-deciding them first.
func ApplySignFlipLLR(llr []float32, cInit uint32) []float32 {
	seq := Sequence(cInit, len(llr))
	out := make([]float32, len(llr))
	for i := range llr {
		if seq[i] == 1 {
			out[i] = -llr[i]
		} else {
			out[i] = llr[i]
		}
	}
	return out
}
