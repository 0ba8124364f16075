package polar

import "math"

// Decode runs rate-matching recovery followed by successive-cancellation
// decoding, returning the K information bits (CRC still attached, for
// the caller to verify).
func (c *Code) Decode(llr []float32) ([]byte, error) {
	if len(llr) != c.E {
		return nil, errInvalid("llr length does not match E")
	}
	puncture := float64(c.K)/float64(c.E) <= 7.0/16.0
	recovered := rateRecoverLLR(llr, c.N, puncture)
	deinterleaved := subblockDeinterleave32(recovered)
	u := transform(scDecode(deinterleaved, c.frozen))

	out := make([]byte, c.K)
	for i, pos := range c.infoPos {
		out[i] = u[pos]
	}
	return out, nil
}

// subblockDeinterleave32 undoes the sub-block interleaving on a
// float32 LLR vector, mirroring subblockDeinterleave's bit-vector
// logic.
func subblockDeinterleave32(y []float32) []float32 {
	N := len(y)
	if N < 32 {
		out := make([]float32, N)
		copy(out, y)
		return out
	}
	blockLen := N / 32
	out := make([]float32, N)
	for j := 0; j < 32; j++ {
		dst := subblockPermutation[j]
		copy(out[dst*blockLen:(dst+1)*blockLen], y[j*blockLen:(j+1)*blockLen])
	}
	return out
}

func fCombine(a, b float32) float32 {
	sign := float32(1)
	if (a < 0) != (b < 0) {
		sign = -1
	}
	absA, absB := float32(math.Abs(float64(a))), float32(math.Abs(float64(b)))
	m := absA
	if absB < m {
		m = absB
	}
	return sign * m
}

func gCombine(a, b float32, v byte) float32 {
	if v == 1 {
		return b - a
	}
	return b + a
}

// scDecode recursively decodes a length-N LLR vector, per frozen (frozen
// positions of u are forced to 0), and returns the re-encoded codeword
// estimate x = transform(u), which the recursion needs as partial sums;
// callers recover u by applying transform once more.
func scDecode(llr []float32, frozen []bool) []byte {
	n := len(llr)
	if n == 1 {
		if frozen[0] {
			return []byte{0}
		}
		if llr[0] < 0 {
			return []byte{1}
		}
		return []byte{0}
	}
	half := n / 2
	l1, l2 := llr[:half], llr[half:]
	f1, f2 := frozen[:half], frozen[half:]

	lv := make([]float32, half)
	for i := range lv {
		lv[i] = fCombine(l1[i], l2[i])
	}
	vHat := scDecode(lv, f1)

	lu2 := make([]float32, half)
	for i := range lu2 {
		lu2[i] = gCombine(l1[i], l2[i], vHat[i])
	}
	u2Hat := scDecode(lu2, f2)

	u1Hat := make([]byte, half)
	for i := range u1Hat {
		u1Hat[i] = vHat[i] ^ u2Hat[i]
	}
	out := make([]byte, n)
	copy(out, u1Hat)
	copy(out[half:], u2Hat)
	return out
}
