package polar

// subblockPermutation is the 38.212 Table 5.4.1.1-1 32-way interleaver
// pattern applied to each of the 32 equal sub-blocks of a mother
// codeword before bit selection.
var subblockPermutation = [32]int{
	0, 1, 2, 4, 3, 5, 6, 7, 8, 16, 9, 17, 10, 18, 11, 19,
	12, 20, 13, 21, 14, 22, 15, 23, 24, 25, 26, 28, 27, 29, 30, 31,
}

// subblockInterleave reorders a length-N codeword in 32 sub-blocks of
// N/32 bits each, permuting sub-block order per subblockPermutation.
// For N < 32 (mother codes smaller than 32 bits) it is the identity.
func subblockInterleave(d []byte) []byte {
	N := len(d)
	if N < 32 {
		out := make([]byte, N)
		copy(out, d)
		return out
	}
	blockLen := N / 32
	out := make([]byte, N)
	for j := 0; j < 32; j++ {
		src := subblockPermutation[j]
		copy(out[j*blockLen:(j+1)*blockLen], d[src*blockLen:(src+1)*blockLen])
	}
	return out
}

// subblockDeinterleave is the inverse permutation, mapping interleaved
// position back to natural sub-block order.
func subblockDeinterleave(y []byte) []byte {
	N := len(y)
	if N < 32 {
		out := make([]byte, N)
		copy(out, y)
		return out
	}
	blockLen := N / 32
	out := make([]byte, N)
	for j := 0; j < 32; j++ {
		dst := subblockPermutation[j]
		copy(out[dst*blockLen:(dst+1)*blockLen], y[j*blockLen:(j+1)*blockLen])
	}
	return out
}

// rateMatch selects E bits out of the N-bit interleaved codeword y,
// puncturing/shortening the front when E<N, or repeating additively
// when E>=N (38.212 5.4.1.2).
func rateMatch(y []byte, E int) []byte {
	N := len(y)
	out := make([]byte, E)
	if E < N {
		for k := 0; k < E; k++ {
			out[k] = y[(N-E+k)%N]
		}
		return out
	}
	for k := 0; k < E; k++ {
		out[k] = y[k%N]
	}
	return out
}

// rateRecoverLLR undoes rate matching at the LLR level: repeated
// positions (E>=N) have their LLRs summed; punctured positions (E<N)
// are filled with zero (unknown) LLR, and shortened positions are
// filled with +inf-equivalent large LLR (known to be zero).
func rateRecoverLLR(llr []float32, N int, puncture bool) []float32 {
	E := len(llr)
	out := make([]float32, N)
	if E >= N {
		for k := 0; k < E; k++ {
			out[k%N] += llr[k]
		}
		return out
	}
	const largeLLR = 1e6
	if !puncture {
		for i := range out {
			out[i] = largeLLR
		}
	}
	for k := 0; k < E; k++ {
		out[(N-E+k)%N] = llr[k]
	}
	return out
}
