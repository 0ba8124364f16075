// Package qpsk implements Gray-coded QPSK modulation and soft
// demodulation, per 38.211 5.1.3.
package qpsk

import "math"

const invSqrt2 = float32(math.Sqrt2 / 2)

// Modulate maps pairs of bits (b0,b1) onto unit-energy QPSK symbols:
// I = (1-2*b0)/sqrt(2), Q = (1-2*b1)/sqrt(2).
func Modulate(bits []byte) []complex64 {
	n := len(bits) / 2
	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		b0, b1 := bits[2*i], bits[2*i+1]
		re := invSqrt2
		if b0 == 1 {
			re = -invSqrt2
		}
		im := invSqrt2
		if b1 == 1 {
			im = -invSqrt2
		}
		out[i] = complex(re, im)
	}
	return out
}

// DemodulateSoft produces two float32 LLRs per symbol (real/imag branch),
// using the max-log approximation for a Gray-coded QPSK constellation:
// for an AWGN channel with unit-energy symbols this reduces to a scaled
// projection onto each axis. Every symbol uses the same scale,
// sqrt(2)/noiseVar; no per-symbol channel gain enters it.
func DemodulateSoft(symbols []complex64, noiseVar float32) []float32 {
	if noiseVar <= 0 {
		noiseVar = 1e-6
	}
	scale := 2 * invSqrt2 / noiseVar
	out := make([]float32, len(symbols)*2)
	for i, s := range symbols {
		out[2*i] = scale * real(s)
		out[2*i+1] = scale * imag(s)
	}
	return out
}
