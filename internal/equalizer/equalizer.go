// Package equalizer applies single-tap MMSE channel equalization to
// received resource elements given a channel estimate, and tracks error
// vector magnitude for link-quality reporting.
package equalizer

import "math"

// Equalise combines each received symbol against its channel estimate
// with a one-tap MMSE-like division,
// symbols[i] = conj(ce[i])*symbols[i] / (|ce[i]|^2 + noise_var), and
// returns the equalized symbols plus the residual noise variance
// scaled onto the equalized constellation.
func Equalise(rx []complex64, ce []complex64, noiseVar float32) ([]complex64, float32) {
	n := len(rx)
	out := make([]complex64, n)
	var effNoiseAccum float32
	for i := 0; i < n; i++ {
		h := ce[i]
		mag2 := real(h)*real(h) + imag(h)*imag(h)
		denom := mag2 + noiseVar
		if denom < 1e-8 {
			out[i] = 0
			continue
		}
		conjH := complex(real(h), -imag(h))
		out[i] = conjH * rx[i] / complex(denom, 0)
		effNoiseAccum += noiseVar * mag2 / (denom * denom)
	}
	if n > 0 {
		effNoiseAccum /= float32(n)
	}
	return out, effNoiseAccum
}

// EVM computes the RMS error vector magnitude between equalized symbols
// and their nearest ideal unit-energy QPSK constellation point.
func EVM(equalized []complex64) float32 {
	if len(equalized) == 0 {
		return 0
	}
	const invSqrt2 = 0.7071067811865476
	var sumSq float64
	for _, s := range equalized {
		re, im := real(s), imag(s)
		idealRe, idealIm := invSqrt2, invSqrt2
		if re < 0 {
			idealRe = -invSqrt2
		}
		if im < 0 {
			idealIm = -invSqrt2
		}
		dRe := float64(re) - idealRe
		dIm := float64(im) - idealIm
		sumSq += dRe*dRe + dIm*dIm
	}
	mean := sumSq / float64(len(equalized))
	return float32(math.Sqrt(mean))
}
