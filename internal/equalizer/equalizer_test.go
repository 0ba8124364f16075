package equalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualiseUnitChannelScalesByDenominator(t *testing.T) {
	rx := []complex64{complex(1, 0), complex(0, 1), complex(-1, 0)}
	ce := []complex64{complex(1, 0), complex(1, 0), complex(1, 0)}

	// h=1, noiseVar=0.05: denom = |h|^2+noiseVar = 1.05, conj(h)=1, so
	// eq[i] = rx[i]/1.05.
	eq, noiseVar := Equalise(rx, ce, 0.05)
	for i, v := range rx {
		require.InDelta(t, real(v)/1.05, real(eq[i]), 1e-6)
		require.InDelta(t, imag(v)/1.05, imag(eq[i]), 1e-6)
	}
	// effective noise variance = noiseVar*|h|^2/denom^2 for every sample.
	require.InDelta(t, 0.05*1/(1.05*1.05), noiseVar, 1e-6)
}

func TestEqualiseScalesByChannelGain(t *testing.T) {
	rx := []complex64{complex(2, 0)}
	ce := []complex64{complex(2, 0)}
	// h=2, noiseVar=0: denom = |h|^2 = 4, conj(h) = 2, eq = 2*2/4 = 1.
	eq, noiseVar := Equalise(rx, ce, 0)
	require.InDelta(t, 1.0, real(eq[0]), 1e-6)
	require.InDelta(t, 0, noiseVar, 1e-6)
}

func TestEqualiseDeadChannelZeroesOutput(t *testing.T) {
	rx := []complex64{complex(5, 5)}
	ce := []complex64{complex(0, 0)}
	eq, _ := Equalise(rx, ce, 0)
	require.Equal(t, complex64(0), eq[0])
}

func TestEVMZeroOnIdealConstellationPoints(t *testing.T) {
	const p = 0.7071067811865476
	points := []complex64{complex(p, p), complex(-p, p), complex(p, -p), complex(-p, -p)}
	require.InDelta(t, 0, EVM(points), 1e-6)
}

func TestEVMNonzeroWhenOffConstellation(t *testing.T) {
	points := []complex64{complex(0.9, 0.9)}
	require.Greater(t, EVM(points), float32(0))
}
