package polar

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func toLLR(bit byte) float32 {
	if bit == 1 {
		return -20
	}
	return 20
}

func TestEncodeDecodeRoundTripNoiseless(t *testing.T) {
	cases := []struct{ K, E int }{
		{64, 108}, {64, 216}, {64, 432}, {64, 864}, {64, 1728},
		{36, 108}, {100, 216},
	}
	for _, c := range cases {
		code, err := NewCode(c.K, c.E)
		require.NoError(t, err)
		require.Equal(t, c.K, len(code.infoPos))

		info := make([]byte, c.K)
		for i := range info {
			info[i] = byte(i % 2)
		}

		coded, err := code.Encode(info)
		require.NoError(t, err)
		require.Len(t, coded, c.E)

		llr := make([]float32, c.E)
		for i, b := range coded {
			llr[i] = toLLR(b)
		}

		decoded, err := code.Decode(llr)
		require.NoError(t, err)
		require.Equal(t, info, decoded)
	}
}

func TestEncodeDecodeRoundTripRandom(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		E := rapid.SampledFrom([]int{108, 216, 432}).Draw(t, "E")
		K := rapid.IntRange(12, E-1).Draw(t, "K")

		code, err := NewCode(K, E)
		require.NoError(t, err)

		info := make([]byte, K)
		for i := range info {
			info[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}

		coded, err := code.Encode(info)
		require.NoError(t, err)

		llr := make([]float32, E)
		for i, b := range coded {
			llr[i] = toLLR(b)
		}
		decoded, err := code.Decode(llr)
		require.NoError(t, err)
		require.Equal(t, info, decoded)
	})
}

func TestNewCodeRejectsKGreaterThanE(t *testing.T) {
	_, err := NewCode(100, 50)
	require.Error(t, err)
}
