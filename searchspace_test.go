package pdcch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationsScenario1(t *testing.T) {
	coreset := CORESET{ID: 0, Duration: 1, MappingType: NonInterleaved}
	coreset.FreqResources[0] = true
	ss := SearchSpace{Type: SearchSpaceUE}
	ss.NofCandidates[0] = 1

	locs, err := Locations(coreset, ss, 0x1234, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, coreset.NCCE())
	require.Equal(t, []int{0}, locs)
}

func TestLocationsScenario2(t *testing.T) {
	coreset := CORESET{ID: 0, Duration: 3, MappingType: NonInterleaved}
	for r := 0; r < 8; r++ {
		coreset.FreqResources[r] = true
	}
	require.Equal(t, 24, coreset.NCCE())

	ss := SearchSpace{Type: SearchSpaceUE}
	ss.NofCandidates[2] = 4

	locs, err := Locations(coreset, ss, 0x1234, 2, 0)
	require.NoError(t, err)
	require.Len(t, locs, 4)

	seen := map[int]bool{}
	for _, l := range locs {
		require.False(t, seen[l], "locations must be distinct")
		seen[l] = true
		require.Equal(t, 0, l%4, "location must be a multiple of 2^L")
		require.Less(t, l, 24)
		require.GreaterOrEqual(t, l, 0)
	}
}

func TestLocationsRejectsTooFewCandidates(t *testing.T) {
	coreset := CORESET{ID: 0, Duration: 1, MappingType: NonInterleaved}
	coreset.FreqResources[0] = true
	ss := SearchSpace{Type: SearchSpaceCommon}

	_, err := Locations(coreset, ss, 0, 4, 0)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, InvalidInputs, perr.Kind)
}

func TestLocationsDistinctAcrossAggregationLevels(t *testing.T) {
	coreset := CORESET{ID: 1, Duration: 2, MappingType: NonInterleaved}
	for r := 0; r < 10; r++ {
		coreset.FreqResources[r] = true
	}
	ss := SearchSpace{Type: SearchSpaceUE}
	for i := range ss.NofCandidates {
		ss.NofCandidates[i] = 2
	}

	for lExp := 0; lExp < MaxAggregationLevels; lExp++ {
		L := 1 << uint(lExp)
		nCCE := coreset.NCCE()
		if nCCE < L {
			_, err := Locations(coreset, ss, 0xabcd, lExp, 0)
			require.Error(t, err)
			continue
		}
		locs, err := Locations(coreset, ss, 0xabcd, lExp, 0)
		require.NoError(t, err)
		seen := map[int]bool{}
		for _, l := range locs {
			require.False(t, seen[l])
			seen[l] = true
			require.Equal(t, 0, l%L)
			require.Less(t, l, nCCE)
		}
	}
}
