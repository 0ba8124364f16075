// Package dmrs generates and estimates the PDCCH demodulation reference
// signal, per 38.211 7.4.1.3.2.
package dmrs

import (
	"fmt"
	"math"
	"time"

	cache "github.com/patrickmn/go-cache"

	pdcch "nr5g-pdcch"
	"nr5g-pdcch/internal/prbs"
)

const nSCID = 0

var invSqrt2 = float32(math.Sqrt2 / 2)

// Generator produces DM-RS reference sequences, lazily caching one per
// (cInit, length) pair since the same CORESET/slot/symbol combination is
// regenerated every blind-decode attempt in that slot.
type Generator struct {
	cache *cache.Cache
}

// NewGenerator builds a Generator whose cached sequences expire after
// ttl of disuse; a ttl of zero disables expiry (entries live for the
// Generator's lifetime).
func NewGenerator(ttl time.Duration) *Generator {
	expiry := cache.NoExpiration
	if ttl > 0 {
		expiry = ttl
	}
	return &Generator{cache: cache.New(expiry, time.Minute)}
}

// ReferenceSequence returns n complex DM-RS symbols seeded by cInit,
// per 38.211 7.4.1.3.2's r(m) mapping of the 5.2.1 Gold sequence.
func (g *Generator) ReferenceSequence(cInit uint32, n int) []complex64 {
	key := fmt.Sprintf("%d:%d", cInit, n)
	if v, ok := g.cache.Get(key); ok {
		return v.([]complex64)
	}
	bits := prbs.Sequence(cInit, 2*n)
	seq := make([]complex64, n)
	for m := 0; m < n; m++ {
		re := invSqrt2
		if bits[2*m] == 1 {
			re = -invSqrt2
		}
		im := invSqrt2
		if bits[2*m+1] == 1 {
			im = -invSqrt2
		}
		seq[m] = complex(re, im)
	}
	g.cache.Set(key, seq, cache.DefaultExpiration)
	return seq
}

// cInitForSymbol computes the per-(slot,symbol) scrambling seed for the
// DM-RS sequence, per 38.211 7.4.1.3.2.
func cInitForSymbol(carrier pdcch.Carrier, coreset pdcch.CORESET, slotIdx, symbolIdx int) uint32 {
	nID := uint32(carrier.ID)
	if coreset.DmrsScramblingIDPresent {
		nID = uint32(coreset.DmrsScramblingID)
	}
	term := uint32(pdcch.NSymbPerSlot*slotIdx+symbolIdx+1) * (2*nID + 1)
	cInit := (term<<17 + 2*nID + nSCID) & 0x7fffffff
	return cInit
}

// Put generates and writes the DM-RS for every OFDM symbol of coreset's
// duration into grid, returning the total number of reference symbols
// placed.
func Put(gen *Generator, carrier pdcch.Carrier, coreset pdcch.CORESET, slotIdx int, grid []complex64) (int, error) {
	if coreset.Duration <= 0 {
		return 0, fmt.Errorf("dmrs: coreset duration must be positive")
	}
	total := 0
	for l := 0; l < coreset.Duration; l++ {
		cInit := cInitForSymbol(carrier, coreset, slotIdx, l)
		nPilots := 3 * 6 * coreset.NofFreqResources()
		ref := gen.ReferenceSequence(cInit, nPilots)
		m := 0
		walkCoreset(carrier, coreset, l, func(k, gridIdx int) {
			if k%4 != 1 {
				return
			}
			if gridIdx < len(grid) && m < len(ref) {
				grid[gridIdx] = ref[m]
			}
			m++
			total++
		})
	}
	return total, nil
}

// walkCoreset enumerates every resource element of coreset's enabled
// frequency-resource groups at OFDM symbol l, calling cb with a packed
// subcarrier index k (monotonically increasing across enabled groups
// only) and the corresponding absolute grid index.
func walkCoreset(carrier pdcch.Carrier, coreset pdcch.CORESET, l int, cb func(k, gridIdx int)) {
	k := 0
	for r := 0; r < pdcch.MaxFreqResources; r++ {
		if !coreset.FreqResources[r] {
			continue
		}
		for i := r * 6 * pdcch.NRE; i < (r+1)*6*pdcch.NRE; i++ {
			gridIdx := l*carrier.NofPRB*pdcch.NRE + i
			cb(k, gridIdx)
			k++
		}
	}
}
