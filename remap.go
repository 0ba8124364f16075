package pdcch

// Direction selects whether MapResourceElements writes symbols into the
// grid (encode) or reads them out of it (decode).
type Direction int

const (
	Put Direction = iota
	Get
)

// MapResourceElements enumerates the ordered set of grid coordinates a
// candidate's data REs occupy (DM-RS REs, at k%4==1, excluded) and either
// writes symbols into grid (Put) or reads them out of it (Get).
//
// k is a packed subcarrier index: it counts only subcarriers belonging to
// enabled frequency-resource groups, walked in ascending group order, so a
// gap between two enabled six-PRB groups never appears in k-space. This is
// the same packed index the DM-RS placer and estimator use, which is what
// keeps the two halves of the PDCCH pipeline aligned.
func MapResourceElements(carrier Carrier, coreset CORESET, loc DCILocation, dir Direction, grid []complex64, symbols []complex64) (int, error) {
	if coreset.MappingType != NonInterleaved {
		return 0, newErr(InvalidInputs, "interleaved coreset mapping is not implemented")
	}
	if err := validateLExp(loc.LExp); err != nil {
		return 0, err
	}
	if coreset.Duration <= 0 {
		return 0, newErr(InvalidInputs, "coreset duration must be positive")
	}

	L := 1 << uint(loc.LExp)
	kBegin := (loc.NCCE * NRE * 6) / coreset.Duration
	kEnd := kBegin + (L*6*NRE)/coreset.Duration

	count := 0
	for l := 0; l < coreset.Duration; l++ {
		k := 0
		for r := 0; r < MaxFreqResources; r++ {
			if !coreset.FreqResources[r] {
				continue
			}
			for i := r * 6 * NRE; i < (r+1)*6*NRE; i++ {
				if k >= kBegin && k < kEnd && k%4 != 1 {
					gridIdx := l*carrier.NofPRB*NRE + i
					if dir == Put {
						if count >= len(symbols) || gridIdx >= len(grid) {
							return count, newErr(Mapping, "symbol or grid buffer too small")
						}
						grid[gridIdx] = symbols[count]
					} else {
						if count >= len(symbols) || gridIdx >= len(grid) {
							return count, newErr(Mapping, "symbol or grid buffer too small")
						}
						symbols[count] = grid[gridIdx]
					}
					count++
				}
				k++
			}
		}
	}
	return count, nil
}
