package pdcch

// aggregationConstA holds the three A_p multipliers used by the Y_p,n
// hash, selected by coreset.ID mod 3 (38.213 10.1).
var aggregationConstA = [3]uint32{39827, 39829, 39839}

const yModulus uint32 = 65537

// Locations computes the ordered CCE start indices of every blind-decode
// candidate for (coreset, searchSpace, rnti, lExp, slotIdx), per 38.213
// 10.1. The candidate count is capped at 8 and at floor(N_CCE/L), so the
// returned start indices are distinct. The Y_p,n recursion is evaluated as an iterative fold over
// slotIdx+1 steps rather than recursively, per the standard's own
// design note that an implementation must bound the recursion (and that
// iteration is strictly preferred).
func Locations(coreset CORESET, searchSpace SearchSpace, rnti uint16, lExp int, slotIdx int) ([]int, error) {
	if err := validateLExp(lExp); err != nil {
		return nil, err
	}
	if slotIdx < 0 {
		return nil, newErr(InvalidInputs, "negative slot index")
	}

	L := 1 << uint(lExp)
	M := searchSpace.NofCandidates[lExp]
	if M > MaxCandidatesPerLevel {
		M = MaxCandidatesPerLevel
	}
	if M == 0 {
		return nil, newErr(InvalidInputs, "zero candidates for this aggregation level")
	}

	nCCE := coreset.NCCE()
	if nCCE < L {
		return nil, newErr(InvalidInputs, "coreset has fewer CCEs than the aggregation level")
	}

	var y uint32
	if searchSpace.Type == SearchSpaceUE {
		y = uint32(rnti) // Y_{p,-1}
		a := aggregationConstA[coreset.ID%3]
		for n := 0; n <= slotIdx; n++ {
			y = (a * y) % yModulus
		}
	}

	const nCI = 0
	span := nCCE / L
	if M > span {
		M = span // more candidates than L-CCE slots would repeat start CCEs
	}
	locations := make([]int, M)
	for m := 0; m < M; m++ {
		locations[m] = L * ((int(y) + (m*nCCE)/(L*M) + nCI) % span)
	}
	return locations, nil
}
