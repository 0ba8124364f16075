package pdcch

// NRE is the number of subcarriers per PRB, per 38.211.
const NRE = 12

// MaxFreqResources is the number of six-PRB groups a CORESET frequency
// bitmap can span (38.331 maximum CORESET bandwidth of 275 PRB / 6).
const MaxFreqResources = 45

// MaxAggregationLevels is the number of aggregation-level exponents
// (L = 2^i, i = 0..4, i.e. L in {1,2,4,8,16}).
const MaxAggregationLevels = 5

// MaxCandidatesPerLevel caps the number of blind-decode candidates the
// standard allows per aggregation level.
const MaxCandidatesPerLevel = 8

// MaxRE is the scratch buffer capacity: 54 data REs per CCE times the
// largest aggregation level (16).
const MaxRE = 54 * 16

// NSymbPerSlot is the number of OFDM symbols per slot under normal cyclic
// prefix (38.211 Table 4.3.2-1).
const NSymbPerSlot = 14

// MappingType selects how CCEs are mapped onto CORESET resource elements.
// Only NonInterleaved is implemented; InterleavedMapping exists so the data
// model matches the full standard, and is rejected at the RE-mapping
// boundary with InvalidInputs (see spec Open Questions).
type MappingType int

const (
	NonInterleaved MappingType = iota
	InterleavedMapping
)

// SearchSpaceType distinguishes cell-wide common search spaces from
// UE-specific ones; only UE search spaces use the RNTI-seeded Y_p,n hash.
type SearchSpaceType int

const (
	SearchSpaceCommon SearchSpaceType = iota
	SearchSpaceUE
)

// Carrier is immutable per session: the serving cell's identity, bandwidth
// and subcarrier-spacing numerology.
type Carrier struct {
	ID         int // physical cell identity, 0..1007
	NofPRB     int // bandwidth in PRBs, 1..275
	Numerology int // subcarrier-spacing exponent, 0..4
}

// CORESET is a control-resource set: a rectangle of OFDM symbols by
// six-PRB frequency-resource groups in which PDCCH candidates live.
type CORESET struct {
	ID                      int
	Duration                int // OFDM symbols, 1..3
	FreqResources           [MaxFreqResources]bool
	MappingType             MappingType
	DmrsScramblingIDPresent bool
	DmrsScramblingID        uint16
}

// NofFreqResources returns the number of enabled six-PRB groups.
func (c CORESET) NofFreqResources() int {
	n := 0
	for _, on := range c.FreqResources {
		if on {
			n++
		}
	}
	return n
}

// BwInPRB returns the CORESET's bandwidth, in PRBs.
func (c CORESET) BwInPRB() int {
	return 6 * c.NofFreqResources()
}

// NCCE returns the number of CCEs available in this CORESET.
func (c CORESET) NCCE() int {
	if c.Duration == 0 {
		return 0
	}
	return c.BwInPRB() * c.Duration / 6
}

// SearchSpace describes a cell-wide or UE-specific blind-decode search
// space: how many candidates exist at each aggregation-level exponent.
type SearchSpace struct {
	Type          SearchSpaceType
	NofCandidates [MaxAggregationLevels]int
}

// DCILocation identifies a blind-decode candidate: its aggregation-level
// exponent (L = 1<<LExp) and its starting CCE index.
type DCILocation struct {
	LExp int
	NCCE int
}

// DCIMessage is an ephemeral per-slot DCI: its payload, RNTI, the search
// space it was found in (or is to be placed in), and its candidate
// location.
type DCIMessage struct {
	Payload     []byte // unpacked bits (0/1), length >= NofBits
	NofBits     int
	RNTI        uint16
	SearchSpace SearchSpaceType
	Location    DCILocation
}

// ChannelEstimate carries per-RE complex channel samples for one
// candidate's data REs plus a residual noise-variance estimate.
type ChannelEstimate struct {
	CE       []complex64
	NofRE    int
	NoiseVar float32
}

// nofDataRE returns M = 54 * 2^LExp, the number of data resource elements
// a candidate at the given aggregation-level exponent occupies.
func nofDataRE(lExp int) int {
	return 54 * (1 << uint(lExp))
}

func validateLExp(lExp int) error {
	if lExp < 0 || lExp >= MaxAggregationLevels {
		return newErr(InvalidInputs, "aggregation level exponent out of range")
	}
	return nil
}

func validateLocation(coreset CORESET, loc DCILocation) error {
	if err := validateLExp(loc.LExp); err != nil {
		return err
	}
	L := 1 << uint(loc.LExp)
	nCCE := coreset.NCCE()
	if nCCE < L {
		return newErr(InvalidInputs, "coreset has fewer CCEs than the aggregation level")
	}
	if loc.NCCE+L > nCCE {
		return newErr(InvalidInputs, "candidate location runs past the coreset's CCEs")
	}
	if loc.NCCE%L != 0 {
		return newErr(InvalidInputs, "candidate ncce is not a multiple of the aggregation level")
	}
	return nil
}

func validateDCIMessage(coreset CORESET, dci *DCIMessage) error {
	if dci == nil {
		return newErr(InvalidInputs, "nil dci message")
	}
	if dci.NofBits <= 0 || dci.NofBits+24 > 140 {
		return newErr(InvalidInputs, "nof_bits out of range")
	}
	if len(dci.Payload) < dci.NofBits {
		return newErr(InvalidInputs, "payload shorter than nof_bits")
	}
	return validateLocation(coreset, dci.Location)
}
