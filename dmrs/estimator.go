package dmrs

import (
	"math"

	pdcch "nr5g-pdcch"
)

// Estimator derives per-candidate channel estimates from a received
// resource grid's DM-RS: a per-OFDM-symbol least-squares pilot estimate,
// linearly interpolated in frequency onto that symbol's data resource
// elements. CFO and sync-error are tracked across symbols and pilot
// subcarriers respectively, for link-quality reporting.
type Estimator struct {
	gen *Generator
}

// NewEstimator builds an Estimator backed by gen's reference-sequence
// cache.
func NewEstimator(gen *Generator) *Estimator {
	return &Estimator{gen: gen}
}

// Measure reports link-quality figures derived from the same LS pilot
// estimates Estimate uses: reference signal received power, energy per
// resource element, estimated carrier frequency offset, and estimated
// timing/sync error.
type Measure struct {
	RSRP        float32
	EPRE        float32
	CfoHz       float32
	SyncErrorUs float32
}

// Estimate computes the channel estimate for one candidate location
// within coreset, at slotIdx, from the received grid.
func (e *Estimator) Estimate(carrier pdcch.Carrier, coreset pdcch.CORESET, loc pdcch.DCILocation, slotIdx int, grid []complex64) (pdcch.ChannelEstimate, Measure, error) {
	L := 1 << uint(loc.LExp)
	kBegin := (loc.NCCE * pdcch.NRE * 6) / coreset.Duration
	kEnd := kBegin + (L*6*pdcch.NRE)/coreset.Duration
	nDataRE := 54 * L

	ceOut := make([]complex64, nDataRE)
	dataIdx := 0

	var noiseAccum, epreAccum, rsrpAccum, freqSlopeAccum, symSlopeAccum float32
	var pilotSymbolCount, symSlopeCount int
	var havePrevMean bool
	var prevMean complex64

	for l := 0; l < coreset.Duration; l++ {
		cInit := cInitForSymbol(carrier, coreset, slotIdx, l)
		nPilotsTotal := 3 * 6 * coreset.NofFreqResources()
		ref := e.gen.ReferenceSequence(cInit, nPilotsTotal)

		var pilotKs []int
		var pilotLS []complex64
		walkCoreset(carrier, coreset, l, func(k, gridIdx int) {
			if k%4 != 1 {
				return
			}
			m := (k - 1) / 4
			if k < kBegin || k >= kEnd || m >= len(ref) || ref[m] == 0 {
				return
			}
			ls := grid[gridIdx] / ref[m]
			pilotKs = append(pilotKs, k)
			pilotLS = append(pilotLS, ls)
		})

		if len(pilotLS) == 0 {
			continue
		}
		pilotSymbolCount++

		var mean complex64
		for _, v := range pilotLS {
			mean += v
		}
		mean /= complex64(complex(float32(len(pilotLS)), 0))

		var varSum float32
		for _, v := range pilotLS {
			d := v - mean
			varSum += real(d)*real(d) + imag(d)*imag(d)
		}
		noiseAccum += varSum / float32(len(pilotLS))
		epreAccum += real(mean)*real(mean) + imag(mean)*imag(mean)
		rsrpAccum += real(mean)*real(mean) + imag(mean)*imag(mean)

		if len(pilotLS) >= 2 {
			d := pilotLS[len(pilotLS)-1] / pilotLS[0]
			freqSlopeAccum += phaseOf(d) / float32(pilotKs[len(pilotKs)-1]-pilotKs[0])
		}
		if havePrevMean && prevMean != 0 {
			symSlopeAccum += phaseOf(mean / prevMean)
			symSlopeCount++
		}
		prevMean, havePrevMean = mean, true

		walkCoreset(carrier, coreset, l, func(k, gridIdx int) {
			if k < kBegin || k >= kEnd || k%4 == 1 {
				return
			}
			if dataIdx < len(ceOut) {
				ceOut[dataIdx] = interpolate(pilotKs, pilotLS, k)
			}
			dataIdx++
		})
	}

	if pilotSymbolCount == 0 {
		return pdcch.ChannelEstimate{}, Measure{}, newDmrsErr("no dm-rs pilots found for this candidate")
	}

	subcarrierSpacingHz := float32(15000 * (int(1) << uint(carrier.Numerology)))
	var cfoHz float32
	if symSlopeCount > 0 {
		cfoHz = (symSlopeAccum / float32(symSlopeCount)) / (2 * math.Pi) * subcarrierSpacingHz * float32(pdcch.NSymbPerSlot)
	}
	var syncErrorUs float32
	if pilotSymbolCount > 0 {
		syncErrorUs = (freqSlopeAccum / float32(pilotSymbolCount)) / (2 * math.Pi) / subcarrierSpacingHz * 1e6
	}

	meas := Measure{
		RSRP:        rsrpAccum / float32(pilotSymbolCount),
		EPRE:        epreAccum / float32(pilotSymbolCount),
		CfoHz:       cfoHz,
		SyncErrorUs: syncErrorUs,
	}

	return pdcch.ChannelEstimate{
		CE:       ceOut,
		NofRE:    nDataRE,
		NoiseVar: noiseAccum / float32(pilotSymbolCount),
	}, meas, nil
}

// interpolate linearly interpolates the channel estimate at subcarrier
// k from the pilot LS estimates in pilotKs/pilotLS (ascending k),
// extending flat past the outermost pilots.
func interpolate(pilotKs []int, pilotLS []complex64, k int) complex64 {
	if len(pilotKs) == 1 {
		return pilotLS[0]
	}
	if k <= pilotKs[0] {
		return pilotLS[0]
	}
	if k >= pilotKs[len(pilotKs)-1] {
		return pilotLS[len(pilotLS)-1]
	}
	for i := 0; i < len(pilotKs)-1; i++ {
		if k >= pilotKs[i] && k <= pilotKs[i+1] {
			frac := float32(k-pilotKs[i]) / float32(pilotKs[i+1]-pilotKs[i])
			a, b := pilotLS[i], pilotLS[i+1]
			return a + complex64(complex(frac, 0))*(b-a)
		}
	}
	return pilotLS[len(pilotLS)-1]
}

func phaseOf(c complex64) float32 {
	return float32(math.Atan2(float64(imag(c)), float64(real(c))))
}

type dmrsError struct{ msg string }

func (e *dmrsError) Error() string { return "dmrs: " + e.msg }

func newDmrsErr(msg string) error { return &dmrsError{msg} }
