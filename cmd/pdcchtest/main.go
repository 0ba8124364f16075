// Command pdcchtest exercises the pdcch package end to end: it builds a
// carrier and CORESET, encodes and maps a DCI message for every
// aggregation level a search space offers, runs the DM-RS generator and
// estimator over the resulting grid, and decodes the candidate back,
// reporting round-trip and link-quality results.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/pflag"

	pdcch "nr5g-pdcch"
	"nr5g-pdcch/dmrs"
)

type loggerAdapter struct{ l *log.Logger }

func (a loggerAdapter) Warnf(format string, args ...any) { a.l.Warnf(format, args...) }

func main() {
	var (
		nofPRB  = pflag.IntP("prb", "r", 50, "carrier bandwidth in PRB (nof_prb)")
		cellID  = pflag.IntP("cell", "c", 0, "physical cell identity (cell_id)")
		verbose = pflag.CountP("verbose", "v", "increase logging verbosity (repeatable)")
		trials  = pflag.Int("trials", 20, "number of random DCI trials per aggregation level")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose > 0 {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	adapter := loggerAdapter{l: logger}

	carrier := pdcch.Carrier{ID: *cellID, NofPRB: *nofPRB, Numerology: 0}
	coreset := pdcch.CORESET{ID: 0, Duration: 2, MappingType: pdcch.NonInterleaved}
	for r := 0; r < pdcch.MaxFreqResources && r*6 < *nofPRB; r++ {
		coreset.FreqResources[r] = true
	}

	tx, err := pdcch.NewTxResources(pdcch.TxArgs{Carrier: carrier, Logger: adapter})
	if err != nil {
		fatal(logger, err)
	}
	rx, err := pdcch.NewRxResources(pdcch.RxArgs{Carrier: carrier, Logger: adapter, EVMBuffer: true})
	if err != nil {
		fatal(logger, err)
	}

	gen := dmrs.NewGenerator(0)
	estimator := dmrs.NewEstimator(gen)

	searchSpace := pdcch.SearchSpace{Type: pdcch.SearchSpaceUE}
	for i := range searchSpace.NofCandidates {
		searchSpace.NofCandidates[i] = 2
	}

	rng := rand.New(rand.NewSource(1))
	gridLen := pdcch.NSymbPerSlot * (*nofPRB) * pdcch.NRE

	total, passed := 0, 0
	for lExp := 0; lExp < pdcch.MaxAggregationLevels; lExp++ {
		locations, err := pdcch.Locations(coreset, searchSpace, 0x4601, lExp, 0)
		if err != nil {
			logger.Debug("no candidates at this aggregation level", "lExp", lExp, "err", err)
			continue
		}
		for trial := 0; trial < *trials; trial++ {
			total++
			nofBits := 20 + rng.Intn(40)
			payload := make([]byte, nofBits)
			for i := range payload {
				payload[i] = byte(rng.Intn(2))
			}
			rnti := uint16(0x4601)
			loc := pdcch.DCILocation{LExp: lExp, NCCE: locations[0]}

			txDCI := &pdcch.DCIMessage{
				Payload:     payload,
				NofBits:     nofBits,
				RNTI:        rnti,
				SearchSpace: pdcch.SearchSpaceUE,
				Location:    loc,
			}

			grid := make([]complex64, gridLen)
			if _, err := dmrs.Put(gen, carrier, coreset, 0, grid); err != nil {
				logger.Error("dmrs put failed", "err", err)
				continue
			}
			if _, err := tx.Encode(coreset, txDCI, grid); err != nil {
				logger.Error("encode failed", "err", err)
				continue
			}

			ce, measure, err := estimator.Estimate(carrier, coreset, loc, 0, grid)
			if err != nil {
				logger.Error("channel estimation failed", "err", err)
				continue
			}

			rxDCI := &pdcch.DCIMessage{
				NofBits:     nofBits,
				RNTI:        rnti,
				SearchSpace: pdcch.SearchSpaceUE,
				Location:    loc,
			}
			res, err := rx.Decode(grid, coreset, rxDCI, ce)
			ok := err == nil && res.CRC && bytesEqual(rxDCI.Payload, payload)
			if ok {
				passed++
			}
			report(logger, lExp, trial, ok, res, measure)
		}
	}

	summary := fmt.Sprintf("%d/%d trials round-tripped", passed, total)
	if passed == total {
		fmt.Println(aurora.Green(summary))
		os.Exit(0)
	}
	fmt.Println(aurora.Red(summary))
	os.Exit(1)
}

func report(logger *log.Logger, lExp, trial int, ok bool, res pdcch.DecodeResult, m dmrs.Measure) {
	logger.Debug("trial result",
		"lExp", lExp, "trial", trial, "ok", ok, "crc", res.CRC, "evm", res.EVM,
		"rsrp", m.RSRP, "epre", m.EPRE, "cfoHz", m.CfoHz, "syncErrorUs", m.SyncErrorUs)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fatal(logger *log.Logger, err error) {
	logger.Fatal(err)
}
