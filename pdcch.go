package pdcch

import (
	"math"

	"nr5g-pdcch/internal/crc24c"
	"nr5g-pdcch/internal/equalizer"
	"nr5g-pdcch/internal/polar"
	"nr5g-pdcch/internal/prbs"
	"nr5g-pdcch/internal/qpsk"
)

// Role distinguishes a handle built for transmission from one built for
// reception; each only exposes the matching half of the pipeline.
type Role int

const (
	RoleTx Role = iota
	RoleRx
)

// TxArgs configures a TX handle at construction time.
type TxArgs struct {
	Carrier Carrier
	Logger  Logger // optional; nil installs a no-op logger
}

// RxArgs configures an RX handle at construction time. EVMBuffer mirrors
// spec's "optional EVM buffer": when false, Decode always reports
// NaN for evm rather than paying for the extra pass over the equalized
// symbols every candidate.
type RxArgs struct {
	Carrier   Carrier
	Logger    Logger // optional; nil installs a no-op logger
	EVMBuffer bool
}

type codeKey struct{ K, E int }

// Resources is the per-session handle: a carrier configuration plus the
// scratch state needed to encode or decode PDCCH candidates against it.
// Polar code descriptors are expensive to build (reliability ordering,
// forced-freeze alignment) and are reused across calls for the same
// (K, E) pair rather than rebuilt every Encode/Decode; the RX symbol
// buffer is grown once and reused, rather than allocated per candidate.
// It is not safe for concurrent use by multiple goroutines without
// external synchronization, matching the teacher's own handle idiom.
type Resources struct {
	carrier   Carrier
	role      Role
	log       Logger
	evmBuffer bool

	codeCache map[codeKey]*polar.Code
	rxScratch []complex64
}

// NewTxResources allocates a handle for encoding DCI messages onto a
// resource grid.
func NewTxResources(args TxArgs) (*Resources, error) {
	if err := validateCarrier(args.Carrier); err != nil {
		return nil, err
	}
	log := args.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Resources{
		carrier:   args.Carrier,
		role:      RoleTx,
		log:       log,
		codeCache: make(map[codeKey]*polar.Code),
	}, nil
}

// NewRxResources allocates a handle for decoding DCI candidates off a
// resource grid.
func NewRxResources(args RxArgs) (*Resources, error) {
	if err := validateCarrier(args.Carrier); err != nil {
		return nil, err
	}
	log := args.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Resources{
		carrier:   args.Carrier,
		role:      RoleRx,
		log:       log,
		evmBuffer: args.EVMBuffer,
		codeCache: make(map[codeKey]*polar.Code),
	}, nil
}

// SetCarrier reconfigures the handle for a new carrier, without
// reallocating it. Cached polar codes are unaffected by carrier changes
// and remain valid.
func (r *Resources) SetCarrier(carrier Carrier) error {
	if err := validateCarrier(carrier); err != nil {
		return err
	}
	r.carrier = carrier
	return nil
}

// Free releases the handle's scratch buffers and cached polar codes.
func (r *Resources) Free() {
	r.carrier = Carrier{}
	r.codeCache = nil
	r.rxScratch = nil
}

// code returns the cached polar code descriptor for (K, E), building and
// caching it on first use.
func (r *Resources) code(K, E int) (*polar.Code, error) {
	key := codeKey{K, E}
	if c, ok := r.codeCache[key]; ok {
		return c, nil
	}
	c, err := polar.NewCode(K, E)
	if err != nil {
		return nil, err
	}
	if r.codeCache == nil {
		r.codeCache = make(map[codeKey]*polar.Code)
	}
	r.codeCache[key] = c
	return c, nil
}

// rxSymbolScratch returns a reused length-n scratch buffer for the
// candidate's received resource elements, growing it only when needed.
func (r *Resources) rxSymbolScratch(n int) []complex64 {
	if cap(r.rxScratch) < n {
		r.rxScratch = make([]complex64, n)
	}
	return r.rxScratch[:n]
}

func validateCarrier(c Carrier) error {
	if c.NofPRB <= 0 || c.NofPRB > 275 {
		return newErr(InvalidInputs, "carrier bandwidth out of range")
	}
	if c.ID < 0 || c.ID > 1007 {
		return newErr(InvalidInputs, "physical cell identity out of range")
	}
	if c.Numerology < 0 || c.Numerology > 4 {
		return newErr(InvalidInputs, "numerology out of range")
	}
	return nil
}

// Encode attaches CRC24C (masked with the DCI's RNTI), polar-encodes
// and rate-matches to the candidate's data RE budget, scrambles and
// QPSK-modulates, and writes the result into grid at the candidate's
// resource elements. It returns the number of REs written.
func (r *Resources) Encode(coreset CORESET, dci *DCIMessage, grid []complex64) (int, error) {
	if r.role != RoleTx {
		return 0, newErr(InvalidInputs, "handle is not a tx handle")
	}
	if err := validateDCIMessage(coreset, dci); err != nil {
		return 0, err
	}

	payload := dci.Payload[:dci.NofBits]
	withCRC := crc24c.Attach(payload)
	parity := withCRC[dci.NofBits:]
	masked := crc24c.MaskWithRNTI(parity, dci.RNTI)
	copy(withCRC[dci.NofBits:], masked)

	K := len(withCRC)
	E := nofDataRE(dci.Location.LExp) * 2

	code, err := r.code(K, E)
	if err != nil {
		return 0, wrapErr(UpstreamPrimitive, "polar code construction failed", err)
	}
	coded, err := code.Encode(withCRC)
	if err != nil {
		return 0, wrapErr(UpstreamPrimitive, "polar encode failed", err)
	}

	cInit := ComputeCInit(r.carrier, coreset, dci.RNTI, dci.SearchSpace)
	scrambled := prbs.ApplyXORBits(coded, cInit)
	symbols := qpsk.Modulate(scrambled)

	count, err := MapResourceElements(r.carrier, coreset, dci.Location, Put, grid, symbols)
	if err != nil {
		return 0, err
	}
	if count != nofDataRE(dci.Location.LExp) {
		return count, newErr(Mapping, "resource element count mismatch on encode")
	}
	return count, nil
}

// DecodeResult is the outcome of a successful Decode call. CRC is the
// ordinary result of blind-decoding a candidate: false simply means this
// candidate carried no DCI for the requested RNTI, not a failure. EVM is
// NaN unless the handle was built with RxArgs.EVMBuffer set.
type DecodeResult struct {
	CRC bool
	EVM float32
}

// Decode extracts a candidate's resource elements from grid, equalizes
// against ce, demodulates to soft bits, descrambles, recovers rate
// matching, SC-decodes, unmasks and checks CRC24C. dci carries the
// candidate descriptor (nof_bits, rnti, location, search_space) as
// input; on return its Payload holds the decoded bits (guaranteed
// correct only when the returned CRC is true). Decode never fails on a
// bad CRC — that is reported as CRC: false. It returns an error only for
// invalid inputs, size mismatches, or upstream primitive failures.
func (r *Resources) Decode(grid []complex64, coreset CORESET, dci *DCIMessage, ce ChannelEstimate) (DecodeResult, error) {
	if r.role != RoleRx {
		return DecodeResult{}, newErr(InvalidInputs, "handle is not an rx handle")
	}
	if dci == nil {
		return DecodeResult{}, newErr(InvalidInputs, "nil dci descriptor")
	}
	if err := validateLocation(coreset, dci.Location); err != nil {
		return DecodeResult{}, err
	}
	nofBits := dci.NofBits
	if nofBits <= 0 || nofBits+24 > 140 {
		return DecodeResult{}, newErr(InvalidInputs, "nof_bits out of range")
	}

	M := nofDataRE(dci.Location.LExp)
	if ce.NofRE != M || len(ce.CE) < M {
		return DecodeResult{}, newErr(SizeMismatch, "channel estimate size does not match candidate aggregation level")
	}

	rxSymbols := r.rxSymbolScratch(M)
	count, err := MapResourceElements(r.carrier, coreset, dci.Location, Get, grid, rxSymbols)
	if err != nil {
		return DecodeResult{}, err
	}
	if count != M {
		return DecodeResult{}, newErr(Mapping, "resource element count mismatch on decode")
	}

	eq, noiseVar := equalizer.Equalise(rxSymbols, ce.CE[:M], ce.NoiseVar)
	llrs := qpsk.DemodulateSoft(eq, noiseVar)

	evm := float32(math.NaN())
	if r.evmBuffer {
		evm = equalizer.EVM(eq)
	}

	cInit := ComputeCInit(r.carrier, coreset, dci.RNTI, dci.SearchSpace)
	descrambled := prbs.ApplySignFlipLLR(llrs, cInit)

	K := nofBits + 24
	E := len(descrambled)
	code, err := r.code(K, E)
	if err != nil {
		return DecodeResult{}, wrapErr(UpstreamPrimitive, "polar code construction failed", err)
	}
	bits, err := code.Decode(descrambled)
	if err != nil {
		return DecodeResult{}, wrapErr(UpstreamPrimitive, "polar decode failed", err)
	}

	unmaskedParity := crc24c.MaskWithRNTI(bits[nofBits:], dci.RNTI)
	checked := make([]byte, K)
	copy(checked, bits[:nofBits])
	copy(checked[nofBits:], unmaskedParity)

	if len(dci.Payload) < nofBits {
		dci.Payload = make([]byte, nofBits)
	}
	copy(dci.Payload[:nofBits], checked[:nofBits])

	return DecodeResult{CRC: crc24c.Check(checked), EVM: evm}, nil
}
