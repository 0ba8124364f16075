package pdcch

// ComputeCInit derives the PRBS seed for a candidate's data scrambling
// sequence, per 38.211 7.3.2.3: c_init = (n_RNTI * 2^16 + n_ID) mod 2^31,
// where n_ID is the DM-RS scrambling ID configured on the CORESET only
// when searchSpace is UE-specific and the CORESET carries one, else the
// physical cell identity (a common search space never honours a
// CORESET's dmrs_scrambling_id, per 38.211 7.3.2.3).
func ComputeCInit(carrier Carrier, coreset CORESET, rnti uint16, searchSpace SearchSpaceType) uint32 {
	nID := uint32(carrier.ID)
	if searchSpace == SearchSpaceUE && coreset.DmrsScramblingIDPresent {
		nID = uint32(coreset.DmrsScramblingID)
	}
	cInit := (uint32(rnti)<<16 + nID) & 0x7fffffff
	return cInit
}
