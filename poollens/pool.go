package poollens

// ParsedPool is the normalized pool state shared by every protocol decoder.
// All fields are always populated; where a concept does not apply to a
// protocol the sentinel NotApplicable (strings) or zero (numbers) is used and
// must be treated as "not applicable", not as an address or amount.
//
// A ParsedPool is owned by the decode call that produced it and is never
// mutated afterwards.
type ParsedPool struct {
	Variant PoolVariant `json:"variant"`

	TokenAMint  string `json:"tokenAMint"`
	TokenBMint  string `json:"tokenBMint"`
	TokenAVault string `json:"tokenAVault"`
	TokenBVault string `json:"tokenBVault"`

	TokenADecimals uint8 `json:"tokenADecimals"`
	TokenBDecimals uint8 `json:"tokenBDecimals"`

	LpMint   string `json:"lpMint"`
	LpSupply uint64 `json:"lpSupply"`

	FeeNumerator   uint64 `json:"feeNumerator"`
	FeeDenominator uint64 `json:"feeDenominator"`

	StatusCode uint64 `json:"statusCode"`

	// Protocols that embed reserves in the pool account itself (DLMM bin
	// reserves, bonding-curve real reserves) set EmbeddedReserves and carry
	// the raw amounts here; reserve resolution then needs no ledger lookup.
	EmbeddedReserves bool   `json:"embeddedReserves"`
	ReserveA         uint64 `json:"reserveA,omitempty"`
	ReserveB         uint64 `json:"reserveB,omitempty"`
}

type decodeFunc func(data []byte) (*ParsedPool, error)

// decoders is the single dispatch table keyed by the detector's variant tag.
var decoders = map[PoolVariant]decodeFunc{
	VariantV4:           decodeRaydiumV4,
	VariantCLMM:         decodeRaydiumCLMM,
	VariantWhirlpool:    decodeWhirlpool,
	VariantDLMM:         decodeDLMM,
	VariantBondingCurve: decodeBondingCurve,
}

// Decode extracts the normalized pool state from a buffer previously
// classified by Detect. Decode-time failures come back as typed errors so
// batch callers can skip one bad account without aborting.
func Decode(det DetectionResult, data []byte) (*ParsedPool, error) {
	fn, ok := decoders[det.Variant]
	if !ok {
		return nil, &UnrecognizedStructureError{Length: len(data), Reason: det.Reason}
	}
	return fn(data)
}

// requireLen fails closed before any field read.
func requireLen(l *Layout, data []byte) error {
	if len(data) < l.MinLen {
		return &TruncatedAccountDataError{Variant: l.Variant, Need: l.MinLen, Got: len(data)}
	}
	return nil
}
