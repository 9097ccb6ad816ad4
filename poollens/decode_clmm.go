package poollens

// decodeRaydiumCLMM extracts the normalized pool state from a Raydium
// concentrated-liquidity PoolState account. CLMM pools are tick-based: they
// have no LP mint, so lpMint carries the sentinel and lpSupply is derived
// from the pool's liquidity counter. The fee rate is stored in hundredths of
// a basis point, normalized here to a fraction over 1e6.
func decodeRaydiumCLMM(data []byte) (*ParsedPool, error) {
	l := Registry[VariantCLMM]
	if err := requireLen(l, data); err != nil {
		return nil, err
	}

	mint0, err := l.ReadPubkey(data, "tokenMint0")
	if err != nil {
		return nil, err
	}
	mint1, err := l.ReadPubkey(data, "tokenMint1")
	if err != nil {
		return nil, err
	}
	vault0, err := l.ReadPubkey(data, "tokenVault0")
	if err != nil {
		return nil, err
	}
	vault1, err := l.ReadPubkey(data, "tokenVault1")
	if err != nil {
		return nil, err
	}
	if mint0.IsZero() || mint1.IsZero() || vault0.IsZero() || vault1.IsZero() {
		return nil, &StructuralValidationError{Variant: VariantCLMM, Field: "tokenMint0", Reason: "uninitialized mint or vault"}
	}

	dec0, err := l.ReadUint(data, "mintDecimals0")
	if err != nil {
		return nil, err
	}
	dec1, err := l.ReadUint(data, "mintDecimals1")
	if err != nil {
		return nil, err
	}
	liquidity, err := l.ReadU128(data, "liquidity")
	if err != nil {
		return nil, err
	}
	feeRate, err := l.ReadUint(data, "feeRate")
	if err != nil {
		return nil, err
	}
	status, err := l.ReadUint(data, "status")
	if err != nil {
		return nil, err
	}

	return &ParsedPool{
		Variant:        VariantCLMM,
		TokenAMint:     mint0.String(),
		TokenBMint:     mint1.String(),
		TokenAVault:    vault0.String(),
		TokenBVault:    vault1.String(),
		TokenADecimals: uint8(dec0),
		TokenBDecimals: uint8(dec1),
		LpMint:         NotApplicable,
		LpSupply:       liquidity,
		FeeNumerator:   feeRate,
		FeeDenominator: 1_000_000,
		StatusCode:     status,
	}, nil
}
