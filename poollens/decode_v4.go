package poollens

// decodeRaydiumV4 extracts the normalized pool state from a 752-byte Raydium
// AMM v4 liquidity-state account. The v4 state stores decimals as u64 fields
// and the swap fee as an explicit numerator/denominator pair, so no fee
// conversion is needed beyond passing the pair through.
func decodeRaydiumV4(data []byte) (*ParsedPool, error) {
	l := Registry[VariantV4]
	if err := requireLen(l, data); err != nil {
		return nil, err
	}

	status, err := l.ReadUint(data, "status")
	if err != nil {
		return nil, err
	}
	baseDec, err := l.ReadUint(data, "baseDecimal")
	if err != nil {
		return nil, err
	}
	quoteDec, err := l.ReadUint(data, "quoteDecimal")
	if err != nil {
		return nil, err
	}
	if baseDec > 18 || quoteDec > 18 {
		return nil, &StructuralValidationError{Variant: VariantV4, Field: "baseDecimal", Reason: "implausible decimal count"}
	}
	feeNum, err := l.ReadUint(data, "swapFeeNumerator")
	if err != nil {
		return nil, err
	}
	feeDen, err := l.ReadUint(data, "swapFeeDenominator")
	if err != nil {
		return nil, err
	}
	if feeDen == 0 {
		return nil, &StructuralValidationError{Variant: VariantV4, Field: "swapFeeDenominator", Reason: "zero denominator"}
	}

	baseVault, err := l.ReadPubkey(data, "baseVault")
	if err != nil {
		return nil, err
	}
	quoteVault, err := l.ReadPubkey(data, "quoteVault")
	if err != nil {
		return nil, err
	}
	baseMint, err := l.ReadPubkey(data, "baseMint")
	if err != nil {
		return nil, err
	}
	quoteMint, err := l.ReadPubkey(data, "quoteMint")
	if err != nil {
		return nil, err
	}
	lpMint, err := l.ReadPubkey(data, "lpMint")
	if err != nil {
		return nil, err
	}
	lpReserve, err := l.ReadUint(data, "lpReserve")
	if err != nil {
		return nil, err
	}

	return &ParsedPool{
		Variant:        VariantV4,
		TokenAMint:     baseMint.String(),
		TokenBMint:     quoteMint.String(),
		TokenAVault:    baseVault.String(),
		TokenBVault:    quoteVault.String(),
		TokenADecimals: uint8(baseDec),
		TokenBDecimals: uint8(quoteDec),
		LpMint:         lpMint.String(),
		LpSupply:       lpReserve,
		FeeNumerator:   feeNum,
		FeeDenominator: feeDen,
		StatusCode:     status,
	}, nil
}
