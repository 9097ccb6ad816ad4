package poollens

// decodeWhirlpool extracts the normalized pool state from a 653-byte Orca
// Whirlpool account. Whirlpools store neither token decimals nor a status
// byte: decimals are marked unknown (the reserve resolver reads them from the
// mint accounts) and the status code is always the active value. The u16 fee
// rate is in hundredths of a basis point.
func decodeWhirlpool(data []byte) (*ParsedPool, error) {
	l := Registry[VariantWhirlpool]
	if err := requireLen(l, data); err != nil {
		return nil, err
	}

	mintA, err := l.ReadPubkey(data, "tokenMintA")
	if err != nil {
		return nil, err
	}
	vaultA, err := l.ReadPubkey(data, "tokenVaultA")
	if err != nil {
		return nil, err
	}
	mintB, err := l.ReadPubkey(data, "tokenMintB")
	if err != nil {
		return nil, err
	}
	vaultB, err := l.ReadPubkey(data, "tokenVaultB")
	if err != nil {
		return nil, err
	}
	if mintA.IsZero() || mintB.IsZero() {
		return nil, &StructuralValidationError{Variant: VariantWhirlpool, Field: "tokenMintA", Reason: "uninitialized mint"}
	}

	feeRate, err := l.ReadUint(data, "feeRate")
	if err != nil {
		return nil, err
	}
	liquidity, err := l.ReadU128(data, "liquidity")
	if err != nil {
		return nil, err
	}

	return &ParsedPool{
		Variant:        VariantWhirlpool,
		TokenAMint:     mintA.String(),
		TokenBMint:     mintB.String(),
		TokenAVault:    vaultA.String(),
		TokenBVault:    vaultB.String(),
		TokenADecimals: DecimalsUnknown,
		TokenBDecimals: DecimalsUnknown,
		LpMint:         NotApplicable,
		LpSupply:       liquidity,
		FeeNumerator:   feeRate,
		FeeDenominator: 1_000_000,
		StatusCode:     0,
	}, nil
}
