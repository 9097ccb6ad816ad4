package poollens

// decodeDLMM extracts the normalized pool state from a Meteora DLMM LbPair
// account. DLMM fees are bin-based: the base fee is binStep × baseFactor over
// 1e8. Bin reserves are embedded in the pair account, so reserve resolution
// reads them straight from the ParsedPool instead of hitting the ledger; the
// pair stores no token decimals, so those are marked unknown.
func decodeDLMM(data []byte) (*ParsedPool, error) {
	l := Registry[VariantDLMM]
	if err := requireLen(l, data); err != nil {
		return nil, err
	}

	mintX, err := l.ReadPubkey(data, "tokenXMint")
	if err != nil {
		return nil, err
	}
	mintY, err := l.ReadPubkey(data, "tokenYMint")
	if err != nil {
		return nil, err
	}
	reserveX, err := l.ReadPubkey(data, "reserveX")
	if err != nil {
		return nil, err
	}
	reserveY, err := l.ReadPubkey(data, "reserveY")
	if err != nil {
		return nil, err
	}
	if mintX.IsZero() || mintY.IsZero() {
		return nil, &StructuralValidationError{Variant: VariantDLMM, Field: "tokenXMint", Reason: "uninitialized mint"}
	}

	baseFactor, err := l.ReadUint(data, "baseFactor")
	if err != nil {
		return nil, err
	}
	binStep, err := l.ReadUint(data, "binStep")
	if err != nil {
		return nil, err
	}
	status, err := l.ReadUint(data, "status")
	if err != nil {
		return nil, err
	}
	binReserveX, err := l.ReadUint(data, "binReserveX")
	if err != nil {
		return nil, err
	}
	binReserveY, err := l.ReadUint(data, "binReserveY")
	if err != nil {
		return nil, err
	}

	return &ParsedPool{
		Variant:          VariantDLMM,
		TokenAMint:       mintX.String(),
		TokenBMint:       mintY.String(),
		TokenAVault:      reserveX.String(),
		TokenBVault:      reserveY.String(),
		TokenADecimals:   DecimalsUnknown,
		TokenBDecimals:   DecimalsUnknown,
		LpMint:           NotApplicable,
		FeeNumerator:     binStep * baseFactor,
		FeeDenominator:   100_000_000,
		StatusCode:       status,
		EmbeddedReserves: true,
		ReserveA:         binReserveX,
		ReserveB:         binReserveY,
	}, nil
}
