package poollens

import (
	bin "github.com/gagliardetto/binary"
)

// bondingCurveState mirrors the pump.fun bonding-curve account body after the
// 8-byte discriminator. Borsh, little-endian.
type bondingCurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// pump.fun protocol constants: curve tokens always carry 6 decimals, the
// counter asset is native SOL, and the swap fee is a flat 1%.
const (
	curveTokenDecimals = 6
	solDecimals        = 9
)

// decodeBondingCurve extracts the normalized pool state from a pump.fun
// bonding-curve account. The curve account does not reference its token mint
// or any vaults, so those fields carry sentinels; real reserves are embedded.
// A completed curve (migrated to an AMM) is no longer tradable and maps to a
// non-zero status code.
func decodeBondingCurve(data []byte) (*ParsedPool, error) {
	l := Registry[VariantBondingCurve]
	if err := requireLen(l, data); err != nil {
		return nil, err
	}

	var state bondingCurveState
	dec := bin.NewBorshDecoder(data[anchorDiscriminator:])
	if err := dec.Decode(&state); err != nil {
		return nil, &StructuralValidationError{Variant: VariantBondingCurve, Field: "state", Reason: err.Error()}
	}

	var status uint64
	if state.Complete {
		status = 1
	}

	return &ParsedPool{
		Variant:          VariantBondingCurve,
		TokenAMint:       NotApplicable,
		TokenBMint:       NATIVE_SOL_MINT.String(),
		TokenAVault:      NotApplicable,
		TokenBVault:      NotApplicable,
		TokenADecimals:   curveTokenDecimals,
		TokenBDecimals:   solDecimals,
		LpMint:           NotApplicable,
		FeeNumerator:     1,
		FeeDenominator:   100,
		StatusCode:       status,
		EmbeddedReserves: true,
		ReserveA:         state.RealTokenReserves,
		ReserveB:         state.RealSolReserves,
	}, nil
}
