package poollens

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Fixture builders assemble account buffers field by field from the layout
// registry offsets, so the tests stay valid if the registry moves.

func putU16(buf []byte, off uint64, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
func putU32(buf []byte, off uint64, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
func putU64(buf []byte, off uint64, v uint64) { binary.LittleEndian.PutUint64(buf[off:], v) }
func putKey(buf []byte, off uint64, k solana.PublicKey) {
	copy(buf[off:], k[:])
}

// testKey builds a deterministic non-zero public key from a fill byte.
func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func v4Fixture() []byte {
	l := Registry[VariantV4]
	buf := make([]byte, RaydiumV4StateLen)
	putU64(buf, l.Fields["status"].Offset, 6)
	putU64(buf, l.Fields["baseDecimal"].Offset, 9)
	putU64(buf, l.Fields["quoteDecimal"].Offset, 6)
	putU64(buf, l.Fields["swapFeeNumerator"].Offset, 25)
	putU64(buf, l.Fields["swapFeeDenominator"].Offset, 10_000)
	putKey(buf, l.Fields["baseVault"].Offset, testKey(0x11))
	putKey(buf, l.Fields["quoteVault"].Offset, testKey(0x22))
	putKey(buf, l.Fields["baseMint"].Offset, NATIVE_SOL_MINT)
	putKey(buf, l.Fields["quoteMint"].Offset, USDC_MINT)
	putKey(buf, l.Fields["lpMint"].Offset, testKey(0x33))
	putU64(buf, l.Fields["lpReserve"].Offset, 1_000_000)
	return buf
}

func whirlpoolFixture() []byte {
	l := Registry[VariantWhirlpool]
	buf := make([]byte, WhirlpoolStateLen)
	copy(buf, WhirlpoolDiscriminator)
	putU16(buf, l.Fields["tickSpacing"].Offset, 64)
	putU16(buf, l.Fields["feeRate"].Offset, 3000)
	putU64(buf, l.Fields["liquidity"].Offset, 500_000) // low word of the u128
	putKey(buf, l.Fields["tokenMintA"].Offset, testKey(0x44))
	putKey(buf, l.Fields["tokenVaultA"].Offset, testKey(0x55))
	putKey(buf, l.Fields["tokenMintB"].Offset, NATIVE_SOL_MINT)
	putKey(buf, l.Fields["tokenVaultB"].Offset, testKey(0x66))
	return buf
}

func clmmFixture() []byte {
	l := Registry[VariantCLMM]
	buf := make([]byte, CLMMPoolStateLen)
	putKey(buf, l.Fields["tokenMint0"].Offset, testKey(0x77))
	putKey(buf, l.Fields["tokenMint1"].Offset, USDC_MINT)
	putKey(buf, l.Fields["tokenVault0"].Offset, testKey(0x88))
	putKey(buf, l.Fields["tokenVault1"].Offset, testKey(0x99))
	buf[l.Fields["mintDecimals0"].Offset] = 9
	buf[l.Fields["mintDecimals1"].Offset] = 6
	putU16(buf, l.Fields["tickSpacing"].Offset, 60)
	putU64(buf, l.Fields["liquidity"].Offset, 123_456)
	putU32(buf, l.Fields["feeRate"].Offset, 2500)
	buf[l.Fields["status"].Offset] = 0
	return buf
}

func dlmmFixture() []byte {
	l := Registry[VariantDLMM]
	buf := make([]byte, DLMMPairLen)
	putU16(buf, l.Fields["baseFactor"].Offset, 5000)
	putU32(buf, l.Fields["activeId"].Offset, 8_388_608)
	putU16(buf, l.Fields["binStep"].Offset, 10)
	buf[l.Fields["status"].Offset] = 0
	putKey(buf, l.Fields["tokenXMint"].Offset, testKey(0xaa))
	putKey(buf, l.Fields["tokenYMint"].Offset, NATIVE_SOL_MINT)
	putKey(buf, l.Fields["reserveX"].Offset, testKey(0xbb))
	putKey(buf, l.Fields["reserveY"].Offset, testKey(0xcc))
	putU64(buf, l.Fields["binReserveX"].Offset, 2_000_000)
	putU64(buf, l.Fields["binReserveY"].Offset, 3_000_000)
	return buf
}

func bondingCurveFixture(complete bool) []byte {
	l := Registry[VariantBondingCurve]
	buf := make([]byte, BondingCurveLen)
	copy(buf, BondingCurveDiscriminator)
	putU64(buf, l.Fields["virtualTokenReserves"].Offset, 1_073_000_000_000_000)
	putU64(buf, l.Fields["virtualSolReserves"].Offset, 30_000_000_000)
	putU64(buf, l.Fields["realTokenReserves"].Offset, 793_100_000_000_000)
	putU64(buf, l.Fields["realSolReserves"].Offset, 12_000_000_000)
	putU64(buf, l.Fields["tokenTotalSupply"].Offset, 1_000_000_000_000_000)
	if complete {
		buf[l.Fields["complete"].Offset] = 1
	}
	return buf
}
