package poollens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func healthyV4Pool() *ParsedPool {
	return &ParsedPool{
		Variant:        VariantV4,
		TokenAMint:     NATIVE_SOL_MINT.String(),
		TokenBMint:     USDC_MINT.String(),
		TokenAVault:    testKey(0x11).String(),
		TokenBVault:    testKey(0x22).String(),
		TokenADecimals: 9,
		TokenBDecimals: 6,
		LpMint:         testKey(0x33).String(),
		LpSupply:       1_000_000,
		FeeNumerator:   25,
		FeeDenominator: 10_000,
		StatusCode:     6,
	}
}

func healthyReserves() *AdjustedReserves {
	return &AdjustedReserves{
		TokenAAmount:    100,
		TokenBAmount:    15_000,
		TokenARawAmount: 100_000_000_000,
		TokenBRawAmount: 15_000_000_000,
	}
}

func TestEvaluateHealthHappyPath(t *testing.T) {
	report := EvaluateHealth(healthyV4Pool(), healthyReserves())

	assert.True(t, report.IsHealthy)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, "active", report.StatusText)
}

func TestEvaluateHealthNonCanonicalStatus(t *testing.T) {
	pool := healthyV4Pool()
	pool.StatusCode = 1 // tradable but not the canonical active value

	report := EvaluateHealth(pool, healthyReserves())
	assert.False(t, report.IsHealthy)
	assert.Empty(t, report.Issues)
	assert.Contains(t, report.StatusText, "non-canonical status code 1")
}

func TestEvaluateHealthInactiveStatus(t *testing.T) {
	pool := healthyV4Pool()
	pool.StatusCode = 4

	report := EvaluateHealth(pool, healthyReserves())
	assert.False(t, report.IsHealthy)
	assert.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "status code 4")
}

func TestEvaluateHealthReserveFloor(t *testing.T) {
	reserves := healthyReserves()
	reserves.TokenARawAmount = 999

	report := EvaluateHealth(healthyV4Pool(), reserves)
	assert.False(t, report.IsHealthy)
	assert.Contains(t, report.Issues[0], "minimum liquidity floor")
}

func TestEvaluateHealthLpDrained(t *testing.T) {
	pool := healthyV4Pool()
	pool.LpSupply = 0

	report := EvaluateHealth(pool, healthyReserves())
	assert.False(t, report.IsHealthy)
	assert.Contains(t, report.Issues[0], "lp supply is zero")
}

func TestEvaluateHealthLpNotApplicable(t *testing.T) {
	// Tick-based pools have no LP mint; zero supply there is not a drain.
	pool := healthyV4Pool()
	pool.Variant = VariantWhirlpool
	pool.StatusCode = 0
	pool.LpMint = NotApplicable
	pool.LpSupply = 0
	pool.FeeNumerator = 3000
	pool.FeeDenominator = 1_000_000

	report := EvaluateHealth(pool, healthyReserves())
	assert.True(t, report.IsHealthy)
}

func TestEvaluateHealthHighFeeWarning(t *testing.T) {
	pool := healthyV4Pool()
	pool.FeeNumerator = 600 // 6%

	report := EvaluateHealth(pool, healthyReserves())
	assert.True(t, report.IsHealthy) // warnings never flip health
	assert.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "6%")
}

func TestEvaluateHealthLowLiquidityWarning(t *testing.T) {
	reserves := healthyReserves()
	reserves.TokenAAmount = 0.001
	reserves.TokenARawAmount = 1_000_000 // above the raw floor

	report := EvaluateHealth(healthyV4Pool(), reserves)
	assert.True(t, report.IsHealthy)
	assert.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "very low liquidity")
}

func TestEvaluateHealthEmbeddedReservesWithoutResolution(t *testing.T) {
	pool := &ParsedPool{
		Variant:          VariantBondingCurve,
		LpMint:           NotApplicable,
		FeeNumerator:     1,
		FeeDenominator:   100,
		StatusCode:       0,
		EmbeddedReserves: true,
		ReserveA:         500, // below the floor
		ReserveB:         2_000_000,
	}

	report := EvaluateHealth(pool, nil)
	assert.False(t, report.IsHealthy)
	assert.Contains(t, report.Issues[0], "minimum liquidity floor")
}

func TestFormatFee(t *testing.T) {
	assert.Equal(t, "0.25%", FormatFee(25, 10_000))
	assert.Equal(t, "0.3%", FormatFee(3000, 1_000_000))
	assert.Equal(t, "1%", FormatFee(1, 100))
	assert.Equal(t, "0.05%", FormatFee(50_000, 100_000_000))
	assert.Equal(t, "0%", FormatFee(0, 10_000))
	assert.Equal(t, NotApplicable, FormatFee(25, 0))
}
