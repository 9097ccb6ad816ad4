package poollens

import "fmt"

// Per-variant status codes accepted as tradable, and the canonical "active"
// value a healthy pool must report.
var (
	activeStatusSets = map[PoolVariant]map[uint64]bool{
		VariantV4:           {1: true, 6: true},
		VariantCLMM:         {0: true},
		VariantWhirlpool:    {0: true},
		VariantDLMM:         {0: true, 1: true},
		VariantBondingCurve: {0: true},
	}
	canonicalActiveStatus = map[PoolVariant]uint64{
		VariantV4:           6,
		VariantCLMM:         0,
		VariantWhirlpool:    0,
		VariantDLMM:         0,
		VariantBondingCurve: 0,
	}
)

// Health rule thresholds.
const (
	// minReserveRaw is the minimum-liquidity floor in raw base units.
	minReserveRaw = 1_000
	// lowLiquidityUnits is the decimal-adjusted warning floor.
	lowLiquidityUnits = 0.01
	// highFeeFraction flags implausibly expensive pools (5%).
	highFeeFraction = 0.05
)

// HealthReport is the outcome of evaluating one pool. Issues make the pool
// unhealthy; warnings do not.
type HealthReport struct {
	IsHealthy  bool     `json:"isHealthy"`
	Issues     []string `json:"issues"`
	Warnings   []string `json:"warnings"`
	StatusText string   `json:"statusText"`
}

// EvaluateHealth applies the per-variant rule set to a decoded pool and its
// resolved reserves. The rules are independent and non-exclusive. reserves
// may be nil when resolution failed; reserve-based rules are then skipped.
func EvaluateHealth(pool *ParsedPool, reserves *AdjustedReserves) HealthReport {
	report := HealthReport{
		Issues:   []string{},
		Warnings: []string{},
	}

	active := activeStatusSets[pool.Variant]
	if !active[pool.StatusCode] {
		report.Issues = append(report.Issues,
			fmt.Sprintf("status code %d is not in the %s active set", pool.StatusCode, pool.Variant))
	}

	if rawA, rawB, ok := rawReserves(pool, reserves); ok {
		if rawA < minReserveRaw || rawB < minReserveRaw {
			report.Issues = append(report.Issues,
				fmt.Sprintf("reserve below minimum liquidity floor (%d/%d raw)", rawA, rawB))
		}
	}

	if pool.LpMint != NotApplicable && pool.LpSupply == 0 {
		report.Issues = append(report.Issues, "lp supply is zero: pool drained or uninitialized")
	}

	if pool.FeeDenominator != 0 {
		if frac := float64(pool.FeeNumerator) / float64(pool.FeeDenominator); frac > highFeeFraction {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("unusually high fee: %s", FormatFee(pool.FeeNumerator, pool.FeeDenominator)))
		}
	}

	if reserves != nil {
		if reserves.TokenAAmount < lowLiquidityUnits || reserves.TokenBAmount < lowLiquidityUnits {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("very low liquidity: %.6f / %.6f", reserves.TokenAAmount, reserves.TokenBAmount))
		}
	}

	report.IsHealthy = len(report.Issues) == 0 && pool.StatusCode == canonicalActiveStatus[pool.Variant]
	report.StatusText = statusText(&report, pool)
	return report
}

func rawReserves(pool *ParsedPool, reserves *AdjustedReserves) (uint64, uint64, bool) {
	switch {
	case reserves != nil:
		return reserves.TokenARawAmount, reserves.TokenBRawAmount, true
	case pool.EmbeddedReserves:
		return pool.ReserveA, pool.ReserveB, true
	}
	return 0, 0, false
}

func statusText(report *HealthReport, pool *ParsedPool) string {
	switch {
	case report.IsHealthy:
		return "active"
	case len(report.Issues) > 0:
		return report.Issues[0]
	default:
		return fmt.Sprintf("tradable with non-canonical status code %d", pool.StatusCode)
	}
}
