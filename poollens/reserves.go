package poollens

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/AlekSi/pointer"
	"github.com/sirupsen/logrus"
)

// Ledger is the narrow contract to the ledger-RPC collaborator. Connection
// management, commitment levels and retries all live behind it.
type Ledger interface {
	GetAccountBytes(ctx context.Context, address string) ([]byte, error)
	GetTokenAccountBalance(ctx context.Context, address string) (uint64, error)
}

// PriceFeed is the narrow contract to the price collaborator. A missing price
// must come back as ErrPriceUnavailable (or any error); it is never fatal.
type PriceFeed interface {
	GetUsdPrice(ctx context.Context, symbol string) (float64, error)
}

// AdjustedReserves is the decimal-adjusted view of one pool's reserves,
// produced once per reserve query and immutable afterwards.
type AdjustedReserves struct {
	TokenAMint string `json:"tokenAMint"`
	TokenBMint string `json:"tokenBMint"`

	TokenAAmount float64 `json:"tokenAAmount"`
	TokenBAmount float64 `json:"tokenBAmount"`

	TokenARawAmount uint64 `json:"tokenARawAmount"`
	TokenBRawAmount uint64 `json:"tokenBRawAmount"`

	TokenASymbol string `json:"tokenASymbol,omitempty"`
	TokenBSymbol string `json:"tokenBSymbol,omitempty"`

	PoolType   PoolVariant `json:"poolType"`
	PoolStatus string      `json:"poolStatus"`
	FeeDisplay string      `json:"feeDisplay"`

	LpMint   string `json:"lpMint"`
	LpSupply uint64 `json:"lpSupply"`

	TvlUsd *float64 `json:"tvlUsd,omitempty"`
}

// ReserveResolver turns a ParsedPool into AdjustedReserves. It is the only
// component in the core that performs I/O; collaborators are injected, never
// held as package state, so concurrent resolutions do not interfere.
type ReserveResolver struct {
	Ledger Ledger
	Prices PriceFeed // optional; nil disables USD valuation
	Log    *logrus.Logger
}

// NewReserveResolver wires a resolver to its collaborators.
func NewReserveResolver(ledger Ledger, prices PriceFeed, log *logrus.Logger) *ReserveResolver {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &ReserveResolver{Ledger: ledger, Prices: prices, Log: log}
}

// Resolve fetches current reserves for the pool and returns the adjusted
// view. Vault-balance pools issue both lookups concurrently and join before
// building the result; pools whose account stores no token decimals get them
// from the mint accounts. Failure of any lookup is a PoolUnavailableError
// and no partial struct is returned. Timeouts and cancellation are the
// ledger collaborator's contract; no retries happen here.
func (r *ReserveResolver) Resolve(ctx context.Context, pool *ParsedPool) (*AdjustedReserves, error) {
	var rawA, rawB uint64

	if pool.EmbeddedReserves {
		rawA, rawB = pool.ReserveA, pool.ReserveB
	} else {
		var (
			wg         sync.WaitGroup
			errA, errB error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			rawA, errA = r.Ledger.GetTokenAccountBalance(ctx, pool.TokenAVault)
		}()
		go func() {
			defer wg.Done()
			rawB, errB = r.Ledger.GetTokenAccountBalance(ctx, pool.TokenBVault)
		}()
		wg.Wait()
		if errA != nil {
			return nil, &PoolUnavailableError{Account: pool.TokenAVault, Err: errA}
		}
		if errB != nil {
			return nil, &PoolUnavailableError{Account: pool.TokenBVault, Err: errB}
		}
	}

	decA, decB := pool.TokenADecimals, pool.TokenBDecimals
	if decA == DecimalsUnknown {
		d, err := r.mintDecimals(ctx, pool.TokenAMint)
		if err != nil {
			return nil, &PoolUnavailableError{Account: pool.TokenAMint, Err: err}
		}
		decA = d
	}
	if decB == DecimalsUnknown {
		d, err := r.mintDecimals(ctx, pool.TokenBMint)
		if err != nil {
			return nil, &PoolUnavailableError{Account: pool.TokenBMint, Err: err}
		}
		decB = d
	}

	out := &AdjustedReserves{
		TokenAMint:      pool.TokenAMint,
		TokenBMint:      pool.TokenBMint,
		TokenAAmount:    adjustDecimals(rawA, decA),
		TokenBAmount:    adjustDecimals(rawB, decB),
		TokenARawAmount: rawA,
		TokenBRawAmount: rawB,
		TokenASymbol:    SymbolForMint(pool.TokenAMint),
		TokenBSymbol:    SymbolForMint(pool.TokenBMint),
		PoolType:        pool.Variant,
		FeeDisplay:      FormatFee(pool.FeeNumerator, pool.FeeDenominator),
		LpMint:          pool.LpMint,
		LpSupply:        pool.LpSupply,
	}

	out.PoolStatus = EvaluateHealth(pool, out).StatusText

	if tvl, ok := r.tvlUsd(ctx, out); ok {
		out.TvlUsd = pointer.ToFloat64(tvl)
	}

	return out, nil
}

// tvlUsd sums the USD value of both sides. Any missing price or symbol
// degrades to "no TVL", never to a failure.
func (r *ReserveResolver) tvlUsd(ctx context.Context, res *AdjustedReserves) (float64, bool) {
	if r.Prices == nil {
		return 0, false
	}
	var total float64
	for _, side := range []struct {
		symbol string
		amount float64
	}{
		{res.TokenASymbol, res.TokenAAmount},
		{res.TokenBSymbol, res.TokenBAmount},
	} {
		if side.symbol == "" {
			return 0, false
		}
		px, err := r.Prices.GetUsdPrice(ctx, side.symbol)
		if err != nil || px <= 0 {
			r.Log.WithField("symbol", side.symbol).Debugf("usd price unavailable: %v", err)
			return 0, false
		}
		total += side.amount * px
	}
	return total, true
}

// SPL mint account layout: the decimals byte sits after the authority option,
// authority and supply fields.
const (
	splMintDecimalsOffset = 44
	splMintAccountLen     = 82
)

// mintDecimals reads the decimals byte of an SPL mint account, for protocols
// whose pool account does not store token decimals.
func (r *ReserveResolver) mintDecimals(ctx context.Context, mint string) (uint8, error) {
	data, err := r.Ledger.GetAccountBytes(ctx, mint)
	if err != nil {
		return 0, err
	}
	if len(data) < splMintAccountLen {
		return 0, fmt.Errorf("mint %s: account data too short (%d bytes)", mint, len(data))
	}
	return data[splMintDecimalsOffset], nil
}

func adjustDecimals(raw uint64, decimals uint8) float64 {
	return float64(raw) / math.Pow10(int(decimals))
}

// FormatFee renders a numerator/denominator fee pair as a percentage string
// for the presentation boundary, e.g. "0.25%". Decoders never produce
// display strings themselves.
func FormatFee(num, den uint64) string {
	if den == 0 {
		return NotApplicable
	}
	pct := float64(num) / float64(den) * 100
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", pct), "0"), ".")
	if s == "" {
		s = "0"
	}
	return s + "%"
}
