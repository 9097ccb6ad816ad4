package poollens

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// SwapDirection classifies one swap from the counter-party wallet's side.
type SwapDirection string

const (
	DirectionBuy  SwapDirection = "buy"
	DirectionSell SwapDirection = "sell"
)

// dustThresholdRaw is the absolute raw-unit delta below which a balance
// change is ignored for direction purposes, so fee-only transfers are not
// reclassified as swaps.
const dustThresholdRaw = 100

// BalanceDelta is one wallet's net balance change for one mint inside a
// transaction, in raw base units (positive = received).
type BalanceDelta struct {
	Mint     string `json:"mint"`
	Amount   int64  `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

// RawSwapRecord is the canonical per-transaction record the classifier
// consumes. Both upstream transaction shapes are normalized into it by the
// adapter functions below, keeping the classifier shape-agnostic.
type RawSwapRecord struct {
	Signature        string         `json:"signature"`
	TimestampSeconds int64          `json:"timestampSeconds"`
	Wallet           string         `json:"wallet"`
	Deltas           []BalanceDelta `json:"deltas"`
}

// MintPair names the pool's two mints. TokenAMint is the traded token whose
// wallet-side delta decides direction; TokenBMint is the counter asset
// (SOL/stable side).
type MintPair struct {
	TokenAMint string `json:"tokenAMint"`
	TokenBMint string `json:"tokenBMint"`
}

// ParsedSwap is the normalized classified swap, uniquely identified by its
// signature. Amounts are raw base units and always non-negative.
type ParsedSwap struct {
	Signature        string        `json:"signature"`
	TimestampSeconds int64         `json:"timestampSeconds"`
	Wallet           string        `json:"wallet"`
	Direction        SwapDirection `json:"direction"`
	AmountIn         uint64        `json:"amountIn"`
	AmountOut        uint64        `json:"amountOut"`
}

// Classifier derives swap direction from balance deltas. Direction is never
// taken from upstream "type" metadata: those labels are incomplete and
// protocol-specific, so it is always re-derived from the in-pair deltas.
type Classifier struct {
	Log *logrus.Logger
}

// NewClassifier returns a classifier logging through log. A nil log disables
// diagnostics.
func NewClassifier(log *logrus.Logger) *Classifier {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Classifier{Log: log}
}

// Classify turns one raw record into a ParsedSwap, or nil when the record is
// not a qualifying swap for this pool. Deltas on mints outside the pair are
// ignored; dust deltas do not count toward direction. With no in-pair delta
// above dust the record is rejected rather than guessed at.
func (c *Classifier) Classify(rec RawSwapRecord, pair MintPair) *ParsedSwap {
	var deltaA, deltaB int64
	var haveA, haveB bool

	for _, d := range rec.Deltas {
		switch d.Mint {
		case pair.TokenAMint:
			deltaA += d.Amount
			haveA = true
		case pair.TokenBMint:
			deltaB += d.Amount
			haveB = true
		}
	}

	if abs64(deltaA) < dustThresholdRaw {
		deltaA, haveA = 0, false
	}
	if abs64(deltaB) < dustThresholdRaw {
		deltaB, haveB = 0, false
	}
	if !haveA && !haveB {
		return nil
	}

	var dir SwapDirection
	switch {
	case deltaA > 0:
		dir = DirectionBuy
	case deltaA < 0:
		dir = DirectionSell
	case deltaB < 0:
		// Traded-token delta missing; the wallet spending the counter asset
		// still means it bought.
		dir = DirectionBuy
	default:
		dir = DirectionSell
	}

	var amountIn, amountOut uint64
	for _, d := range []int64{deltaA, deltaB} {
		switch {
		case d > 0:
			amountOut += uint64(d)
		case d < 0:
			amountIn += uint64(-d)
		}
	}

	return &ParsedSwap{
		Signature:        rec.Signature,
		TimestampSeconds: rec.TimestampSeconds,
		Wallet:           rec.Wallet,
		Direction:        dir,
		AmountIn:         amountIn,
		AmountOut:        amountOut,
	}
}

// ClassifyBatch folds a slice of raw records through Classify, silently
// dropping non-swaps so one bad record never aborts the batch.
func (c *Classifier) ClassifyBatch(recs []RawSwapRecord, pair MintPair) []ParsedSwap {
	out := make([]ParsedSwap, 0, len(recs))
	for _, rec := range recs {
		if ps := c.Classify(rec, pair); ps != nil {
			out = append(out, *ps)
		}
	}
	return out
}

// ---- upstream shape adapters ----

// TokenBalanceChange is the pre-aggregated per-transaction balance-delta
// shape produced by enhanced-transaction indexers.
type TokenBalanceChange struct {
	UserAccount    string `json:"userAccount"`
	TokenAccount   string `json:"tokenAccount"`
	Mint           string `json:"mint"`
	RawTokenAmount struct {
		TokenAmount string `json:"tokenAmount"`
		Decimals    uint8  `json:"decimals"`
	} `json:"rawTokenAmount"`
}

// FromBalanceDeltaTx normalizes a pre-aggregated balance-delta transaction
// into the canonical record, keeping only changes owned by wallet.
func FromBalanceDeltaTx(signature string, timestamp int64, wallet string, changes []TokenBalanceChange) RawSwapRecord {
	rec := RawSwapRecord{Signature: signature, TimestampSeconds: timestamp, Wallet: wallet}
	for _, ch := range changes {
		if ch.UserAccount != wallet {
			continue
		}
		amt, err := strconv.ParseInt(ch.RawTokenAmount.TokenAmount, 10, 64)
		if err != nil {
			continue
		}
		rec.Deltas = append(rec.Deltas, BalanceDelta{
			Mint:     ch.Mint,
			Amount:   amt,
			Decimals: ch.RawTokenAmount.Decimals,
		})
	}
	return rec
}

// TokenBalanceSnapshot is one side of the raw instruction+balance-snapshot
// shape: a wallet's token balance before or after the transaction.
type TokenBalanceSnapshot struct {
	Owner    string `json:"owner"`
	Mint     string `json:"mint"`
	Amount   uint64 `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

// FromBalanceSnapshotTx normalizes pre/post balance snapshots into the
// canonical record by diffing per mint for the given wallet.
func FromBalanceSnapshotTx(signature string, timestamp int64, wallet string, pre, post []TokenBalanceSnapshot) RawSwapRecord {
	rec := RawSwapRecord{Signature: signature, TimestampSeconds: timestamp, Wallet: wallet}

	type mintState struct {
		pre, post uint64
		decimals  uint8
	}
	byMint := make(map[string]*mintState)
	for _, b := range pre {
		if b.Owner != wallet {
			continue
		}
		st := byMint[b.Mint]
		if st == nil {
			st = &mintState{decimals: b.Decimals}
			byMint[b.Mint] = st
		}
		st.pre += b.Amount
	}
	for _, b := range post {
		if b.Owner != wallet {
			continue
		}
		st := byMint[b.Mint]
		if st == nil {
			st = &mintState{decimals: b.Decimals}
			byMint[b.Mint] = st
		}
		st.post += b.Amount
	}

	for mint, st := range byMint {
		delta := int64(st.post) - int64(st.pre)
		if delta == 0 {
			continue
		}
		rec.Deltas = append(rec.Deltas, BalanceDelta{Mint: mint, Amount: delta, Decimals: st.decimals})
	}
	return rec
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
