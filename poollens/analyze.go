package poollens

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Minimum sample sizes below which the pattern rules stay silent. Small
// batches produce counts and rankings but no suspicion flags.
const (
	washMinRoundTrips     = 10
	whaleMinTransactions  = 10
	imbalanceMinTxs       = 10
	rapidCycleMinPerSide  = 5
	rapidCycleMaxTotal    = 20
	clusteringMinTxs      = 10
	newWalletFloodMinSize = 10
	volumeSpikeMinTxs     = 100
	botSizingMinSized     = 20
)

// Pattern rule thresholds.
const (
	whaleVolumeShare    = 0.30
	buyImbalanceHigh    = 0.85
	buyImbalanceLow     = 0.15
	outlierMeanMultiple = 10.0
	clusteringShare     = 0.20
	newWalletShare      = 0.50
	newWalletMaxTxs     = 2
	volumeSpikeSlices   = 10
	volumeSpikeMultiple = 3.0
	botSizingShare      = 0.30
	botSizingBucketUsd  = 10.0
)

// WalletAggregate is one wallet's activity inside a batch. It exists only for
// the lifetime of one Analyze call.
type WalletAggregate struct {
	Wallet    string    `json:"wallet"`
	TxCount   int       `json:"txCount"`
	BuyCount  int       `json:"buyCount"`
	SellCount int       `json:"sellCount"`
	UsdVolume float64   `json:"usdVolume"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
}

// TimeRange bounds the batch in wall-clock terms.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TransactionSummary is the full analytics view over one classified batch.
type TransactionSummary struct {
	TotalCount         int               `json:"totalCount"`
	BuyCount           int               `json:"buyCount"`
	SellCount          int               `json:"sellCount"`
	UniqueWallets      int               `json:"uniqueWallets"`
	TopWallets         []WalletAggregate `json:"topWallets"`
	TopTraders         []WalletAggregate `json:"topTraders"`
	SuspiciousPatterns []string          `json:"suspiciousPatterns"`
	TimeRange          TimeRange         `json:"timeRange"`
}

// UsdVolumeFn values one swap in USD. A nil function disables the
// volume-based rules (whale dominance, outliers, bot sizing, spikes) without
// affecting the count-based ones.
type UsdVolumeFn func(swap ParsedSwap) float64

// Analyzer aggregates classified swaps into a summary with trading-pattern
// flags. Input batches must already be in ascending timestamp order; the
// analyzer never re-sorts.
type Analyzer struct {
	Log       *logrus.Logger
	UsdVolume UsdVolumeFn
}

// NewAnalyzer wires an analyzer. Both arguments may be nil.
func NewAnalyzer(log *logrus.Logger, usdVolume UsdVolumeFn) *Analyzer {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Analyzer{Log: log, UsdVolume: usdVolume}
}

// Analyze builds the summary for one batch. TotalCount always equals
// BuyCount plus SellCount; the pattern rules are independent, so one batch
// can raise several flags at once.
func (a *Analyzer) Analyze(swaps []ParsedSwap) TransactionSummary {
	summary := TransactionSummary{SuspiciousPatterns: []string{}}
	if len(swaps) == 0 {
		return summary
	}

	wallets := make(map[string]*WalletAggregate)
	var totalUsd float64
	usd := make([]float64, len(swaps))

	for i, s := range swaps {
		summary.TotalCount++
		if s.Direction == DirectionBuy {
			summary.BuyCount++
		} else {
			summary.SellCount++
		}

		seen := time.Unix(s.TimestampSeconds, 0).UTC()
		agg := wallets[s.Wallet]
		if agg == nil {
			agg = &WalletAggregate{Wallet: s.Wallet, FirstSeen: seen}
			wallets[s.Wallet] = agg
		}
		agg.LastSeen = seen
		agg.TxCount++
		if s.Direction == DirectionBuy {
			agg.BuyCount++
		} else {
			agg.SellCount++
		}
		if a.UsdVolume != nil {
			usd[i] = a.UsdVolume(s)
			agg.UsdVolume += usd[i]
			totalUsd += usd[i]
		}
	}

	summary.UniqueWallets = len(wallets)
	summary.TimeRange = TimeRange{
		Start: time.Unix(swaps[0].TimestampSeconds, 0).UTC(),
		End:   time.Unix(swaps[len(swaps)-1].TimestampSeconds, 0).UTC(),
	}

	byActivity := rankWallets(wallets, func(w *WalletAggregate) float64 { return float64(w.TxCount) })
	summary.TopWallets = truncateWallets(byActivity, 10)
	if a.UsdVolume != nil {
		byVolume := rankWallets(wallets, func(w *WalletAggregate) float64 { return w.UsdVolume })
		summary.TopTraders = truncateWallets(byVolume, 5)
	}

	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectWashTrading(wallets)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectWhales(wallets, totalUsd, summary.TotalCount)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectImbalance(summary)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectRapidCycling(wallets, summary.TotalCount)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectLargeOutliers(swaps, usd, totalUsd)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectTemporalClustering(swaps)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectNewWalletFlood(wallets)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectVolumeSpikes(swaps, usd)...)
	summary.SuspiciousPatterns = append(summary.SuspiciousPatterns, a.detectBotSizing(usd)...)

	return summary
}

// detectWashTrading flags wallets trading both directions repeatedly.
func (a *Analyzer) detectWashTrading(wallets map[string]*WalletAggregate) []string {
	var out []string
	for _, w := range sortedWallets(wallets) {
		if min(w.BuyCount, w.SellCount) >= washMinRoundTrips {
			out = append(out, fmt.Sprintf(
				"possible wash trading: wallet %s made %d buys and %d sells", w.Wallet, w.BuyCount, w.SellCount))
		}
	}
	return out
}

// detectWhales flags single wallets dominating USD volume.
func (a *Analyzer) detectWhales(wallets map[string]*WalletAggregate, totalUsd float64, totalCount int) []string {
	if a.UsdVolume == nil || totalUsd <= 0 || totalCount < whaleMinTransactions {
		return nil
	}
	var out []string
	for _, w := range sortedWallets(wallets) {
		if share := w.UsdVolume / totalUsd; share > whaleVolumeShare {
			out = append(out, fmt.Sprintf(
				"whale dominance: wallet %s accounts for %.1f%% of volume", w.Wallet, share*100))
		}
	}
	return out
}

// detectImbalance flags one-sided batches.
func (a *Analyzer) detectImbalance(summary TransactionSummary) []string {
	if summary.TotalCount < imbalanceMinTxs {
		return nil
	}
	ratio := float64(summary.BuyCount) / float64(summary.TotalCount)
	switch {
	case ratio > buyImbalanceHigh:
		return []string{fmt.Sprintf("extreme buy pressure: %.1f%% of transactions are buys", ratio*100)}
	case ratio < buyImbalanceLow:
		return []string{fmt.Sprintf("extreme sell pressure: %.1f%% of transactions are sells", (1-ratio)*100)}
	}
	return nil
}

// detectRapidCycling flags wallets round-tripping inside small batches,
// which wash-trading misses for short windows.
func (a *Analyzer) detectRapidCycling(wallets map[string]*WalletAggregate, totalCount int) []string {
	if totalCount >= rapidCycleMaxTotal {
		return nil
	}
	var out []string
	for _, w := range sortedWallets(wallets) {
		if min(w.BuyCount, w.SellCount) >= rapidCycleMinPerSide {
			out = append(out, fmt.Sprintf(
				"rapid cycling: wallet %s alternated %d buys and %d sells in a short window",
				w.Wallet, w.BuyCount, w.SellCount))
		}
	}
	return out
}

// detectLargeOutliers flags single swaps far above the batch mean.
func (a *Analyzer) detectLargeOutliers(swaps []ParsedSwap, usd []float64, totalUsd float64) []string {
	if a.UsdVolume == nil || totalUsd <= 0 || len(swaps) == 0 {
		return nil
	}
	mean := totalUsd / float64(len(swaps))
	var out []string
	for i, v := range usd {
		if v > mean*outlierMeanMultiple {
			out = append(out, fmt.Sprintf(
				"outsized transaction: %s is %.1fx the batch average", swaps[i].Signature, v/mean))
		}
	}
	return out
}

// detectTemporalClustering flags hour buckets holding an outsized share of
// the batch.
func (a *Analyzer) detectTemporalClustering(swaps []ParsedSwap) []string {
	if len(swaps) <= clusteringMinTxs {
		return nil
	}
	buckets := make(map[int64]int)
	for _, s := range swaps {
		buckets[s.TimestampSeconds/3600]++
	}
	var out []string
	for _, hour := range sortedKeys(buckets) {
		count := buckets[hour]
		if share := float64(count) / float64(len(swaps)); share > clusteringShare {
			out = append(out, fmt.Sprintf(
				"temporal clustering: %d transactions (%.1f%%) within hour bucket %s",
				count, share*100, time.Unix(hour*3600, 0).UTC().Format("2006-01-02T15Z")))
		}
	}
	return out
}

// detectNewWalletFlood flags batches dominated by wallets with almost no
// history inside the batch.
func (a *Analyzer) detectNewWalletFlood(wallets map[string]*WalletAggregate) []string {
	if len(wallets) <= newWalletFloodMinSize {
		return nil
	}
	fresh := 0
	for _, w := range wallets {
		if w.TxCount <= newWalletMaxTxs {
			fresh++
		}
	}
	if share := float64(fresh) / float64(len(wallets)); share > newWalletShare {
		return []string{fmt.Sprintf(
			"new wallet flood: %.1f%% of wallets have %d or fewer transactions", share*100, newWalletMaxTxs)}
	}
	return nil
}

// detectVolumeSpikes splits the batch into ten time slices and flags slices
// carrying a multiple of the average slice volume.
func (a *Analyzer) detectVolumeSpikes(swaps []ParsedSwap, usd []float64) []string {
	if a.UsdVolume == nil || len(swaps) <= volumeSpikeMinTxs {
		return nil
	}
	start := swaps[0].TimestampSeconds
	end := swaps[len(swaps)-1].TimestampSeconds
	if end <= start {
		return nil
	}
	span := end - start + 1
	slices := make([]float64, volumeSpikeSlices)
	var total float64
	for i, s := range swaps {
		idx := int((s.TimestampSeconds - start) * volumeSpikeSlices / span)
		if idx >= volumeSpikeSlices {
			idx = volumeSpikeSlices - 1
		}
		slices[idx] += usd[i]
		total += usd[i]
	}
	if total <= 0 {
		return nil
	}
	avg := total / volumeSpikeSlices
	var out []string
	for i, v := range slices {
		if v > avg*volumeSpikeMultiple {
			out = append(out, fmt.Sprintf(
				"volume spike: slice %d/%d carries %.1fx the average volume", i+1, volumeSpikeSlices, v/avg))
		}
	}
	return out
}

// detectBotSizing flags repeated identical trade sizes, bucketed to $10.
func (a *Analyzer) detectBotSizing(usd []float64) []string {
	if a.UsdVolume == nil {
		return nil
	}
	buckets := make(map[int64]int)
	sized := 0
	for _, v := range usd {
		if v <= 0 {
			continue
		}
		sized++
		buckets[int64(v/botSizingBucketUsd)]++
	}
	if sized <= botSizingMinSized {
		return nil
	}
	var out []string
	for _, b := range sortedKeys(buckets) {
		count := buckets[b]
		if share := float64(count) / float64(sized); share > botSizingShare {
			out = append(out, fmt.Sprintf(
				"uniform bot sizing: %d trades (%.1f%%) in the $%d-$%d range",
				count, share*100, b*int64(botSizingBucketUsd), (b+1)*int64(botSizingBucketUsd)))
		}
	}
	return out
}

func rankWallets(wallets map[string]*WalletAggregate, score func(*WalletAggregate) float64) []WalletAggregate {
	out := make([]WalletAggregate, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := score(&out[i]), score(&out[j])
		if si != sj {
			return si > sj
		}
		return out[i].Wallet < out[j].Wallet
	})
	return out
}

func truncateWallets(ws []WalletAggregate, n int) []WalletAggregate {
	if len(ws) > n {
		return ws[:n]
	}
	return ws
}

// sortedWallets orders by wallet address so pattern output is deterministic
// across runs.
func sortedWallets(wallets map[string]*WalletAggregate) []*WalletAggregate {
	out := make([]*WalletAggregate, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

func sortedKeys(m map[int64]int) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
