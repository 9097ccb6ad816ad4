package poollens

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPair = MintPair{
	TokenAMint: "TokenAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	TokenBMint: NATIVE_SOL_MINT.String(),
}

func swapRecord(sig string, ts int64, wallet string, deltas ...BalanceDelta) RawSwapRecord {
	return RawSwapRecord{Signature: sig, TimestampSeconds: ts, Wallet: wallet, Deltas: deltas}
}

func TestClassifyBuy(t *testing.T) {
	rec := swapRecord("sig1", 1_700_000_000, "walletA",
		BalanceDelta{Mint: testPair.TokenAMint, Amount: 5_000_000, Decimals: 6},
		BalanceDelta{Mint: testPair.TokenBMint, Amount: -1_000_000_000, Decimals: 9},
	)

	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionBuy, ps.Direction)
	assert.Equal(t, "sig1", ps.Signature)
	assert.Equal(t, "walletA", ps.Wallet)
	assert.Equal(t, uint64(1_000_000_000), ps.AmountIn)
	assert.Equal(t, uint64(5_000_000), ps.AmountOut)
}

func TestClassifySell(t *testing.T) {
	rec := swapRecord("sig2", 1_700_000_060, "walletA",
		BalanceDelta{Mint: testPair.TokenAMint, Amount: -5_000_000, Decimals: 6},
		BalanceDelta{Mint: testPair.TokenBMint, Amount: 990_000_000, Decimals: 9},
	)

	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionSell, ps.Direction)
	assert.Equal(t, uint64(5_000_000), ps.AmountIn)
	assert.Equal(t, uint64(990_000_000), ps.AmountOut)
}

func TestClassifyCounterAssetFallback(t *testing.T) {
	// Only the counter-asset leg is visible: spending it still means a buy.
	rec := swapRecord("sig3", 1_700_000_120, "walletB",
		BalanceDelta{Mint: testPair.TokenBMint, Amount: -2_000_000_000, Decimals: 9},
	)
	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionBuy, ps.Direction)

	rec = swapRecord("sig4", 1_700_000_180, "walletB",
		BalanceDelta{Mint: testPair.TokenBMint, Amount: 2_000_000_000, Decimals: 9},
	)
	ps = NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionSell, ps.Direction)
}

func TestClassifyIgnoresOutOfPairMints(t *testing.T) {
	rec := swapRecord("sig5", 1_700_000_240, "walletC",
		BalanceDelta{Mint: USDT_MINT.String(), Amount: 7_000_000, Decimals: 6},
	)
	assert.Nil(t, NewClassifier(nil).Classify(rec, testPair))
}

func TestClassifyDustIsNotASwap(t *testing.T) {
	rec := swapRecord("sig6", 1_700_000_300, "walletC",
		BalanceDelta{Mint: testPair.TokenAMint, Amount: 5, Decimals: 6},
		BalanceDelta{Mint: testPair.TokenBMint, Amount: -3, Decimals: 9},
	)
	assert.Nil(t, NewClassifier(nil).Classify(rec, testPair))
}

func TestClassifyNoDeltas(t *testing.T) {
	rec := swapRecord("sig7", 1_700_000_360, "walletC")
	assert.Nil(t, NewClassifier(nil).Classify(rec, testPair))
}

func TestClassifyMergesSplitDeltas(t *testing.T) {
	// Multi-hop routes produce several partial deltas on the same mint; the
	// net amount decides.
	rec := swapRecord("sig8", 1_700_000_420, "walletD",
		BalanceDelta{Mint: testPair.TokenAMint, Amount: 3_000_000, Decimals: 6},
		BalanceDelta{Mint: testPair.TokenAMint, Amount: -1_000_000, Decimals: 6},
		BalanceDelta{Mint: testPair.TokenBMint, Amount: -400_000_000, Decimals: 9},
	)

	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionBuy, ps.Direction)
	assert.Equal(t, uint64(2_000_000), ps.AmountOut)
}

func TestClassifyBatchDropsNonSwaps(t *testing.T) {
	recs := []RawSwapRecord{
		swapRecord("s1", 1, "w1", BalanceDelta{Mint: testPair.TokenAMint, Amount: 1_000_000}),
		swapRecord("s2", 2, "w1"), // no deltas
		swapRecord("s3", 3, "w2", BalanceDelta{Mint: testPair.TokenAMint, Amount: -1_000_000}),
	}

	out := NewClassifier(nil).ClassifyBatch(recs, testPair)
	require.Len(t, out, 2)
	assert.Equal(t, "s1", out[0].Signature)
	assert.Equal(t, "s3", out[1].Signature)
}

func TestFromBalanceDeltaTx(t *testing.T) {
	changes := []TokenBalanceChange{
		{UserAccount: "walletA", Mint: testPair.TokenAMint},
		{UserAccount: "walletB", Mint: testPair.TokenAMint}, // other wallet, dropped
		{UserAccount: "walletA", Mint: testPair.TokenBMint},
	}
	changes[0].RawTokenAmount.TokenAmount = "5000000"
	changes[0].RawTokenAmount.Decimals = 6
	changes[1].RawTokenAmount.TokenAmount = "-5000000"
	changes[2].RawTokenAmount.TokenAmount = "-1000000000"
	changes[2].RawTokenAmount.Decimals = 9

	rec := FromBalanceDeltaTx("sig9", 1_700_000_480, "walletA", changes)
	require.Len(t, rec.Deltas, 2)
	assert.Equal(t, int64(5_000_000), rec.Deltas[0].Amount)
	assert.Equal(t, int64(-1_000_000_000), rec.Deltas[1].Amount)

	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionBuy, ps.Direction)
}

func TestFromBalanceSnapshotTx(t *testing.T) {
	pre := []TokenBalanceSnapshot{
		{Owner: "walletA", Mint: testPair.TokenAMint, Amount: 10_000_000, Decimals: 6},
		{Owner: "walletA", Mint: testPair.TokenBMint, Amount: 5_000_000_000, Decimals: 9},
		{Owner: "walletZ", Mint: testPair.TokenAMint, Amount: 999, Decimals: 6},
	}
	post := []TokenBalanceSnapshot{
		{Owner: "walletA", Mint: testPair.TokenAMint, Amount: 4_000_000, Decimals: 6},
		{Owner: "walletA", Mint: testPair.TokenBMint, Amount: 6_000_000_000, Decimals: 9},
	}

	rec := FromBalanceSnapshotTx("sig10", 1_700_000_540, "walletA", pre, post)
	require.Len(t, rec.Deltas, 2)

	ps := NewClassifier(nil).Classify(rec, testPair)
	require.NotNil(t, ps)
	assert.Equal(t, DirectionSell, ps.Direction)
	assert.Equal(t, uint64(6_000_000), ps.AmountIn)
	assert.Equal(t, uint64(1_000_000_000), ps.AmountOut)
}

func TestClassifyDirectionInvariant(t *testing.T) {
	// Mirrored deltas must classify to opposite directions.
	c := NewClassifier(nil)
	for i, amt := range []int64{1_000, 250_000, 9_000_000_000} {
		buy := swapRecord(fmt.Sprintf("b%d", i), int64(i), "w",
			BalanceDelta{Mint: testPair.TokenAMint, Amount: amt})
		sell := swapRecord(fmt.Sprintf("s%d", i), int64(i), "w",
			BalanceDelta{Mint: testPair.TokenAMint, Amount: -amt})

		pb := c.Classify(buy, testPair)
		ps := c.Classify(sell, testPair)
		require.NotNil(t, pb)
		require.NotNil(t, ps)
		assert.Equal(t, DirectionBuy, pb.Direction)
		assert.Equal(t, DirectionSell, ps.Direction)
	}
}
