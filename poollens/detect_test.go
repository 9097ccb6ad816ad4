package poollens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRaydiumV4ExactSize(t *testing.T) {
	d := NewDetector(nil)
	res := d.Detect(v4Fixture(), "pool1")

	assert.Equal(t, VariantV4, res.Variant)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, RaydiumV4StateLen, res.DeclaredSize)
	assert.Nil(t, res.Discriminator)
}

func TestDetectWhirlpoolDiscriminatorAndSize(t *testing.T) {
	d := NewDetector(nil)
	res := d.Detect(whirlpoolFixture(), "pool2")

	assert.Equal(t, VariantWhirlpool, res.Variant)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, []byte(WhirlpoolDiscriminator), res.Discriminator)
}

func TestDetectWhirlpoolSizeWithoutDiscriminator(t *testing.T) {
	buf := whirlpoolFixture()
	buf[0] ^= 0xff

	res := NewDetector(nil).Detect(buf, "pool3")
	assert.Equal(t, VariantUnknown, res.Variant)
}

func TestDetectBondingCurveDiscriminatorWins(t *testing.T) {
	d := NewDetector(nil)
	res := d.Detect(bondingCurveFixture(false), "curve1")

	assert.Equal(t, VariantBondingCurve, res.Variant)
	assert.Equal(t, ConfidenceHigh, res.Confidence)

	// The discriminator beats size rules even on an oversized buffer.
	big := make([]byte, RaydiumV4StateLen)
	copy(big, BondingCurveDiscriminator)
	res = d.Detect(big, "curve2")
	assert.Equal(t, VariantBondingCurve, res.Variant)
}

func TestDetectDLMMStructuralValidation(t *testing.T) {
	d := NewDetector(nil)

	res := d.Detect(dlmmFixture(), "pair1")
	assert.Equal(t, VariantDLMM, res.Variant)
	assert.Equal(t, ConfidenceHigh, res.Confidence)

	// Same size but all-zero pubkeys must not classify.
	res = d.Detect(make([]byte, DLMMPairLen), "pair2")
	assert.Equal(t, VariantUnknown, res.Variant)

	// Fee factor outside the plausible range must not classify either.
	buf := dlmmFixture()
	putU16(buf, Registry[VariantDLMM].Fields["baseFactor"].Offset, 60_000)
	res = d.Detect(buf, "pair3")
	assert.Equal(t, VariantUnknown, res.Variant)
}

func TestDetectCLMMStructuralValidation(t *testing.T) {
	d := NewDetector(nil)

	res := d.Detect(clmmFixture(), "clmm1")
	assert.Equal(t, VariantCLMM, res.Variant)
	assert.Equal(t, ConfidenceHigh, res.Confidence)

	res = d.Detect(make([]byte, CLMMPoolStateLen), "clmm2")
	assert.Equal(t, VariantUnknown, res.Variant)
}

func TestDetectV4DriftBand(t *testing.T) {
	d := NewDetector(nil)

	res := d.Detect(make([]byte, 748), "drift1")
	assert.Equal(t, VariantV4, res.Variant)
	assert.Equal(t, ConfidenceMedium, res.Confidence)

	// The band is half-open: the exact size is the High-confidence rule and
	// one byte below the band falls through.
	res = d.Detect(make([]byte, 743), "drift2")
	assert.Equal(t, VariantUnknown, res.Variant)
}

func TestDetectV4DriftBandDisabled(t *testing.T) {
	d := NewDetector(nil)
	d.DisableV4DriftRule = true

	res := d.Detect(make([]byte, 748), "drift3")
	assert.Equal(t, VariantUnknown, res.Variant)
	assert.Equal(t, ConfidenceLow, res.Confidence)
}

func TestDetectUnknown(t *testing.T) {
	res := NewDetector(nil).Detect(make([]byte, 100), "junk")

	assert.Equal(t, VariantUnknown, res.Variant)
	assert.Equal(t, ConfidenceLow, res.Confidence)
	assert.NotEmpty(t, res.Reason)
}

func TestDetectEmptyBuffer(t *testing.T) {
	res := NewDetector(nil).Detect(nil, "empty")
	assert.Equal(t, VariantUnknown, res.Variant)
}

func TestDetectDeterministic(t *testing.T) {
	d := NewDetector(nil)
	for _, buf := range [][]byte{v4Fixture(), whirlpoolFixture(), clmmFixture(), dlmmFixture(), bondingCurveFixture(true)} {
		first := d.Detect(buf, "x")
		second := d.Detect(buf, "x")
		require.Equal(t, first, second)
	}
}
