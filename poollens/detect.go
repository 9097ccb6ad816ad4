package poollens

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// Confidence grades how strong the detection signal was.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DetectionResult is the outcome of classifying one raw account buffer.
// Variant is VariantUnknown iff no rule matched.
type DetectionResult struct {
	Variant       PoolVariant `json:"variant"`
	DeclaredSize  int         `json:"declaredSize"`
	Discriminator []byte      `json:"discriminator,omitempty"`
	Confidence    Confidence  `json:"confidence"`
	Reason        string      `json:"reason"`
}

// Detector classifies raw pool-account buffers into protocol variants. It is
// pure and safe for concurrent use on independent buffers.
//
// DisableV4DriftRule switches off the tolerance-band fallback that accepts
// buffers a few bytes short of the exact Raydium V4 size with Medium
// confidence. The band has no documented justification upstream and is a
// known source of Medium-confidence false positives, so it stays an isolated,
// switchable rule rather than part of the primary size check.
type Detector struct {
	Log                *logrus.Logger
	DisableV4DriftRule bool
}

// NewDetector returns a detector logging through log. A nil log disables
// diagnostics.
func NewDetector(log *logrus.Logger) *Detector {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Detector{Log: log}
}

// Detect applies the ordered rule set against the layout registry. Most
// specific signal first, first match wins. It never fails: malformed or
// ambiguous input resolves to VariantUnknown with Low confidence and a
// descriptive reason. address is used for diagnostics only.
func (d *Detector) Detect(data []byte, address string) DetectionResult {
	n := len(data)

	// 1. Bonding-curve discriminator beats every size heuristic.
	if hasDiscriminator(data, BondingCurveDiscriminator) {
		return DetectionResult{
			Variant:       VariantBondingCurve,
			DeclaredSize:  n,
			Discriminator: leading8(data),
			Confidence:    ConfidenceHigh,
			Reason:        "bonding-curve account discriminator match",
		}
	}

	// 2. Exact legacy AMM size; the V4 state carries no discriminator.
	if n == RaydiumV4StateLen {
		return DetectionResult{
			Variant:      VariantV4,
			DeclaredSize: n,
			Confidence:   ConfidenceHigh,
			Reason:       fmt.Sprintf("exact %d-byte raydium v4 state", RaydiumV4StateLen),
		}
	}

	// 3. Exact whirlpool size plus its discriminator.
	if n == WhirlpoolStateLen && hasDiscriminator(data, WhirlpoolDiscriminator) {
		return DetectionResult{
			Variant:       VariantWhirlpool,
			DeclaredSize:  n,
			Discriminator: leading8(data),
			Confidence:    ConfidenceHigh,
			Reason:        fmt.Sprintf("exact %d-byte whirlpool state with discriminator", WhirlpoolStateLen),
		}
	}

	// 4–5. Ranged size classes need structural validation: same-size accounts
	// from unrelated programs would otherwise slip through.
	for _, variant := range []PoolVariant{VariantDLMM, VariantCLMM} {
		l := Registry[variant]
		if n < l.MinSize || n > l.MaxSize {
			continue
		}
		if reason, ok := d.structurallyPlausible(l, data); ok {
			return DetectionResult{
				Variant:       variant,
				DeclaredSize:  n,
				Discriminator: leading8(data),
				Confidence:    ConfidenceHigh,
				Reason:        fmt.Sprintf("%d bytes within %s size class, structural validation passed", n, variant),
			}
		} else if d.Log != nil {
			d.Log.WithFields(logrus.Fields{
				"address": address,
				"variant": variant,
				"size":    n,
			}).Debugf("size class matched but %s", reason)
		}
	}

	// 6. Legacy size-drift band just below the exact V4 size.
	if !d.DisableV4DriftRule && n >= v4DriftBandLow && n < RaydiumV4StateLen {
		return DetectionResult{
			Variant:      VariantV4,
			DeclaredSize: n,
			Confidence:   ConfidenceMedium,
			Reason:       fmt.Sprintf("%d bytes within legacy v4 drift band [%d,%d)", n, v4DriftBandLow, RaydiumV4StateLen),
		}
	}

	// 7. Nothing matched.
	reason := fmt.Sprintf("no layout rule matched %d-byte account", n)
	if lead := leading8(data); lead != nil {
		reason += fmt.Sprintf(" (leading bytes %s)", base58.Encode(lead))
	}
	return DetectionResult{
		Variant:      VariantUnknown,
		DeclaredSize: n,
		Confidence:   ConfidenceLow,
		Reason:       reason,
	}
}

// structurallyPlausible runs the cheap pre-decode sanity checks from the
// layout table: candidate mint/vault ranges must not be all-zero and the fee
// field must sit in the protocol-plausible range.
func (d *Detector) structurallyPlausible(l *Layout, data []byte) (string, bool) {
	for _, name := range l.ValidatePubkeys {
		pk, err := l.ReadPubkey(data, name)
		if err != nil {
			return fmt.Sprintf("%s unreadable: %v", name, err), false
		}
		if pk.IsZero() {
			return fmt.Sprintf("%s is all-zero (uninitialized)", name), false
		}
	}
	if l.FeeField != "" {
		fee, err := l.ReadUint(data, l.FeeField)
		if err != nil {
			return fmt.Sprintf("%s unreadable: %v", l.FeeField, err), false
		}
		if fee < l.FeeMin || fee > l.FeeMax {
			return fmt.Sprintf("%s=%d outside [%d,%d]", l.FeeField, fee, l.FeeMin, l.FeeMax), false
		}
	}
	return "", true
}

func hasDiscriminator(data, disc []byte) bool {
	return len(data) >= len(disc) && bytes.Equal(data[:len(disc)], disc)
}

func leading8(data []byte) []byte {
	if len(data) < anchorDiscriminator {
		return nil
	}
	out := make([]byte, anchorDiscriminator)
	copy(out, data[:anchorDiscriminator])
	return out
}
