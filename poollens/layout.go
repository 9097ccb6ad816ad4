package poollens

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// PoolVariant tags which protocol layout an account was classified as.
type PoolVariant string

const (
	VariantV4           PoolVariant = "raydium_v4"
	VariantCLMM         PoolVariant = "raydium_clmm"
	VariantWhirlpool    PoolVariant = "orca_whirlpool"
	VariantDLMM         PoolVariant = "meteora_dlmm"
	VariantBondingCurve PoolVariant = "pump_bonding_curve"
	VariantUnknown      PoolVariant = "unknown"
)

// FieldKind is the wire width/decode rule of one layout field.
// All multi-byte integers are little-endian.
type FieldKind int

const (
	FieldU8 FieldKind = iota
	FieldU16
	FieldU32
	FieldU64
	FieldU128
	FieldPubkey
)

// Field describes one named byte range inside an account layout.
type Field struct {
	Offset uint64
	Kind   FieldKind
}

func (f Field) width() uint64 {
	switch f.Kind {
	case FieldU8:
		return 1
	case FieldU16:
		return 2
	case FieldU32:
		return 4
	case FieldU64:
		return 8
	case FieldU128:
		return 16
	case FieldPubkey:
		return 32
	}
	return 0
}

// Layout is the declarative description of one protocol's pool account:
// how to recognize it and where its fields live. The detector's structural
// validation and the decoders read from the same table so the two can not
// drift apart.
type Layout struct {
	Variant PoolVariant

	// Recognition signals. Zero values mean "signal not used".
	Discriminator []byte // leading bytes, anchor accounts only
	ExactLen      int
	MinSize       int // inclusive range bound for ranged size classes
	MaxSize       int

	// MinLen is the smallest buffer the decoder may touch. Decoding anything
	// shorter returns TruncatedAccountDataError before any read. Zero means
	// it is derived from the field table (the end of the farthest field).
	MinLen int

	Fields map[string]Field

	// Structural validation inputs (ranged size classes only).
	ValidatePubkeys []string
	FeeField        string
	FeeMin, FeeMax  uint64
}

// Discriminators of the anchor-based account types we recognize.
var (
	BondingCurveDiscriminator = []byte{0x17, 0xb7, 0xf8, 0x37, 0x60, 0xd8, 0xac, 0x60}
	WhirlpoolDiscriminator    = []byte{0x3f, 0x95, 0xd1, 0x0c, 0xe1, 0x80, 0x63, 0x09}
)

// Account size constants.
const (
	RaydiumV4StateLen   = 752
	WhirlpoolStateLen   = 653
	DLMMPairLen         = 904
	CLMMPoolStateLen    = 1544
	BondingCurveLen     = 49
	v4DriftBandLow      = 744 // legacy size drift tolerance, see detect.go
	dlmmSizeLow         = 880
	dlmmSizeHigh        = 920
	clmmSizeLow         = 1500
	clmmSizeHigh        = 1600
	anchorDiscriminator = 8
)

// Registry holds one layout per supported variant. Adding a protocol means
// adding an entry here plus a decoder in pool.go; the detector control flow
// stays untouched.
var Registry = map[PoolVariant]*Layout{
	VariantV4: {
		Variant:  VariantV4,
		ExactLen: RaydiumV4StateLen,
		// MinLen derived: the size-drift band accepts buffers a few bytes
		// short of ExactLen, and every field ends well before the band.
		Fields: map[string]Field{
			"status":             {Offset: 0, Kind: FieldU64},
			"baseDecimal":        {Offset: 32, Kind: FieldU64},
			"quoteDecimal":       {Offset: 40, Kind: FieldU64},
			"swapFeeNumerator":   {Offset: 176, Kind: FieldU64},
			"swapFeeDenominator": {Offset: 184, Kind: FieldU64},
			"baseVault":          {Offset: 336, Kind: FieldPubkey},
			"quoteVault":         {Offset: 368, Kind: FieldPubkey},
			"baseMint":           {Offset: 400, Kind: FieldPubkey},
			"quoteMint":          {Offset: 432, Kind: FieldPubkey},
			"lpMint":             {Offset: 464, Kind: FieldPubkey},
			"lpReserve":          {Offset: 720, Kind: FieldU64},
		},
	},
	VariantCLMM: {
		Variant: VariantCLMM,
		MinSize: clmmSizeLow,
		MaxSize: clmmSizeHigh,
		MinLen:  clmmSizeLow,
		Fields: map[string]Field{
			"tokenMint0":    {Offset: 73, Kind: FieldPubkey},
			"tokenMint1":    {Offset: 105, Kind: FieldPubkey},
			"tokenVault0":   {Offset: 137, Kind: FieldPubkey},
			"tokenVault1":   {Offset: 169, Kind: FieldPubkey},
			"mintDecimals0": {Offset: 233, Kind: FieldU8},
			"mintDecimals1": {Offset: 234, Kind: FieldU8},
			"tickSpacing":   {Offset: 235, Kind: FieldU16},
			"liquidity":     {Offset: 237, Kind: FieldU128},
			"feeRate":       {Offset: 273, Kind: FieldU32},
			"status":        {Offset: 277, Kind: FieldU8},
		},
		ValidatePubkeys: []string{"tokenMint0", "tokenMint1", "tokenVault0", "tokenVault1"},
		FeeField:        "feeRate",
		FeeMin:          1,         // hundredths of a basis point
		FeeMax:          1_000_000, // 100%
	},
	VariantWhirlpool: {
		Variant:       VariantWhirlpool,
		Discriminator: WhirlpoolDiscriminator,
		ExactLen:      WhirlpoolStateLen,
		MinLen:        WhirlpoolStateLen,
		Fields: map[string]Field{
			"tickSpacing": {Offset: 41, Kind: FieldU16},
			"feeRate":     {Offset: 45, Kind: FieldU16},
			"liquidity":   {Offset: 49, Kind: FieldU128},
			"tokenMintA":  {Offset: 101, Kind: FieldPubkey},
			"tokenVaultA": {Offset: 133, Kind: FieldPubkey},
			"tokenMintB":  {Offset: 181, Kind: FieldPubkey},
			"tokenVaultB": {Offset: 213, Kind: FieldPubkey},
		},
	},
	VariantDLMM: {
		Variant: VariantDLMM,
		MinSize: dlmmSizeLow,
		MaxSize: dlmmSizeHigh,
		MinLen:  dlmmSizeLow,
		Fields: map[string]Field{
			"baseFactor":  {Offset: 8, Kind: FieldU16},
			"activeId":    {Offset: 76, Kind: FieldU32},
			"binStep":     {Offset: 80, Kind: FieldU16},
			"status":      {Offset: 82, Kind: FieldU8},
			"tokenXMint":  {Offset: 88, Kind: FieldPubkey},
			"tokenYMint":  {Offset: 120, Kind: FieldPubkey},
			"reserveX":    {Offset: 152, Kind: FieldPubkey},
			"reserveY":    {Offset: 184, Kind: FieldPubkey},
			"binReserveX": {Offset: 216, Kind: FieldU64},
			"binReserveY": {Offset: 224, Kind: FieldU64},
		},
		ValidatePubkeys: []string{"tokenXMint", "tokenYMint", "reserveX", "reserveY"},
		FeeField:        "baseFactor",
		FeeMin:          1,
		FeeMax:          10_000,
	},
	VariantBondingCurve: {
		Variant:       VariantBondingCurve,
		Discriminator: BondingCurveDiscriminator,
		MinLen:        BondingCurveLen,
		Fields: map[string]Field{
			"virtualTokenReserves": {Offset: 8, Kind: FieldU64},
			"virtualSolReserves":   {Offset: 16, Kind: FieldU64},
			"realTokenReserves":    {Offset: 24, Kind: FieldU64},
			"realSolReserves":      {Offset: 32, Kind: FieldU64},
			"tokenTotalSupply":     {Offset: 40, Kind: FieldU64},
			"complete":             {Offset: 48, Kind: FieldU8},
		},
	},
}

func init() {
	for _, l := range Registry {
		if l.MinLen == 0 {
			l.MinLen = l.fieldSpan()
		}
	}
}

// fieldSpan is the smallest buffer covering every field in the table.
func (l *Layout) fieldSpan() int {
	var end uint64
	for _, f := range l.Fields {
		if e := f.Offset + f.width(); e > end {
			end = e
		}
	}
	return int(end)
}

// field reads are positional over a bin.Decoder so every access is
// bounds-checked the same way.

func (l *Layout) field(name string) (Field, error) {
	f, ok := l.Fields[name]
	if !ok {
		return Field{}, fmt.Errorf("layout %s has no field %q", l.Variant, name)
	}
	return f, nil
}

func (l *Layout) seek(data []byte, name string) (*bin.Decoder, Field, error) {
	f, err := l.field(name)
	if err != nil {
		return nil, f, err
	}
	if uint64(len(data)) < f.Offset+f.width() {
		return nil, f, &TruncatedAccountDataError{Variant: l.Variant, Need: int(f.Offset + f.width()), Got: len(data)}
	}
	dec := bin.NewBinDecoder(data)
	if err := dec.SetPosition(uint(f.Offset)); err != nil {
		return nil, f, err
	}
	return dec, f, nil
}

// ReadUint reads any integer field up to 64 bits wide.
func (l *Layout) ReadUint(data []byte, name string) (uint64, error) {
	dec, f, err := l.seek(data, name)
	if err != nil {
		return 0, err
	}
	switch f.Kind {
	case FieldU8:
		v, err := dec.ReadUint8()
		return uint64(v), err
	case FieldU16:
		v, err := dec.ReadUint16(bin.LE)
		return uint64(v), err
	case FieldU32:
		v, err := dec.ReadUint32(bin.LE)
		return uint64(v), err
	case FieldU64:
		return dec.ReadUint64(bin.LE)
	}
	return 0, fmt.Errorf("field %s.%s is not an integer", l.Variant, name)
}

// ReadU128 reads a 16-byte little-endian counter, clamping to MaxUint64 when
// the high word is set. Liquidity counters use this.
func (l *Layout) ReadU128(data []byte, name string) (uint64, error) {
	dec, f, err := l.seek(data, name)
	if err != nil {
		return 0, err
	}
	if f.Kind != FieldU128 {
		return 0, fmt.Errorf("field %s.%s is not u128", l.Variant, name)
	}
	v, err := dec.ReadUint128(bin.LE)
	if err != nil {
		return 0, err
	}
	if v.Hi != 0 {
		return ^uint64(0), nil
	}
	return v.Lo, nil
}

// ReadPubkey reads a 32-byte public key field.
func (l *Layout) ReadPubkey(data []byte, name string) (solana.PublicKey, error) {
	dec, f, err := l.seek(data, name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if f.Kind != FieldPubkey {
		return solana.PublicKey{}, fmt.Errorf("field %s.%s is not a pubkey", l.Variant, name)
	}
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
