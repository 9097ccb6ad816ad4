package poollens

import "github.com/gagliardetto/solana-go"

// Program IDs of the supported AMM protocols.
var (
	RAYDIUM_V4_PROGRAM_ID     = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	RAYDIUM_CLMM_PROGRAM_ID   = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	ORCA_WHIRLPOOL_PROGRAM_ID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	METEORA_DLMM_PROGRAM_ID   = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	PUMP_FUN_PROGRAM_ID       = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
)

// Well-known mints.
var (
	NATIVE_SOL_MINT = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDC_MINT       = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDT_MINT       = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

// KnownSymbols maps mint addresses to ticker symbols usable as price-feed keys.
// Mints not listed here have no symbol and therefore no USD valuation.
var KnownSymbols = map[string]string{
	NATIVE_SOL_MINT.String(): "SOL",
	USDC_MINT.String():       "USDC",
	USDT_MINT.String():       "USDT",
}

// NotApplicable is the sentinel for normalized fields that have no meaning for
// a given protocol (e.g. lpMint on tick-based pools). Consumers must treat it
// as "not applicable", never as an address.
const NotApplicable = "N/A"

// DecimalsUnknown marks token decimals that the pool account does not store.
// The reserve resolver reads the real value from the mint account; consumers
// must never treat it as an exponent.
const DecimalsUnknown uint8 = 0xff

// SymbolForMint returns the ticker for a known mint, or "" when unknown.
func SymbolForMint(mint string) string {
	return KnownSymbols[mint]
}
