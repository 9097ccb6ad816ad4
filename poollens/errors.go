package poollens

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrAccountNotFound means the ledger holds no bytes at the requested
	// address. Fatal to the single call, never retried here.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPriceUnavailable is non-fatal: USD-denominated fields are dropped
	// and the two USD-based analyzer rules are skipped.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// UnrecognizedStructureError is returned when decode is asked to handle a
// buffer the detector classified as Unknown. It carries the detector's
// best-guess reason.
type UnrecognizedStructureError struct {
	Address string
	Length  int
	Reason  string
}

func (e *UnrecognizedStructureError) Error() string {
	return fmt.Sprintf("unrecognized account structure (%d bytes): %s", e.Length, e.Reason)
}

// TruncatedAccountDataError is returned before any out-of-bounds read when a
// buffer is shorter than the variant's layout requires.
type TruncatedAccountDataError struct {
	Variant PoolVariant
	Need    int
	Got     int
}

func (e *TruncatedAccountDataError) Error() string {
	return fmt.Sprintf("truncated %s account data: need %d bytes, got %d", e.Variant, e.Need, e.Got)
}

// StructuralValidationError is returned when a pre-decode sanity check on a
// classified buffer fails.
type StructuralValidationError struct {
	Variant PoolVariant
	Field   string
	Reason  string
}

func (e *StructuralValidationError) Error() string {
	return fmt.Sprintf("%s structural validation failed on %s: %s", e.Variant, e.Field, e.Reason)
}

// PoolUnavailableError wraps a reserve-lookup I/O failure (vault balance or
// mint metadata) so callers can tell transient network trouble apart from bad
// account data and apply their own retry policy.
type PoolUnavailableError struct {
	Account string
	Err     error
}

func (e *PoolUnavailableError) Error() string {
	return fmt.Sprintf("pool unavailable: account %s lookup failed: %v", e.Account, e.Err)
}

func (e *PoolUnavailableError) Unwrap() error { return e.Err }
