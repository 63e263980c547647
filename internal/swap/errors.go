// internal/swap/errors.go
package swap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrInvalidInput marks a zero input amount or out-of-range slippage.
	ErrInvalidInput = errors.New("swap: invalid input")
	// ErrAmountTooSmall marks an input so small the pool leg rounds to zero.
	ErrAmountTooSmall = errors.New("swap: input too small, pool leg rounds to zero")
)

// ConcurrencyConflictError is the platform error raised when a transaction
// tries to create the contribution record and consume it in the same
// instruction. It looks transient but is deterministic; the remedy is the
// two-phase path, applied exactly once.
type ConcurrencyConflictError struct {
	OriginalError error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("swap: create-and-use conflict on contribution record: %v", e.OriginalError)
}

func (e *ConcurrencyConflictError) Unwrap() error { return e.OriginalError }

// IsConcurrencyConflict matches the runtime diagnostics for the simultaneous
// create-and-use case.
func IsConcurrencyConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already borrowed") ||
		strings.Contains(msg, "accountborrowfailed") ||
		strings.Contains(msg, "account in use")
}

// SlippageExceededError is the program-side rejection of a stale quote. It is
// never auto-resubmitted; a looser bound requires a fresh user intent.
type SlippageExceededError struct {
	MinAmountOut  uint64
	OriginalError error
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("swap: output below minimum %d, quote is stale: %v", e.MinAmountOut, e.OriginalError)
}

func (e *SlippageExceededError) Unwrap() error { return e.OriginalError }

// IsSlippageExceeded matches the program's insufficient-output rejection.
func IsSlippageExceeded(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient output amount") ||
		strings.Contains(msg, "exceededslippage") ||
		strings.Contains(msg, "slippage")
}

// SimulationError carries the raw pre-flight diagnostic. Operator-facing;
// callers should not surface the logs verbatim to end users.
type SimulationError struct {
	Diagnostic interface{}
	Logs       []string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("swap: simulation failed: %v", e.Diagnostic)
}

// AccountResolutionError marks a contribution record that could not be
// created after the retry budget was spent.
type AccountResolutionError struct {
	Address       solana.PublicKey
	OriginalError error
}

func (e *AccountResolutionError) Error() string {
	return fmt.Sprintf("swap: failed to resolve record %s: %v", e.Address, e.OriginalError)
}

func (e *AccountResolutionError) Unwrap() error { return e.OriginalError }

// ConfirmationTimeoutError marks an indeterminate outcome: the transaction was
// sent but its status never became definitive. The signature allows the caller
// to resume the check without re-spending.
type ConfirmationTimeoutError struct {
	Signature     solana.Signature
	OriginalError error
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("swap: confirmation timed out for %s: %v", e.Signature, e.OriginalError)
}

func (e *ConfirmationTimeoutError) Unwrap() error { return e.OriginalError }
