// internal/swap/types.go
package swap

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/multihub-labs/multihub-client/internal/ledger"
)

// Direction selects which side of the pool the input comes from.
type Direction int

const (
	DirectionSolToToken Direction = iota
	DirectionTokenToSol
)

func (d Direction) String() string {
	switch d {
	case DirectionSolToToken:
		return "sol_to_token"
	case DirectionTokenToSol:
		return "token_to_sol"
	default:
		return "unknown"
	}
}

// Intent is a single swap request. It is immutable and consumed once; a
// retried swap needs a fresh intent.
type Intent struct {
	Direction   Direction
	AmountIn    uint64 // minor units (lamports or raw token amount)
	SlippageBps uint16
}

// Reserves is a read-only snapshot of the pool's two balances, taken just
// before pricing. It may be stale by the time the transaction lands; the
// minimum-output bound is the enforcement point for that. Stale marks a
// snapshot answered from the ledger client's last known values because the
// node was unreachable; quotes carry the flag through, swaps refuse it.
type Reserves struct {
	Sol   uint64
	Token uint64
	Stale bool
}

// Plan is the fully priced swap derived from an Intent, the Reserves snapshot
// and the configured percentages. Computed fresh per attempt, never persisted.
// PoolInput + Contribution always equals the intent's AmountIn exactly.
type Plan struct {
	PoolInput    uint64
	Contribution uint64
	ExpectedOut  uint64
	MinOut       uint64
	Rebate       uint64
	Stale        bool // priced against last-known reserves, node unreachable
}

// Params carries the externally supplied protocol parameters a swap needs.
// None of these are ever hard-coded; they arrive through the configuration
// provider and may change between swaps.
type Params struct {
	ProgramID              solana.PublicKey
	TokenMint              solana.PublicKey // YOT
	RebateMint             solana.PublicKey // YOS
	SolPool                solana.PublicKey
	TokenPool              solana.PublicKey
	CentralLiquidityWallet solana.PublicKey

	ContributionPct uint64
	RebatePct       uint64
	FeeBps          uint16

	ComputeUnits             uint32
	PriorityFeeMicroLamports uint64
	ConfirmTimeout           time.Duration
	PropagationDelay         time.Duration
}

// ParamsProvider returns the current protocol parameters. Implementations may
// hot-reload underneath; the orchestrator reads once per swap attempt.
type ParamsProvider interface {
	SwapParams() Params
}

// LedgerClient is the slice of ledger functionality the swap flow consumes.
// *ledger.Client satisfies it; tests substitute fakes.
type LedgerClient interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
	AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*ledger.SimulationResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, sig solana.Signature, timeout time.Duration) error
}
