// internal/swap/orchestrator.go
package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/ledger"
	"github.com/multihub-labs/multihub-client/internal/program"
	"github.com/multihub-labs/multihub-client/internal/storage"
	"github.com/multihub-labs/multihub-client/internal/storage/models"
	"github.com/multihub-labs/multihub-client/internal/wallet"
)

// Orchestrator turns a swap intent into one or more ledger transactions. It
// prefers the single-transaction path and falls back to the two-phase
// create-then-swap sequence exactly once when the platform reports the
// create-and-use conflict on the contribution record.
type Orchestrator struct {
	client   LedgerClient
	wallet   *wallet.Wallet
	resolver *Resolver
	params   ParamsProvider
	logger   *zap.Logger
	store    storage.SwapStore // optional
}

func NewOrchestrator(
	client LedgerClient,
	w *wallet.Wallet,
	resolver *Resolver,
	params ParamsProvider,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		client:   client,
		wallet:   w,
		resolver: resolver,
		params:   params,
		logger:   logger.Named("orchestrator"),
	}
}

// WithStore attaches an optional swap history store.
func (o *Orchestrator) WithStore(store storage.SwapStore) *Orchestrator {
	o.store = store
	return o
}

// RefreshReserves reads the pool's two balances. The snapshot is advisory;
// nothing is locked. When the node is unreachable and the ledger client has
// last-known values, the snapshot is returned with Stale set instead of
// failing the read.
func (o *Orchestrator) RefreshReserves(ctx context.Context) (Reserves, error) {
	params := o.params.SwapParams()

	sol, err := o.client.GetBalance(ctx, params.SolPool)
	if err != nil && !errors.Is(err, ledger.ErrStaleRead) {
		return Reserves{}, fmt.Errorf("read sol pool: %w", err)
	}
	stale := err != nil

	token, err := o.client.GetTokenAccountBalance(ctx, params.TokenPool)
	if err != nil && !errors.Is(err, ledger.ErrStaleRead) {
		return Reserves{}, fmt.Errorf("read token pool: %w", err)
	}
	stale = stale || err != nil

	if stale {
		o.logger.Warn("node unreachable, reserves snapshot is stale")
	}
	return Reserves{Sol: sol, Token: token, Stale: stale}, nil
}

// Quote prices an intent against fresh reserves without submitting anything.
func (o *Orchestrator) Quote(ctx context.Context, intent Intent) (Plan, error) {
	reserves, err := o.RefreshReserves(ctx)
	if err != nil {
		return Plan{}, err
	}
	return BuildPlan(intent, reserves, o.params.SwapParams())
}

// ExecuteSwap runs the full swap flow and returns the confirmation signature
// of the swap transaction. Pricing errors surface synchronously; transaction
// errors are retried within the ledger client's budget and escalated as typed
// errors afterwards.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, intent Intent) (solana.Signature, error) {
	params := o.params.SwapParams()
	start := time.Now()

	reserves, err := o.RefreshReserves(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	if reserves.Stale {
		return solana.Signature{}, fmt.Errorf("refusing to swap against stale reserves: %w", ledger.ErrStaleRead)
	}

	plan, err := BuildPlan(intent, reserves, params)
	if err != nil {
		return solana.Signature{}, err
	}

	o.logger.Info("swap planned",
		zap.String("direction", intent.Direction.String()),
		zap.Uint64("amount_in", intent.AmountIn),
		zap.Uint64("pool_input", plan.PoolInput),
		zap.Uint64("contribution", plan.Contribution),
		zap.Uint64("expected_out", plan.ExpectedOut),
		zap.Uint64("min_out", plan.MinOut),
		zap.Uint64("rebate", plan.Rebate))

	state, err := o.resolver.Resolve(ctx, o.wallet.PublicKey, params.ProgramID)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := o.attemptSwap(ctx, intent, plan, params)
	if err != nil && state != RecordExists && isConflict(err) {
		// Deterministic create-and-use conflict: switch to the two-phase path.
		// The fallback runs exactly once; a second conflict is a real failure.
		o.logger.Warn("create-and-use conflict, falling back to two-phase path",
			zap.Error(err))

		if resErr := o.resolver.EnsureExists(ctx, params); resErr != nil {
			o.recordSwap(ctx, intent, plan, solana.Signature{}, "failed", resErr, start)
			return solana.Signature{}, resErr
		}

		// The pool moved on while the record was created; reprice the
		// attempt against fresh reserves.
		reserves, err = o.RefreshReserves(ctx)
		if err == nil && reserves.Stale {
			err = fmt.Errorf("refusing to swap against stale reserves: %w", ledger.ErrStaleRead)
		}
		if err != nil {
			o.recordSwap(ctx, intent, plan, solana.Signature{}, "failed", err, start)
			return solana.Signature{}, err
		}
		fresh, planErr := BuildPlan(intent, reserves, params)
		if planErr != nil {
			o.recordSwap(ctx, intent, plan, solana.Signature{}, "failed", planErr, start)
			return solana.Signature{}, planErr
		}
		plan = fresh

		sig, err = o.attemptSwap(ctx, intent, plan, params)
	}

	if err != nil {
		o.recordSwap(ctx, intent, plan, sig, "failed", err, start)
		return sig, err
	}

	// A confirmed swap implies the program created or reused the record.
	o.resolver.MarkExists(o.wallet.PublicKey)
	o.recordSwap(ctx, intent, plan, sig, "confirmed", nil, start)

	o.logger.Info("swap confirmed",
		zap.String("signature", sig.String()),
		zap.Duration("elapsed", time.Since(start)))
	return sig, nil
}

// attemptSwap builds, simulates, submits and confirms one swap transaction.
func (o *Orchestrator) attemptSwap(ctx context.Context, intent Intent, plan Plan, params Params) (solana.Signature, error) {
	tx, err := o.buildSwapTransaction(ctx, intent, plan, params)
	if err != nil {
		return solana.Signature{}, err
	}

	sim, err := o.client.SimulateTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("simulate: %w", err)
	}
	if sim.Failed() {
		return solana.Signature{}, classifySimulation(sim, plan)
	}

	sig, err := o.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, classifySendError(err, plan)
	}

	if err := o.client.WaitForConfirmation(ctx, sig, params.ConfirmTimeout); err != nil {
		if IsSlippageExceeded(err) {
			return sig, &SlippageExceededError{MinAmountOut: plan.MinOut, OriginalError: err}
		}
		if IsConcurrencyConflict(err) {
			return sig, &ConcurrencyConflictError{OriginalError: err}
		}
		return sig, &ConfirmationTimeoutError{Signature: sig, OriginalError: err}
	}
	return sig, nil
}

func (o *Orchestrator) buildSwapTransaction(ctx context.Context, intent Intent, plan Plan, params Params) (*solana.Transaction, error) {
	blockhash, err := o.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	statePDA, _, err := program.FindStateAddress(params.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive state address: %w", err)
	}
	authorityPDA, _, err := program.FindAuthorityAddress(params.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive authority address: %w", err)
	}
	contribution, err := o.resolver.ContributionAddress(o.wallet.PublicKey, params.ProgramID)
	if err != nil {
		return nil, err
	}
	userToken, err := o.wallet.ATA(params.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("derive token account: %w", err)
	}
	userRebate, err := o.wallet.ATA(params.RebateMint)
	if err != nil {
		return nil, fmt.Errorf("derive rebate account: %w", err)
	}

	var instructions []solana.Instruction
	if params.ComputeUnits > 0 {
		cuLimitIx, err := computebudget.NewSetComputeUnitLimitInstruction(params.ComputeUnits).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit limit: %w", err)
		}
		instructions = append(instructions, cuLimitIx)
	}
	if params.PriorityFeeMicroLamports > 0 {
		cuPriceIx, err := computebudget.NewSetComputeUnitPriceInstruction(params.PriorityFeeMicroLamports).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit price: %w", err)
		}
		instructions = append(instructions, cuPriceIx)
	}

	// Holding accounts are created independently of the contended record;
	// the idempotent form is a no-op when they already exist.
	instructions = append(instructions,
		o.wallet.CreateATAIdempotentInstruction(params.TokenMint),
		o.wallet.CreateATAIdempotentInstruction(params.RebateMint))

	opcode := program.OpSwapSolToToken
	if intent.Direction == DirectionTokenToSol {
		opcode = program.OpSwapTokenToSol
	}

	instructions = append(instructions, program.NewSwapInstruction(
		params.ProgramID,
		opcode,
		program.SwapAccounts{
			User:                   o.wallet.PublicKey,
			State:                  statePDA,
			Authority:              authorityPDA,
			SolPool:                params.SolPool,
			TokenPool:              params.TokenPool,
			UserTokenAccount:       userToken,
			CentralLiquidityWallet: params.CentralLiquidityWallet,
			Contribution:           contribution,
			RebateMint:             params.RebateMint,
			UserRebateAccount:      userRebate,
		},
		intent.AmountIn,
		plan.MinOut,
	))

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(o.wallet.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	if err := o.wallet.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

func (o *Orchestrator) recordSwap(ctx context.Context, intent Intent, plan Plan, sig solana.Signature, status string, swapErr error, start time.Time) {
	if o.store == nil {
		return
	}
	// A zero signature means nothing was broadcast. Its base58 form is the
	// same string every time, so storing it would trip the unique index on
	// the second unsent failure; unsent attempts persist without one.
	signature := ""
	if sig != (solana.Signature{}) {
		signature = sig.String()
	}
	record := &models.SwapRecord{
		Signature:     signature,
		WalletAddress: o.wallet.PublicKey.String(),
		Direction:     intent.Direction.String(),
		AmountIn:      intent.AmountIn,
		ExpectedOut:   plan.ExpectedOut,
		MinOut:        plan.MinOut,
		Contribution:  plan.Contribution,
		Rebate:        plan.Rebate,
		Status:        status,
		ExecutionMs:   time.Since(start).Milliseconds(),
	}
	if swapErr != nil {
		record.ErrorMessage = swapErr.Error()
	}
	if err := o.store.SaveSwap(ctx, record); err != nil {
		o.logger.Warn("failed to persist swap record", zap.Error(err))
	}
}

func isConflict(err error) bool {
	var conflict *ConcurrencyConflictError
	if errors.As(err, &conflict) {
		return true
	}
	return IsConcurrencyConflict(err)
}

// classifySimulation maps a failed pre-flight into the error taxonomy. The
// program's diagnostics only surface in the log lines, so those are scanned
// alongside the top-level error.
func classifySimulation(sim *ledger.SimulationResult, plan Plan) error {
	combined := fmt.Sprintf("%v %s", sim.Err, strings.Join(sim.Logs, " "))
	probe := errors.New(strings.ToLower(combined))

	if IsConcurrencyConflict(probe) {
		return &ConcurrencyConflictError{OriginalError: fmt.Errorf("simulation: %v", sim.Err)}
	}
	if IsSlippageExceeded(probe) {
		return &SlippageExceededError{
			MinAmountOut:  plan.MinOut,
			OriginalError: fmt.Errorf("simulation: %v", sim.Err),
		}
	}
	return &SimulationError{Diagnostic: sim.Err, Logs: sim.Logs}
}

func classifySendError(err error, plan Plan) error {
	if IsConcurrencyConflict(err) {
		return &ConcurrencyConflictError{OriginalError: err}
	}
	if IsSlippageExceeded(err) {
		return &SlippageExceededError{MinAmountOut: plan.MinOut, OriginalError: err}
	}
	return fmt.Errorf("send transaction: %w", err)
}
