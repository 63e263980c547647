// internal/staking/executor.go
package staking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/ledger"
	"github.com/multihub-labs/multihub-client/internal/storage"
	"github.com/multihub-labs/multihub-client/internal/storage/models"
	"github.com/multihub-labs/multihub-client/internal/wallet"
)

// LedgerSubmitter is the slice of ledger functionality the executor needs to
// put a staking transaction on chain. *ledger.Client satisfies it.
type LedgerSubmitter interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*ledger.SimulationResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, sig solana.Signature, timeout time.Duration) error
}

var (
	// ErrBelowThreshold rejects a harvest whose projected reward does not
	// clear the program's minimum. Submitting it anyway would burn the fee
	// on a guaranteed program error.
	ErrBelowThreshold = errors.New("staking: projected reward below harvest threshold")
	// ErrInvalidAmount rejects zero-amount stake and unstake requests.
	ErrInvalidAmount = errors.New("staking: amount must be positive")
)

// Executor submits the mutating staking instructions. Each call builds one
// transaction, simulates it, broadcasts it and waits for confirmation.
type Executor struct {
	client  LedgerSubmitter
	wallet  *wallet.Wallet
	tracker *Tracker
	params  ParamsProvider
	logger  *zap.Logger
	store   storage.StakeStore // optional
}

func NewExecutor(
	client LedgerSubmitter,
	w *wallet.Wallet,
	tracker *Tracker,
	params ParamsProvider,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		client:  client,
		wallet:  w,
		tracker: tracker,
		params:  params,
		logger:  logger.Named("staking"),
	}
}

// WithStore attaches an optional harvest history store.
func (e *Executor) WithStore(store storage.StakeStore) *Executor {
	e.store = store
	return e
}

// Stake moves tokens from the wallet into the program vault. The program
// creates the stake record on first stake.
func (e *Executor) Stake(ctx context.Context, amount uint64) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, ErrInvalidAmount
	}
	params := e.params.StakingParams()
	accounts, err := e.accounts(params)
	if err != nil {
		return solana.Signature{}, err
	}

	e.logger.Info("staking", zap.Uint64("amount", amount))
	return e.submit(ctx, params, []solana.Instruction{
		NewStakeInstruction(params.ProgramID, accounts, amount),
	})
}

// Unstake moves tokens back to the wallet. Pending rewards settle in the same
// transaction, so the wallet's reward account is created if it is missing.
func (e *Executor) Unstake(ctx context.Context, amount uint64) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, ErrInvalidAmount
	}
	params := e.params.StakingParams()
	accounts, err := e.accounts(params)
	if err != nil {
		return solana.Signature{}, err
	}

	e.logger.Info("unstaking", zap.Uint64("amount", amount))
	return e.submit(ctx, params, []solana.Instruction{
		e.wallet.CreateATAIdempotentInstruction(params.RewardMint),
		NewUnstakeInstruction(params.ProgramID, accounts, amount),
	})
}

// Harvest pays out accrued rewards. The projection gates the submission: a
// reward below the threshold, or one projected from stale data, never goes on
// chain. The program computes the actual payout itself.
func (e *Executor) Harvest(ctx context.Context) (solana.Signature, error) {
	projection, err := e.tracker.Project(ctx, e.wallet.PublicKey)
	if err != nil {
		return solana.Signature{}, err
	}
	if projection.Stale {
		return solana.Signature{}, fmt.Errorf("refusing to harvest on stale projection: %w", ledger.ErrStaleRead)
	}
	if !projection.CanHarvest {
		return solana.Signature{}, fmt.Errorf("%w: projected %d, threshold %d",
			ErrBelowThreshold, projection.ProjectedReward, e.params.StakingParams().HarvestThreshold)
	}

	params := e.params.StakingParams()
	accounts, err := e.accounts(params)
	if err != nil {
		return solana.Signature{}, err
	}

	e.logger.Info("harvesting", zap.Uint64("projected_reward", projection.ProjectedReward))
	sig, err := e.submit(ctx, params, []solana.Instruction{
		e.wallet.CreateATAIdempotentInstruction(params.RewardMint),
		NewHarvestInstruction(params.ProgramID, accounts),
	})
	if err != nil {
		return sig, err
	}

	e.recordHarvest(ctx, sig, projection)
	return sig, nil
}

func (e *Executor) accounts(params Params) (StakeAccounts, error) {
	userStake, err := e.wallet.ATA(params.StakeMint)
	if err != nil {
		return StakeAccounts{}, fmt.Errorf("derive stake token account: %w", err)
	}
	userReward, err := e.wallet.ATA(params.RewardMint)
	if err != nil {
		return StakeAccounts{}, fmt.Errorf("derive reward token account: %w", err)
	}
	return AccountsFor(e.wallet.PublicKey, params, userStake, userReward)
}

func (e *Executor) submit(ctx context.Context, params Params, instructions []solana.Instruction) (solana.Signature, error) {
	blockhash, err := e.client.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(e.wallet.PublicKey))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}
	if err := e.wallet.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sim, err := e.client.SimulateTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("simulate: %w", err)
	}
	if sim.Failed() {
		return solana.Signature{}, fmt.Errorf("staking: simulation failed: %v (%s)",
			sim.Err, strings.Join(sim.Logs, "; "))
	}

	sig, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err := e.client.WaitForConfirmation(ctx, sig, params.ConfirmTimeout); err != nil {
		return sig, fmt.Errorf("confirm %s: %w", sig, err)
	}

	e.logger.Info("staking transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

func (e *Executor) recordHarvest(ctx context.Context, sig solana.Signature, projection Projection) {
	if e.store == nil {
		return
	}
	record := &models.HarvestRecord{
		Signature:     sig.String(),
		WalletAddress: e.wallet.PublicKey.String(),
		Amount:        projection.ProjectedReward,
		StakedAmount:  projection.Record.StakedAmount,
		Status:        "confirmed",
	}
	if err := e.store.SaveHarvest(ctx, record); err != nil {
		e.logger.Warn("failed to persist harvest record", zap.Error(err))
	}
}
