// internal/swap/resolver.go
package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/multihub-labs/multihub-client/internal/program"
	"github.com/multihub-labs/multihub-client/internal/wallet"
)

// RecordState is the lifecycle state of a per-user contribution record.
type RecordState int

const (
	RecordUnknown RecordState = iota
	RecordAbsent
	RecordPending
	RecordExists
)

func (s RecordState) String() string {
	switch s {
	case RecordAbsent:
		return "absent"
	case RecordPending:
		return "pending_confirmation"
	case RecordExists:
		return "exists"
	default:
		return "unknown"
	}
}

// Resolver tracks the existence of per-user liquidity contribution records
// and drives their creation through the owning program. Exists is terminal:
// once observed, no further ledger calls are made for that user.
type Resolver struct {
	client LedgerClient
	wallet *wallet.Wallet
	logger *zap.Logger

	mu     sync.Mutex
	states map[solana.PublicKey]RecordState
	group  singleflight.Group
}

func NewResolver(client LedgerClient, w *wallet.Wallet, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		wallet: w,
		logger: logger.Named("resolver"),
		states: make(map[solana.PublicKey]RecordState),
	}
}

// ContributionAddress derives the user's contribution record PDA.
func (r *Resolver) ContributionAddress(user, programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := program.FindContributionAddress(user, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive contribution address: %w", err)
	}
	return addr, nil
}

// Resolve reports the record's state, consulting the ledger only when the
// cached state is not terminal.
func (r *Resolver) Resolve(ctx context.Context, user, programID solana.PublicKey) (RecordState, error) {
	r.mu.Lock()
	if state, ok := r.states[user]; ok && state == RecordExists {
		r.mu.Unlock()
		return RecordExists, nil
	}
	r.mu.Unlock()

	addr, err := r.ContributionAddress(user, programID)
	if err != nil {
		return RecordUnknown, err
	}

	exists, err := r.client.AccountExists(ctx, addr)
	if err != nil {
		return RecordUnknown, fmt.Errorf("query contribution record: %w", err)
	}

	state := RecordAbsent
	if exists {
		state = RecordExists
	}
	r.setState(user, state)
	return state, nil
}

// MarkExists records that the swap program created the record as a side
// effect of a confirmed single-transaction swap.
func (r *Resolver) MarkExists(user solana.PublicKey) {
	r.setState(user, RecordExists)
}

// EnsureExists drives the record from Absent to Exists by submitting the
// dedicated creation instruction and waiting for confirmation. Concurrent
// callers for the same user collapse into one creation flow. A propagation
// pause after confirmation lets the new account become visible before any
// dependent transaction references it.
func (r *Resolver) EnsureExists(ctx context.Context, params Params) error {
	user := r.wallet.PublicKey
	_, err, _ := r.group.Do(user.String(), func() (interface{}, error) {
		state, err := r.Resolve(ctx, user, params.ProgramID)
		if err != nil {
			return nil, err
		}
		if state == RecordExists {
			return nil, nil
		}
		return nil, r.create(ctx, params)
	})
	return err
}

func (r *Resolver) create(ctx context.Context, params Params) error {
	user := r.wallet.PublicKey
	addr, err := r.ContributionAddress(user, params.ProgramID)
	if err != nil {
		return err
	}

	r.setState(user, RecordPending)

	op := func() (solana.Signature, error) {
		blockhash, err := r.client.GetLatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, err
		}

		ix := program.NewCreateLiquidityAccountInstruction(params.ProgramID, user, addr)
		tx, err := solana.NewTransaction(
			[]solana.Instruction{ix},
			blockhash,
			solana.TransactionPayer(user),
		)
		if err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("build creation transaction: %w", err))
		}
		if err := r.wallet.SignTransaction(tx); err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("sign creation transaction: %w", err))
		}

		sig, err := r.client.SendTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, err
		}
		if err := r.client.WaitForConfirmation(ctx, sig, params.ConfirmTimeout); err != nil {
			return solana.Signature{}, err
		}
		return sig, nil
	}

	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		r.setState(user, RecordAbsent)
		return &AccountResolutionError{Address: addr, OriginalError: err}
	}

	r.logger.Info("contribution record created",
		zap.String("user", user.String()),
		zap.String("record", addr.String()),
		zap.String("signature", sig.String()))

	// State propagation pause before any dependent transaction.
	if params.PropagationDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(params.PropagationDelay):
		}
	}

	r.setState(user, RecordExists)
	return nil
}

func (r *Resolver) setState(user solana.PublicKey, state RecordState) {
	r.mu.Lock()
	r.states[user] = state
	r.mu.Unlock()
}
