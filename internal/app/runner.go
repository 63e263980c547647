// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/config"
	"github.com/multihub-labs/multihub-client/internal/ledger"
	"github.com/multihub-labs/multihub-client/internal/logger"
	"github.com/multihub-labs/multihub-client/internal/staking"
	"github.com/multihub-labs/multihub-client/internal/storage"
	"github.com/multihub-labs/multihub-client/internal/storage/models"
	"github.com/multihub-labs/multihub-client/internal/storage/postgres"
	"github.com/multihub-labs/multihub-client/internal/swap"
	"github.com/multihub-labs/multihub-client/internal/wallet"
)

// Runner wires configuration, logging, the ledger client, the wallet and the
// swap/staking services into one place the CLI can drive.
type Runner struct {
	Logger       *logger.Logger
	Provider     *config.Provider
	Client       *ledger.Client
	Wallet       *wallet.Wallet
	Orchestrator *swap.Orchestrator
	Tracker      *staking.Tracker
	Staker       *staking.Executor

	store      storage.Storage
	shutdownCh chan os.Signal
}

func NewRunner(configPath string) (*Runner, error) {
	provider, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := provider.Config()

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	if cfg.LogFile != "" {
		logCfg.LogFile = cfg.LogFile
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client := ledger.New(cfg.RPCURL, log.Logger)

	w, err := wallet.NewFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	resolver := swap.NewResolver(client, w, log.Logger)
	orchestrator := swap.NewOrchestrator(client, w, resolver, provider, log.Logger)
	tracker := staking.NewTracker(client, provider, log.Logger)
	staker := staking.NewExecutor(client, w, tracker, provider, log.Logger)

	runner := &Runner{
		Logger:       log,
		Provider:     provider,
		Client:       client,
		Wallet:       w,
		Orchestrator: orchestrator,
		Tracker:      tracker,
		Staker:       staker,
		shutdownCh:   make(chan os.Signal, 1),
	}

	if cfg.PostgresURL != "" {
		store, err := postgres.NewStorage(cfg.PostgresURL, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect storage: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		runner.store = store
		orchestrator.WithStore(store)
		staker.WithStore(store)
	}

	provider.Watch(log.Logger)

	log.Info("client initialized",
		zap.String("wallet", w.String()),
		zap.String("rpc", cfg.RPCURL),
		zap.Bool("history_store", runner.store != nil))
	return runner, nil
}

// SignalContext derives a context cancelled on SIGINT/SIGTERM.
func (r *Runner) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.Logger.Info("signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Quote prices an intent without submitting anything.
func (r *Runner) Quote(ctx context.Context, intent swap.Intent) (swap.Plan, error) {
	return r.Orchestrator.Quote(ctx, intent)
}

// Swap executes a swap end to end.
func (r *Runner) Swap(ctx context.Context, intent swap.Intent) (solana.Signature, error) {
	return r.Orchestrator.ExecuteSwap(ctx, intent)
}

// StakeStatus reads the wallet's stake record and projects accrued rewards.
func (r *Runner) StakeStatus(ctx context.Context) (staking.Projection, staking.DisplayRates, error) {
	projection, err := r.Tracker.Project(ctx, r.Wallet.PublicKey)
	if err != nil {
		return staking.Projection{}, staking.DisplayRates{}, err
	}
	rates, err := r.Tracker.DisplayRates()
	if err != nil {
		return staking.Projection{}, staking.DisplayRates{}, err
	}
	return projection, rates, nil
}

// Stake moves tokens from the wallet into the staking vault.
func (r *Runner) Stake(ctx context.Context, amount uint64) (solana.Signature, error) {
	return r.Staker.Stake(ctx, amount)
}

// Unstake returns staked tokens to the wallet, settling pending rewards.
func (r *Runner) Unstake(ctx context.Context, amount uint64) (solana.Signature, error) {
	return r.Staker.Unstake(ctx, amount)
}

// Harvest pays out accrued staking rewards if they clear the threshold.
func (r *Runner) Harvest(ctx context.Context) (solana.Signature, error) {
	return r.Staker.Harvest(ctx)
}

// History lists recent swaps for the wallet. Requires the postgres store.
func (r *Runner) History(ctx context.Context, limit int) ([]*models.SwapRecord, error) {
	if r.store == nil {
		return nil, fmt.Errorf("history requires postgres_url to be configured")
	}
	return r.store.ListSwaps(ctx, r.Wallet.String(), limit, 0)
}

// Close flushes the logger.
func (r *Runner) Close() {
	if err := r.Logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
}
