// internal/swap/mocks_test.go
package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/ledger"
	"github.com/multihub-labs/multihub-client/internal/storage/models"
	"github.com/multihub-labs/multihub-client/internal/wallet"
)

// fakeLedger is a scripted LedgerClient. Per-call queues drive the outcome of
// successive simulations, sends and confirmations; counters record how many
// calls of each kind the flow actually made.
type fakeLedger struct {
	mu sync.Mutex

	accountExists bool
	accountData   map[solana.PublicKey][]byte
	solBalance    uint64
	tokenBalance  uint64
	staleReads    bool // balance reads return last-known values flagged stale

	simQueue     []*ledger.SimulationResult
	sendQueue    []error
	confirmQueue []error

	existsCalls  int
	balanceCalls int
	simCalls     int
	sendCalls    int
	confirmCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		solBalance:   1_000_000_000,
		tokenBalance: 50_000_000_000,
	}
}

func (f *fakeLedger) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (f *fakeLedger) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.accountData[pubkey]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return data, nil
}

func (f *fakeLedger) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	return f.accountExists, nil
}

func (f *fakeLedger) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.staleReads {
		return f.solBalance, fmt.Errorf("%w: connection refused", ledger.ErrStaleRead)
	}
	return f.solBalance, nil
}

func (f *fakeLedger) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleReads {
		return f.tokenBalance, fmt.Errorf("%w: connection refused", ledger.ErrStaleRead)
	}
	return f.tokenBalance, nil
}

func (f *fakeLedger) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*ledger.SimulationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simCalls++
	if len(f.simQueue) > 0 {
		result := f.simQueue[0]
		f.simQueue = f.simQueue[1:]
		return result, nil
	}
	return &ledger.SimulationResult{}, nil
}

func (f *fakeLedger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if len(f.sendQueue) > 0 {
		err := f.sendQueue[0]
		f.sendQueue = f.sendQueue[1:]
		if err != nil {
			return solana.Signature{}, err
		}
	}
	var sig solana.Signature
	sig[0] = byte(f.sendCalls)
	// Creating an account makes it visible to later existence checks.
	f.accountExists = true
	return sig, nil
}

func (f *fakeLedger) WaitForConfirmation(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	if len(f.confirmQueue) > 0 {
		err := f.confirmQueue[0]
		f.confirmQueue = f.confirmQueue[1:]
		return err
	}
	return nil
}

// captureStore is a SwapStore that keeps saved records in memory.
type captureStore struct {
	mu    sync.Mutex
	saved []*models.SwapRecord
}

func (c *captureStore) SaveSwap(_ context.Context, record *models.SwapRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, record)
	return nil
}

func (c *captureStore) GetSwap(context.Context, string) (*models.SwapRecord, error) {
	return nil, nil
}

func (c *captureStore) ListSwaps(context.Context, string, int, int) ([]*models.SwapRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved, nil
}

func (c *captureStore) UpdateSwapStatus(context.Context, string, string, string) error {
	return nil
}

// staticParams is a ParamsProvider with fixed values.
type staticParams struct {
	params Params
}

func (s staticParams) SwapParams() Params { return s.params }

func testParams() Params {
	return Params{
		ProgramID:              solana.NewWallet().PublicKey(),
		TokenMint:              solana.NewWallet().PublicKey(),
		RebateMint:             solana.NewWallet().PublicKey(),
		SolPool:                solana.NewWallet().PublicKey(),
		TokenPool:              solana.NewWallet().PublicKey(),
		CentralLiquidityWallet: solana.NewWallet().PublicKey(),

		ContributionPct: 20,
		RebatePct:       5,
		FeeBps:          30,

		ComputeUnits:             200_000,
		PriorityFeeMicroLamports: 1_000,
		ConfirmTimeout:           time.Second,
		PropagationDelay:         0,
	}
}

func testWallet() *wallet.Wallet {
	w := solana.NewWallet()
	return &wallet.Wallet{
		PrivateKey: w.PrivateKey,
		PublicKey:  w.PublicKey(),
	}
}

func newTestOrchestrator(client *fakeLedger, params Params) (*Orchestrator, *Resolver) {
	logger := zap.NewNop()
	w := testWallet()
	resolver := NewResolver(client, w, logger)
	orch := NewOrchestrator(client, w, resolver, staticParams{params: params}, logger)
	return orch, resolver
}
