// internal/ledger/client.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client is a thin adapter over the Solana JSON-RPC client. It owns error
// classification and confirmation polling; everything else is a pass-through.
// Read methods remember their last successful result and answer from it when
// the node is unreachable, flagged with ErrStaleRead.
type Client struct {
	rpc       *rpc.Client
	logger    *zap.Logger
	lastReads *lastKnown
}

var (
	// ErrAccountNotFound marks a read of an address with no account behind it.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrUnavailable marks transport-level failures where the node could not
	// be reached at all. Read paths may degrade on it; write paths must not.
	ErrUnavailable = errors.New("ledger: node unavailable")
	// ErrStaleRead flags a read answered from the last known value because
	// the node is unreachable. The value alongside it is usable but stale;
	// anything that submits transactions must treat it as an error.
	ErrStaleRead = errors.New("ledger: stale value, node unavailable")
)

// lastKnown caches the most recent successful result of each read keyed by
// method and address.
type lastKnown struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

func newLastKnown() *lastKnown {
	return &lastKnown{values: make(map[string]interface{})}
}

func (l *lastKnown) put(key string, value interface{}) {
	l.mu.Lock()
	l.values[key] = value
	l.mu.Unlock()
}

func (l *lastKnown) get(key string) (interface{}, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	value, ok := l.values[key]
	return value, ok
}

// SimulationResult carries the outcome of a pre-flight simulation.
type SimulationResult struct {
	Err           interface{}
	Logs          []string
	UnitsConsumed uint64
}

// Failed reports whether the simulated transaction would have errored.
func (r *SimulationResult) Failed() bool {
	return r != nil && r.Err != nil
}

func New(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:       rpc.New(rpcURL),
		logger:    logger.Named("ledger"),
		lastReads: newLastKnown(),
	}
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func isTransport(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "eof")
}

// GetLatestBlockhash returns the latest finalized blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetLatestBlockhash failed", zap.Error(err))
		if isTransport(err) {
			return solana.Hash{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetAccountData returns the raw data of an account, or ErrAccountNotFound.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		c.logger.Debug("GetAccountData failed",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		if isTransport(err) {
			if cached, ok := c.lastReads.get("account:" + pubkey.String()); ok {
				c.logger.Warn("node unreachable, returning last known account data",
					zap.String("pubkey", pubkey.String()))
				return cached.([]byte), fmt.Errorf("%w: %v", ErrStaleRead, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	data := result.Value.Data.GetBinary()
	c.lastReads.put("account:"+pubkey.String(), data)
	return data, nil
}

// AccountExists reports whether an account exists at the address.
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	_, err := c.GetAccountData(ctx, pubkey)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetBalance failed", zap.Error(err))
		if isTransport(err) {
			if cached, ok := c.lastReads.get("balance:" + pubkey.String()); ok {
				c.logger.Warn("node unreachable, returning last known balance",
					zap.String("pubkey", pubkey.String()))
				return cached.(uint64), fmt.Errorf("%w: %v", ErrStaleRead, err)
			}
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return 0, err
	}
	c.lastReads.put("balance:"+pubkey.String(), result.Value)
	return result.Value, nil
}

// GetTokenAccountBalance returns the raw token amount held by a token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetTokenAccountBalance failed", zap.Error(err))
		if isTransport(err) {
			if cached, ok := c.lastReads.get("token:" + account.String()); ok {
				c.logger.Warn("node unreachable, returning last known token balance",
					zap.String("account", account.String()))
				return cached.(uint64), fmt.Errorf("%w: %v", ErrStaleRead, err)
			}
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return 0, err
	}
	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ledger: parse token amount %q: %w", result.Value.Amount, err)
	}
	c.lastReads.put("token:"+account.String(), amount)
	return amount, nil
}

// SimulateTransaction runs a pre-flight simulation without broadcasting.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	result, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		c.logger.Error("SimulateTransaction failed", zap.Error(err))
		if isTransport(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	units := uint64(0)
	if result.Value.UnitsConsumed != nil {
		units = *result.Value.UnitsConsumed
	}
	return &SimulationResult{
		Err:           result.Value.Err,
		Logs:          result.Value.Logs,
		UnitsConsumed: units,
	}, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		c.logger.Error("SendTransaction failed", zap.Error(err))
		if isTransport(err) {
			return solana.Signature{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return solana.Signature{}, err
	}
	return sig, nil
}

// WaitForConfirmation polls signature status with exponential backoff until
// the transaction confirms, errors, or the timeout elapses. A definitive
// on-chain error stops the polling immediately.
func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	check := func() (struct{}, error) {
		statuses, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			c.logger.Warn("GetSignatureStatuses failed", zap.Error(err))
			return struct{}{}, err
		}
		if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
			return struct{}{}, fmt.Errorf("ledger: signature %s not yet processed", sig)
		}
		status := statuses.Value[0]
		if status.Err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("ledger: transaction %s failed: %v", sig, status.Err))
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return struct{}{}, nil
		}
		return struct{}{}, fmt.Errorf("ledger: signature %s still %s", sig, status.ConfirmationStatus)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, check,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}
