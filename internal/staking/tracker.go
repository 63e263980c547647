// internal/staking/tracker.go
package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/ledger"
	"github.com/multihub-labs/multihub-client/internal/program"
	"github.com/multihub-labs/multihub-client/internal/ratemath"
)

// LedgerReader is the read-only slice of ledger functionality the tracker
// needs. Projections come from confirmed on-chain records only; the tracker
// never guesses at unconfirmed state.
type LedgerReader interface {
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
}

// Params carries the staking program parameters from configuration.
type Params struct {
	ProgramID        solana.PublicKey
	StakeMint        solana.PublicKey // YOT
	RewardMint       solana.PublicKey // YOS
	StakeVault       solana.PublicKey // program-owned YOT account
	RewardVault      solana.PublicKey // program-owned YOS account
	RatePerSecond    sdkmath.LegacyDec
	HarvestThreshold uint64
	ConfirmTimeout   time.Duration
}

// ParamsProvider returns the current staking parameters.
type ParamsProvider interface {
	StakingParams() Params
}

// Projection is a point-in-time reward estimate derived from the on-chain
// stake record. It is advisory; the program recomputes on harvest. Stale
// marks a projection built from the ledger client's last known record data
// because the node was unreachable.
type Projection struct {
	Record          program.StakeRecord
	ProjectedReward uint64
	CanHarvest      bool
	AsOf            time.Time
	Stale           bool
}

// Tracker reads stake records and projects accrued rewards.
type Tracker struct {
	client LedgerReader
	params ParamsProvider
	logger *zap.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewTracker(client LedgerReader, params ParamsProvider, logger *zap.Logger) *Tracker {
	return &Tracker{
		client: client,
		params: params,
		logger: logger.Named("staking"),
		now:    time.Now,
	}
}

// ProjectedReward computes staked × ratePerSecond × elapsedSeconds with exact
// decimal arithmetic, truncated to whole minor units. Negative elapsed time
// (clock skew against the record) projects zero rather than going negative.
func ProjectedReward(stakedAmount uint64, ratePerSecond sdkmath.LegacyDec, elapsedSeconds int64) uint64 {
	if stakedAmount == 0 || elapsedSeconds <= 0 || !ratePerSecond.IsPositive() {
		return 0
	}
	staked := sdkmath.LegacyNewDecFromBigInt(new(big.Int).SetUint64(stakedAmount))
	reward := staked.Mul(ratePerSecond).MulInt64(elapsedSeconds).TruncateInt()
	if !reward.IsUint64() {
		// Saturate instead of wrapping; the program caps payouts anyway.
		return ^uint64(0)
	}
	return reward.Uint64()
}

// CanHarvest reports whether a projected reward clears the program's minimum.
func CanHarvest(projectedReward, threshold uint64) bool {
	return projectedReward >= threshold
}

// Record fetches and decodes the caller's on-chain stake record. The bool
// reports whether the data came from the ledger client's last known value
// instead of a live read.
func (t *Tracker) Record(ctx context.Context, user solana.PublicKey) (program.StakeRecord, bool, error) {
	params := t.params.StakingParams()

	addr, _, err := program.FindStakingAddress(user, params.ProgramID)
	if err != nil {
		return program.StakeRecord{}, false, fmt.Errorf("derive stake record address: %w", err)
	}

	data, err := t.client.GetAccountData(ctx, addr)
	stale := errors.Is(err, ledger.ErrStaleRead)
	if err != nil && !stale {
		return program.StakeRecord{}, false, fmt.Errorf("read stake record %s: %w", addr, err)
	}

	record, err := program.DecodeStakeRecord(data)
	if err != nil {
		return program.StakeRecord{}, false, fmt.Errorf("decode stake record %s: %w", addr, err)
	}
	return *record, stale, nil
}

// Project reads the stake record and projects rewards accrued since the last
// harvest at the configured per-second rate.
func (t *Tracker) Project(ctx context.Context, user solana.PublicKey) (Projection, error) {
	record, stale, err := t.Record(ctx, user)
	if err != nil {
		return Projection{}, err
	}
	if stale {
		t.logger.Warn("node unreachable, projecting from last known stake record",
			zap.String("user", user.String()))
	}

	params := t.params.StakingParams()
	asOf := t.now()

	since := record.LastHarvestTime
	if since == 0 {
		since = record.StartTimestamp
	}
	elapsed := asOf.Unix() - since

	reward := ProjectedReward(record.StakedAmount, params.RatePerSecond, elapsed)
	projection := Projection{
		Record:          record,
		ProjectedReward: reward,
		CanHarvest:      CanHarvest(reward, params.HarvestThreshold),
		AsOf:            asOf,
		Stale:           stale,
	}

	t.logger.Debug("reward projection",
		zap.Uint64("staked", record.StakedAmount),
		zap.Int64("elapsed_seconds", elapsed),
		zap.Uint64("projected", reward),
		zap.Bool("can_harvest", projection.CanHarvest))
	return projection, nil
}

// DisplayRates converts the per-second rate into the periods a UI shows.
// Conversion is linear; APY adds daily compounding on top of the yearly rate.
type DisplayRates struct {
	PerSecond sdkmath.LegacyDec
	Hourly    sdkmath.LegacyDec
	Daily     sdkmath.LegacyDec
	Yearly    sdkmath.LegacyDec // APR
	APY       sdkmath.LegacyDec
}

func (t *Tracker) DisplayRates() (DisplayRates, error) {
	rate := t.params.StakingParams().RatePerSecond

	hourly, err := ratemath.ConvertRate(rate, ratemath.UnitSecond, ratemath.UnitHour)
	if err != nil {
		return DisplayRates{}, err
	}
	daily, err := ratemath.ConvertRate(rate, ratemath.UnitSecond, ratemath.UnitDay)
	if err != nil {
		return DisplayRates{}, err
	}
	yearly, err := ratemath.ConvertRate(rate, ratemath.UnitSecond, ratemath.UnitYear)
	if err != nil {
		return DisplayRates{}, err
	}
	apy, err := ratemath.AprToApy(yearly, 365)
	if err != nil {
		return DisplayRates{}, err
	}

	return DisplayRates{
		PerSecond: rate,
		Hourly:    hourly,
		Daily:     daily,
		Yearly:    yearly,
		APY:       apy,
	}, nil
}
