// internal/staking/tracker_test.go
package staking

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/program"
)

type fakeReader struct {
	data map[solana.PublicKey][]byte
}

func (f *fakeReader) GetAccountData(_ context.Context, pubkey solana.PublicKey) ([]byte, error) {
	return f.data[pubkey], nil
}

type staticStakingParams struct {
	params Params
}

func (s staticStakingParams) StakingParams() Params { return s.params }

func encodeStakeRecord(record program.StakeRecord) []byte {
	data := make([]byte, program.StakeRecordLen)
	copy(data[0:32], record.Staker.Bytes())
	binary.LittleEndian.PutUint64(data[32:40], record.StakedAmount)
	binary.LittleEndian.PutUint64(data[40:48], uint64(record.StartTimestamp))
	binary.LittleEndian.PutUint64(data[48:56], uint64(record.LastHarvestTime))
	binary.LittleEndian.PutUint64(data[56:64], record.TotalHarvested)
	return data
}

func TestProjectedReward_PerSecondAccrual(t *testing.T) {
	rate := sdkmath.LegacyMustNewDecFromStr("0.0000000125")

	// One full day on a million units: 1_000_000 * 0.0000000125 * 86_400.
	reward := ProjectedReward(1_000_000, rate, 86_400)
	assert.Equal(t, uint64(1080), reward)

	assert.True(t, CanHarvest(reward, 100))
	assert.False(t, CanHarvest(reward, 2_000))
}

func TestProjectedReward_TruncatesFractions(t *testing.T) {
	rate := sdkmath.LegacyMustNewDecFromStr("0.0000000125")

	// 100 * 0.0000000125 * 3 = 0.00000375 -> truncates to zero.
	assert.Zero(t, ProjectedReward(100, rate, 3))
}

func TestProjectedReward_DegenerateInputs(t *testing.T) {
	rate := sdkmath.LegacyMustNewDecFromStr("0.0000000125")

	assert.Zero(t, ProjectedReward(0, rate, 86_400))
	assert.Zero(t, ProjectedReward(1_000_000, rate, 0))
	assert.Zero(t, ProjectedReward(1_000_000, rate, -60))
	assert.Zero(t, ProjectedReward(1_000_000, sdkmath.LegacyZeroDec(), 86_400))
}

func TestProject_ReadsOnChainRecord(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	params := Params{
		ProgramID:        solana.NewWallet().PublicKey(),
		RatePerSecond:    sdkmath.LegacyMustNewDecFromStr("0.0000000125"),
		HarvestThreshold: 100,
	}

	recordAddr, _, err := program.FindStakingAddress(user, params.ProgramID)
	require.NoError(t, err)

	lastHarvest := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{data: map[solana.PublicKey][]byte{
		recordAddr: encodeStakeRecord(program.StakeRecord{
			Staker:          user,
			StakedAmount:    1_000_000,
			StartTimestamp:  lastHarvest.Add(-48 * time.Hour).Unix(),
			LastHarvestTime: lastHarvest.Unix(),
			TotalHarvested:  500,
		}),
	}}

	tracker := NewTracker(reader, staticStakingParams{params: params}, zap.NewNop())
	tracker.now = func() time.Time { return lastHarvest.Add(24 * time.Hour) }

	projection, err := tracker.Project(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), projection.Record.StakedAmount)
	assert.Equal(t, uint64(1080), projection.ProjectedReward)
	assert.True(t, projection.CanHarvest)
}

func TestProject_FallsBackToStartTimestamp(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	params := Params{
		ProgramID:        solana.NewWallet().PublicKey(),
		RatePerSecond:    sdkmath.LegacyMustNewDecFromStr("0.0000000125"),
		HarvestThreshold: 100,
	}

	recordAddr, _, err := program.FindStakingAddress(user, params.ProgramID)
	require.NoError(t, err)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{data: map[solana.PublicKey][]byte{
		recordAddr: encodeStakeRecord(program.StakeRecord{
			Staker:         user,
			StakedAmount:   1_000_000,
			StartTimestamp: start.Unix(),
			// Never harvested.
		}),
	}}

	tracker := NewTracker(reader, staticStakingParams{params: params}, zap.NewNop())
	tracker.now = func() time.Time { return start.Add(24 * time.Hour) }

	projection, err := tracker.Project(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1080), projection.ProjectedReward)
}

func TestProject_FlagsStaleRead(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	params := Params{
		ProgramID:        solana.NewWallet().PublicKey(),
		RatePerSecond:    sdkmath.LegacyMustNewDecFromStr("0.0000000125"),
		HarvestThreshold: 100,
	}

	recordAddr, _, err := program.FindStakingAddress(user, params.ProgramID)
	require.NoError(t, err)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reader := &fakeStakingLedger{data: map[solana.PublicKey][]byte{
		recordAddr: encodeStakeRecord(program.StakeRecord{
			Staker:         user,
			StakedAmount:   1_000_000,
			StartTimestamp: start.Unix(),
		}),
	}}
	reader.staleReads = true

	tracker := NewTracker(reader, staticStakingParams{params: params}, zap.NewNop())
	tracker.now = func() time.Time { return start.Add(24 * time.Hour) }

	// The projection still comes back, computed from the last known record,
	// but carries the stale flag so callers can refuse to act on it.
	projection, err := tracker.Project(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, projection.Stale)
	assert.Equal(t, uint64(1080), projection.ProjectedReward)
}

func TestDisplayRates_LinearChain(t *testing.T) {
	params := Params{
		RatePerSecond: sdkmath.LegacyMustNewDecFromStr("0.0000000125"),
	}
	tracker := NewTracker(&fakeReader{}, staticStakingParams{params: params}, zap.NewNop())

	rates, err := tracker.DisplayRates()
	require.NoError(t, err)

	assert.Equal(t, "0.000045000000000000", rates.Hourly.String())
	assert.Equal(t, "0.001080000000000000", rates.Daily.String())
	assert.Equal(t, "0.394200000000000000", rates.Yearly.String())
	// Daily compounding lifts APY above APR.
	assert.True(t, rates.APY.GT(rates.Yearly))
}

func TestStakeInstructions_Payloads(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	params := Params{
		ProgramID:   programID,
		StakeVault:  solana.NewWallet().PublicKey(),
		RewardVault: solana.NewWallet().PublicKey(),
	}

	accounts, err := AccountsFor(user, params,
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)

	stake := NewStakeInstruction(programID, accounts, 12_345)
	data, err := stake.Data()
	require.NoError(t, err)
	assert.Equal(t, OpStake, data[0])
	assert.Equal(t, uint64(12_345), binary.LittleEndian.Uint64(data[1:9]))

	unstake := NewUnstakeInstruction(programID, accounts, 999)
	data, err = unstake.Data()
	require.NoError(t, err)
	assert.Equal(t, OpUnstake, data[0])
	assert.Equal(t, uint64(999), binary.LittleEndian.Uint64(data[1:9]))
	assert.Len(t, unstake.Accounts(), 10)

	harvest := NewHarvestInstruction(programID, accounts)
	data, err = harvest.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{OpHarvest}, data)
	assert.Len(t, harvest.Accounts(), 8)
}
