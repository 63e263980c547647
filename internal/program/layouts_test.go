package program

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contributionBytes(user solana.PublicKey, contributed uint64, start, lastClaim int64, claimed uint64) []byte {
	data := make([]byte, ContributionLen)
	copy(data[0:32], user.Bytes())
	binary.LittleEndian.PutUint64(data[32:40], contributed)
	binary.LittleEndian.PutUint64(data[40:48], uint64(start))
	binary.LittleEndian.PutUint64(data[48:56], uint64(lastClaim))
	binary.LittleEndian.PutUint64(data[56:64], claimed)
	return data
}

func TestDecodeContribution(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	data := contributionBytes(user, 12_345, 1_700_000_000, 1_700_086_400, 99)

	c, err := DecodeContribution(data)
	require.NoError(t, err)
	assert.Equal(t, user, c.User)
	assert.Equal(t, uint64(12_345), c.ContributedAmount)
	assert.Equal(t, int64(1_700_000_000), c.StartTimestamp)
	assert.Equal(t, int64(1_700_086_400), c.LastClaimTime)
	assert.Equal(t, uint64(99), c.TotalClaimedYos)
}

func TestDecodeContributionTooShort(t *testing.T) {
	_, err := DecodeContribution(make([]byte, ContributionLen-1))
	assert.Error(t, err)
}

func TestDecodeStakeRecord(t *testing.T) {
	staker := solana.NewWallet().PublicKey()
	data := make([]byte, StakeRecordLen)
	copy(data[0:32], staker.Bytes())
	binary.LittleEndian.PutUint64(data[32:40], 1_000_000)
	binary.LittleEndian.PutUint64(data[40:48], uint64(int64(1_699_913_600)))
	binary.LittleEndian.PutUint64(data[48:56], uint64(int64(1_700_000_000)))
	binary.LittleEndian.PutUint64(data[56:64], 777)

	r, err := DecodeStakeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, staker, r.Staker)
	assert.Equal(t, uint64(1_000_000), r.StakedAmount)
	assert.Equal(t, int64(1_700_000_000), r.LastHarvestTime)
	assert.Equal(t, uint64(777), r.TotalHarvested)
}

func TestDecodeState(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	yot := solana.NewWallet().PublicKey()
	yos := solana.NewWallet().PublicKey()
	liqWallet := solana.NewWallet().PublicKey()

	data := make([]byte, StateLen)
	copy(data[0:32], admin.Bytes())
	copy(data[32:64], yot.Bytes())
	copy(data[64:96], yos.Bytes())
	binary.LittleEndian.PutUint64(data[96:104], 20)   // lp contribution
	binary.LittleEndian.PutUint64(data[104:112], 0)   // admin fee
	binary.LittleEndian.PutUint64(data[112:120], 5)   // cashback
	binary.LittleEndian.PutUint64(data[120:128], 1)   // swap fee
	binary.LittleEndian.PutUint64(data[128:136], 0)   // referral
	copy(data[136:168], liqWallet.Bytes())
	binary.LittleEndian.PutUint64(data[168:176], 100_000_000)

	s, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, admin, s.Admin)
	assert.Equal(t, yot, s.YotMint)
	assert.Equal(t, yos, s.YosMint)
	assert.Equal(t, uint64(20), s.LpContributionRate)
	assert.Equal(t, uint64(5), s.YosCashbackRate)
	assert.Equal(t, liqWallet, s.LiquidityWallet)
	assert.Equal(t, uint64(100_000_000), s.LiquidityThreshold)
}

func TestFindContributionAddressDeterministic(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	a1, _, err := FindContributionAddress(user, programID)
	require.NoError(t, err)
	a2, _, err := FindContributionAddress(user, programID)
	require.NoError(t, err)
	b, _, err := FindContributionAddress(other, programID)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestNewSwapInstructionLayout(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	accounts := SwapAccounts{
		User:                   solana.NewWallet().PublicKey(),
		State:                  solana.NewWallet().PublicKey(),
		Authority:              solana.NewWallet().PublicKey(),
		SolPool:                solana.NewWallet().PublicKey(),
		TokenPool:              solana.NewWallet().PublicKey(),
		UserTokenAccount:       solana.NewWallet().PublicKey(),
		CentralLiquidityWallet: solana.NewWallet().PublicKey(),
		Contribution:           solana.NewWallet().PublicKey(),
		RebateMint:             solana.NewWallet().PublicKey(),
		UserRebateAccount:      solana.NewWallet().PublicKey(),
	}

	ix := NewSwapInstruction(programID, OpSwapSolToToken, accounts, 1_000_000_000, 987_654)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, OpSwapSolToToken, data[0])
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(987_654), binary.LittleEndian.Uint64(data[9:17]))

	metas := ix.Accounts()
	require.Len(t, metas, 13)
	assert.Equal(t, accounts.User, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, accounts.Contribution, metas[7].PublicKey)
	assert.True(t, metas[7].IsWritable)
	assert.Equal(t, solana.TokenProgramID, metas[11].PublicKey)
}

func TestNewCreateLiquidityAccountInstruction(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	contribution, _, err := FindContributionAddress(user, programID)
	require.NoError(t, err)

	ix := NewCreateLiquidityAccountInstruction(programID, user, contribution)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{OpCreateLiquidityAccount}, data)

	metas := ix.Accounts()
	require.Len(t, metas, 3)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, contribution, metas[1].PublicKey)
}
