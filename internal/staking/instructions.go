// internal/staking/instructions.go
package staking

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/multihub-labs/multihub-client/internal/program"
)

// Staking program opcodes. Stake and unstake carry a little-endian u64 amount
// after the opcode byte; harvest has no payload, the program pays out whatever
// accrued.
const (
	OpStake   uint8 = 1
	OpUnstake uint8 = 2
	OpHarvest uint8 = 3
)

// StakeAccounts lists the accounts the stake and unstake instructions touch.
// The program iterates them positionally.
type StakeAccounts struct {
	User              solana.PublicKey // signer
	UserStakeTokens   solana.PublicKey // user's YOT account
	VaultStakeTokens  solana.PublicKey // program's YOT account
	UserRewardTokens  solana.PublicKey // user's YOS account
	VaultRewardTokens solana.PublicKey // program's YOS account
	StakeRecord       solana.PublicKey
	State             solana.PublicKey
	Authority         solana.PublicKey
}

// NewStakeInstruction builds the stake instruction. The record account is
// created by the program on first stake, hence the system program meta.
func NewStakeInstruction(programID solana.PublicKey, accounts StakeAccounts, amount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = OpStake
	binary.LittleEndian.PutUint64(data[1:9], amount)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.User, IsWritable: true, IsSigner: true},
		{PublicKey: accounts.UserStakeTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.VaultStakeTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.StakeRecord, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.State, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarClockPubkey, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(programID, metas, data)
}

// NewUnstakeInstruction builds the unstake instruction. Pending rewards are
// settled in the same call, so both token legs are present.
func NewUnstakeInstruction(programID solana.PublicKey, accounts StakeAccounts, amount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = OpUnstake
	binary.LittleEndian.PutUint64(data[1:9], amount)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.User, IsWritable: true, IsSigner: true},
		{PublicKey: accounts.UserStakeTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.VaultStakeTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.UserRewardTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.VaultRewardTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.StakeRecord, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.State, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarClockPubkey, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(programID, metas, data)
}

// NewHarvestInstruction builds the harvest instruction. The program computes
// the payout from the record and the current time; no amount goes over the
// wire.
func NewHarvestInstruction(programID solana.PublicKey, accounts StakeAccounts) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.User, IsWritable: true, IsSigner: true},
		{PublicKey: accounts.UserRewardTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.VaultRewardTokens, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.StakeRecord, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.State, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarClockPubkey, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(programID, metas, []byte{OpHarvest})
}

// AccountsFor derives the full account set for a user from the staking
// parameters.
func AccountsFor(user solana.PublicKey, params Params, userStakeTokens, userRewardTokens solana.PublicKey) (StakeAccounts, error) {
	record, _, err := program.FindStakingAddress(user, params.ProgramID)
	if err != nil {
		return StakeAccounts{}, err
	}
	state, _, err := program.FindStateAddress(params.ProgramID)
	if err != nil {
		return StakeAccounts{}, err
	}
	authority, _, err := program.FindAuthorityAddress(params.ProgramID)
	if err != nil {
		return StakeAccounts{}, err
	}
	return StakeAccounts{
		User:              user,
		UserStakeTokens:   userStakeTokens,
		VaultStakeTokens:  params.StakeVault,
		UserRewardTokens:  userRewardTokens,
		VaultRewardTokens: params.RewardVault,
		StakeRecord:       record,
		State:             state,
		Authority:         authority,
	}, nil
}
