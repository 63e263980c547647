// internal/program/layouts.go
package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Fixed account sizes. The program serializes these records manually as
// little-endian fields in declaration order, so a plain borsh-style decode
// matches the wire layout byte for byte.
const (
	StateLen        = 176 // 4 pubkeys + 6 u64
	ContributionLen = 64  // pubkey + u64 + i64 + i64 + u64
	StakeRecordLen  = 64  // pubkey + u64 + i64 + i64 + u64
)

// State mirrors the program's global configuration account. All rates are
// whole percentages.
type State struct {
	Admin              solana.PublicKey
	YotMint            solana.PublicKey
	YosMint            solana.PublicKey
	LpContributionRate uint64
	AdminFeeRate       uint64
	YosCashbackRate    uint64
	SwapFeeRate        uint64
	ReferralRate       uint64
	LiquidityWallet    solana.PublicKey
	LiquidityThreshold uint64
}

// Contribution is the per-user liquidity contribution record. The record is
// owned by the program; clients only read it.
type Contribution struct {
	User              solana.PublicKey
	ContributedAmount uint64
	StartTimestamp    int64
	LastClaimTime     int64
	TotalClaimedYos   uint64
}

// StakeRecord is the per-user staking record.
type StakeRecord struct {
	Staker          solana.PublicKey
	StakedAmount    uint64
	StartTimestamp  int64
	LastHarvestTime int64
	TotalHarvested  uint64
}

// DecodeState decodes a program state account.
func DecodeState(data []byte) (*State, error) {
	if len(data) < StateLen {
		return nil, fmt.Errorf("program: state account too short: %d bytes", len(data))
	}
	var s State
	if err := bin.NewBinDecoder(data).Decode(&s); err != nil {
		return nil, fmt.Errorf("program: decode state: %w", err)
	}
	return &s, nil
}

// DecodeContribution decodes a liquidity contribution account.
func DecodeContribution(data []byte) (*Contribution, error) {
	if len(data) < ContributionLen {
		return nil, fmt.Errorf("program: contribution account too short: %d bytes", len(data))
	}
	var c Contribution
	if err := bin.NewBinDecoder(data).Decode(&c); err != nil {
		return nil, fmt.Errorf("program: decode contribution: %w", err)
	}
	return &c, nil
}

// DecodeStakeRecord decodes a stake record account.
func DecodeStakeRecord(data []byte) (*StakeRecord, error) {
	if len(data) < StakeRecordLen {
		return nil, fmt.Errorf("program: stake record too short: %d bytes", len(data))
	}
	var r StakeRecord
	if err := bin.NewBinDecoder(data).Decode(&r); err != nil {
		return nil, fmt.Errorf("program: decode stake record: %w", err)
	}
	return &r, nil
}
