// internal/program/instructions.go
package program

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Instruction opcodes understood by the swap program. The payload after the
// opcode byte is a sequence of little-endian u64 fields.
const (
	OpCreateLiquidityAccount uint8 = 7
	OpSwapSolToToken         uint8 = 8
	OpSwapTokenToSol         uint8 = 9
)

// SwapAccounts lists every account a swap instruction touches, in the order
// the program's ABI requires. The order is positional and identical for both
// swap directions.
type SwapAccounts struct {
	User                   solana.PublicKey // signer, pays and receives
	State                  solana.PublicKey
	Authority              solana.PublicKey
	SolPool                solana.PublicKey
	TokenPool              solana.PublicKey
	UserTokenAccount       solana.PublicKey
	CentralLiquidityWallet solana.PublicKey
	Contribution           solana.PublicKey
	RebateMint             solana.PublicKey
	UserRebateAccount      solana.PublicKey
}

// NewSwapInstruction builds the full swap instruction: opcode, then amountIn
// and minAmountOut as little-endian u64s.
func NewSwapInstruction(
	programID solana.PublicKey,
	opcode uint8,
	accounts SwapAccounts,
	amountIn, minAmountOut uint64,
) solana.Instruction {
	data := make([]byte, 17)
	data[0] = opcode
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.User, IsWritable: true, IsSigner: true},
		{PublicKey: accounts.State, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: accounts.SolPool, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.TokenPool, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.UserTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.CentralLiquidityWallet, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.Contribution, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.RebateMint, IsWritable: true, IsSigner: false},
		{PublicKey: accounts.UserRebateAccount, IsWritable: true, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
	}

	return solana.NewInstruction(programID, metas, data)
}

// NewCreateLiquidityAccountInstruction builds the dedicated creation
// instruction for the per-user contribution record. The program treats an
// already existing record as a no-op, so the instruction is idempotent.
func NewCreateLiquidityAccountInstruction(
	programID, user, contribution solana.PublicKey,
) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: user, IsWritable: true, IsSigner: true},
		{PublicKey: contribution, IsWritable: true, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(programID, metas, []byte{OpCreateLiquidityAccount})
}
