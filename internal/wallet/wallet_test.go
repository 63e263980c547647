// internal/wallet/wallet_test.go
package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromBase58(t *testing.T) {
	generated := solana.NewWallet()
	encoded := base58.Encode(generated.PrivateKey)

	w, err := NewFromBase58(encoded)
	require.NoError(t, err)
	assert.Equal(t, generated.PublicKey(), w.PublicKey)
	assert.Equal(t, generated.PublicKey().String(), w.String())
}

func TestNewFromBase58_Invalid(t *testing.T) {
	_, err := NewFromBase58("not-base58-!!!")
	assert.Error(t, err)

	// Valid base58 but wrong length.
	_, err = NewFromBase58(base58.Encode([]byte{1, 2, 3}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length")
}

func TestATA_Memoized(t *testing.T) {
	generated := solana.NewWallet()
	w, err := NewFromBase58(base58.Encode(generated.PrivateKey))
	require.NoError(t, err)

	mint := solana.NewWallet().PublicKey()

	first, err := w.ATA(mint)
	require.NoError(t, err)
	second, err := w.ATA(mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	expected, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, first)
}

func TestCreateATAIdempotentInstruction(t *testing.T) {
	generated := solana.NewWallet()
	w, err := NewFromBase58(base58.Encode(generated.PrivateKey))
	require.NoError(t, err)

	mint := solana.NewWallet().PublicKey()
	ix := w.CreateATAIdempotentInstruction(mint)

	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	metas := ix.Accounts()
	require.Len(t, metas, 7)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, mint, metas[3].PublicKey)
}

func TestSignTransaction(t *testing.T) {
	generated := solana.NewWallet()
	w, err := NewFromBase58(base58.Encode(generated.PrivateKey))
	require.NoError(t, err)

	ix := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{{PublicKey: w.PublicKey, IsSigner: true, IsWritable: true}},
		[]byte{0},
	)
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(w.PublicKey))
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
