// internal/program/addresses.go
package program

import (
	"github.com/gagliardetto/solana-go"
)

// PDA seeds used by the on-chain swap program. The per-user seeds pair the
// fixed prefix with the user's public key, so every wallet gets exactly one
// record of each kind.
var (
	stateSeed        = []byte("state")
	authoritySeed    = []byte("authority")
	contributionSeed = []byte("liq")
	stakingSeed      = []byte("staking")
)

// FindStateAddress derives the program state PDA.
func FindStateAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{stateSeed}, programID)
}

// FindAuthorityAddress derives the program authority PDA that signs pool-side
// token transfers.
func FindAuthorityAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{authoritySeed}, programID)
}

// FindContributionAddress derives the per-user liquidity contribution record.
func FindContributionAddress(user, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{contributionSeed, user.Bytes()}, programID)
}

// FindStakingAddress derives the per-user stake record.
func FindStakingAddress(user, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{stakingSeed, user.Bytes()}, programID)
}
