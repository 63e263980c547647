// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig(t *testing.T) string {
	t.Helper()
	programID := solana.NewWallet().PublicKey().String()
	mint := solana.NewWallet().PublicKey().String()
	return writeConfig(t, `
rpc_url: "https://api.mainnet-beta.solana.com"
program_id: "`+programID+`"
staking_program_id: "`+programID+`"
yot_mint: "`+mint+`"
yos_mint: "`+solana.NewWallet().PublicKey().String()+`"
sol_pool: "`+solana.NewWallet().PublicKey().String()+`"
yot_pool: "`+solana.NewWallet().PublicKey().String()+`"
central_liquidity_wallet: "`+solana.NewWallet().PublicKey().String()+`"
`)
}

func TestLoad_DefaultsApply(t *testing.T) {
	provider, err := Load(validConfig(t))
	require.NoError(t, err)

	cfg := provider.Config()
	assert.Equal(t, uint64(DefaultContributionPct), cfg.ContributionPct)
	assert.Equal(t, uint64(DefaultRebatePct), cfg.RebatePct)
	assert.Equal(t, uint16(DefaultFeeBps), cfg.FeeBps)
	assert.Equal(t, DefaultStakeRate, cfg.StakeRatePerSecond)
	assert.Equal(t, uint64(DefaultHarvestThreshold), cfg.HarvestThreshold)

	params := provider.SwapParams()
	assert.Equal(t, uint64(20), params.ContributionPct)
	assert.Equal(t, 30*time.Second, params.ConfirmTimeout)
	assert.Equal(t, 2*time.Second, params.PropagationDelay)
	assert.False(t, params.ProgramID.IsZero())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MULTIHUB_CONTRIBUTION_PCT", "25")
	t.Setenv("MULTIHUB_STAKE_RATE_PER_SECOND", "0.000000025")

	provider, err := Load(validConfig(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(25), provider.SwapParams().ContributionPct)
	assert.Equal(t, "0.000000025000000000",
		provider.StakingParams().RatePerSecond.String())
}

func TestLoad_RejectsMissingRPC(t *testing.T) {
	path := writeConfig(t, `program_id: ""`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
}

func TestLoad_RejectsBadPercentage(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "https://localhost:8899"
contribution_pct: 101
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contribution_pct")
}

func TestLoad_RejectsBadAddress(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "https://localhost:8899"
program_id: "not-a-key"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program_id")
}

func TestLoad_RejectsBadRate(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "https://localhost:8899"
stake_rate_per_second: "twelve"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stake_rate_per_second")
}

func TestStakingParams_Parsed(t *testing.T) {
	provider, err := Load(validConfig(t))
	require.NoError(t, err)

	params := provider.StakingParams()
	assert.False(t, params.ProgramID.IsZero())
	assert.Equal(t, "0.000000012500000000", params.RatePerSecond.String())
	assert.Equal(t, uint64(100), params.HarvestThreshold)
	assert.Equal(t, 30*time.Second, params.ConfirmTimeout)
}
