// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/fsnotify/fsnotify"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/staking"
	"github.com/multihub-labs/multihub-client/internal/swap"
)

// Config is the raw configuration as read from file and environment. All
// protocol addresses and percentages live here; nothing is hard-coded in the
// packages that consume them.
type Config struct {
	RPCURL     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`

	ProgramID              string `mapstructure:"program_id"`
	StakingProgramID       string `mapstructure:"staking_program_id"`
	YotMint                string `mapstructure:"yot_mint"`
	YosMint                string `mapstructure:"yos_mint"`
	SolPool                string `mapstructure:"sol_pool"`
	YotPool                string `mapstructure:"yot_pool"`
	CentralLiquidityWallet string `mapstructure:"central_liquidity_wallet"`
	StakeVault             string `mapstructure:"stake_vault"`
	RewardVault            string `mapstructure:"reward_vault"`

	ContributionPct uint64 `mapstructure:"contribution_pct"`
	RebatePct       uint64 `mapstructure:"rebate_pct"`
	FeeBps          uint16 `mapstructure:"fee_bps"`

	ComputeUnits             uint32 `mapstructure:"compute_units"`
	PriorityFeeMicroLamports uint64 `mapstructure:"priority_fee_micro_lamports"`
	ConfirmTimeoutMs         int    `mapstructure:"confirm_timeout_ms"`
	PropagationDelayMs       int    `mapstructure:"propagation_delay_ms"`

	StakeRatePerSecond string `mapstructure:"stake_rate_per_second"`
	HarvestThreshold   uint64 `mapstructure:"harvest_threshold"`

	PostgresURL  string `mapstructure:"postgres_url"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

const (
	DefaultContributionPct    = 20
	DefaultRebatePct          = 5
	DefaultFeeBps             = 30
	DefaultComputeUnits       = 200_000
	DefaultConfirmTimeoutMs   = 30_000
	DefaultPropagationDelayMs = 2_000
	DefaultStakeRate          = "0.0000000125"
	DefaultHarvestThreshold   = 100
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"rpc_url":                     "",
		"private_key":                 "",
		"program_id":                  "",
		"staking_program_id":          "",
		"yot_mint":                    "",
		"yos_mint":                    "",
		"sol_pool":                    "",
		"yot_pool":                    "",
		"central_liquidity_wallet":    "",
		"stake_vault":                 "",
		"reward_vault":                "",
		"contribution_pct":            DefaultContributionPct,
		"rebate_pct":                  DefaultRebatePct,
		"fee_bps":                     DefaultFeeBps,
		"compute_units":               DefaultComputeUnits,
		"priority_fee_micro_lamports": 0,
		"confirm_timeout_ms":          DefaultConfirmTimeoutMs,
		"propagation_delay_ms":        DefaultPropagationDelayMs,
		"stake_rate_per_second":       DefaultStakeRate,
		"harvest_threshold":           DefaultHarvestThreshold,
		"postgres_url":                "",
		"debug_logging":               false,
		"log_file":                    "",
	}
}

// Provider loads configuration and hands out parsed parameter sets. It
// implements swap.ParamsProvider and staking.ParamsProvider; hot reloads swap
// the parsed sets atomically, a broken edit keeps the last good values.
type Provider struct {
	v *viper.Viper

	mu       sync.RWMutex
	cfg      Config
	swapP    swap.Params
	stakingP staking.Params
}

// Load reads the config file, applies MULTIHUB_-prefixed environment
// overrides, validates, and parses the address material.
func Load(path string) (*Provider, error) {
	v := viper.New()
	v.SetConfigFile(path)

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MULTIHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	p := &Provider{v: v}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Watch re-parses the file on change. Percentages, rates and thresholds take
// effect on the next swap or projection; addresses and keys are reread too.
func (p *Provider) Watch(logger *zap.Logger) {
	p.v.OnConfigChange(func(_ fsnotify.Event) {
		if err := p.reload(); err != nil {
			logger.Warn("config reload rejected, keeping previous values", zap.Error(err))
			return
		}
		logger.Info("config reloaded")
	})
	p.v.WatchConfig()
}

func (p *Provider) reload() error {
	var cfg Config
	if err := p.v.Unmarshal(&cfg); err != nil {
		return err
	}
	if err := validate(&cfg); err != nil {
		return err
	}

	swapP, stakingP, err := parse(&cfg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cfg = cfg
	p.swapP = swapP
	p.stakingP = stakingP
	p.mu.Unlock()
	return nil
}

// Config returns a copy of the raw configuration.
func (p *Provider) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// SwapParams implements swap.ParamsProvider.
func (p *Provider) SwapParams() swap.Params {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.swapP
}

// StakingParams implements staking.ParamsProvider.
func (p *Provider) StakingParams() staking.Params {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stakingP
}

func validate(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if cfg.ContributionPct > 100 {
		return errors.New("contribution_pct must be within [0,100]")
	}
	if cfg.RebatePct > 100 {
		return errors.New("rebate_pct must be within [0,100]")
	}
	if cfg.FeeBps > 10_000 {
		return errors.New("fee_bps must be within [0,10000]")
	}
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.PropagationDelayMs < 0 {
		return errors.New("invalid propagation_delay_ms")
	}
	rate, err := sdkmath.LegacyNewDecFromStr(cfg.StakeRatePerSecond)
	if err != nil {
		return fmt.Errorf("invalid stake_rate_per_second: %w", err)
	}
	if rate.IsNegative() {
		return errors.New("stake_rate_per_second must not be negative")
	}
	return nil
}

func validateURL(rawURL, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func parse(cfg *Config) (swap.Params, staking.Params, error) {
	keys := map[string]string{
		"program_id":               cfg.ProgramID,
		"staking_program_id":       cfg.StakingProgramID,
		"yot_mint":                 cfg.YotMint,
		"yos_mint":                 cfg.YosMint,
		"sol_pool":                 cfg.SolPool,
		"yot_pool":                 cfg.YotPool,
		"central_liquidity_wallet": cfg.CentralLiquidityWallet,
		"stake_vault":              cfg.StakeVault,
		"reward_vault":             cfg.RewardVault,
	}
	parsed := make(map[string]solana.PublicKey, len(keys))
	for name, value := range keys {
		if value == "" {
			continue
		}
		key, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			return swap.Params{}, staking.Params{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		parsed[name] = key
	}

	rate, err := sdkmath.LegacyNewDecFromStr(cfg.StakeRatePerSecond)
	if err != nil {
		return swap.Params{}, staking.Params{}, fmt.Errorf("invalid stake_rate_per_second: %w", err)
	}

	swapP := swap.Params{
		ProgramID:              parsed["program_id"],
		TokenMint:              parsed["yot_mint"],
		RebateMint:             parsed["yos_mint"],
		SolPool:                parsed["sol_pool"],
		TokenPool:              parsed["yot_pool"],
		CentralLiquidityWallet: parsed["central_liquidity_wallet"],

		ContributionPct: cfg.ContributionPct,
		RebatePct:       cfg.RebatePct,
		FeeBps:          cfg.FeeBps,

		ComputeUnits:             cfg.ComputeUnits,
		PriorityFeeMicroLamports: cfg.PriorityFeeMicroLamports,
		ConfirmTimeout:           time.Duration(cfg.ConfirmTimeoutMs) * time.Millisecond,
		PropagationDelay:         time.Duration(cfg.PropagationDelayMs) * time.Millisecond,
	}

	stakingP := staking.Params{
		ProgramID:        parsed["staking_program_id"],
		StakeMint:        parsed["yot_mint"],
		RewardMint:       parsed["yos_mint"],
		StakeVault:       parsed["stake_vault"],
		RewardVault:      parsed["reward_vault"],
		RatePerSecond:    rate,
		HarvestThreshold: cfg.HarvestThreshold,
		ConfirmTimeout:   time.Duration(cfg.ConfirmTimeoutMs) * time.Millisecond,
	}

	return swapP, stakingP, nil
}
