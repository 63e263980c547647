// internal/swap/progress.go
package swap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/multihub-labs/multihub-client/internal/program"
)

// ProgramState reads and decodes the on-chain configuration account. The
// result is informational: configuration remains the source of truth for the
// client-side math, and a divergence is logged rather than acted on.
func (o *Orchestrator) ProgramState(ctx context.Context) (*program.State, error) {
	params := o.params.SwapParams()

	statePDA, _, err := program.FindStateAddress(params.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive state address: %w", err)
	}

	data, err := o.client.GetAccountData(ctx, statePDA)
	if err != nil {
		return nil, fmt.Errorf("read program state: %w", err)
	}

	state, err := program.DecodeState(data)
	if err != nil {
		return nil, err
	}

	if state.LpContributionRate != params.ContributionPct {
		o.logger.Warn("configured contribution rate differs from on-chain state",
			zap.Uint64("configured", params.ContributionPct),
			zap.Uint64("on_chain", state.LpContributionRate))
	}
	if state.YosCashbackRate != params.RebatePct {
		o.logger.Warn("configured rebate rate differs from on-chain state",
			zap.Uint64("configured", params.RebatePct),
			zap.Uint64("on_chain", state.YosCashbackRate))
	}
	return state, nil
}

// ContributionProgress reads the caller's cumulative liquidity contribution
// record.
func (o *Orchestrator) ContributionProgress(ctx context.Context) (*program.Contribution, error) {
	params := o.params.SwapParams()

	addr, err := o.resolver.ContributionAddress(o.wallet.PublicKey, params.ProgramID)
	if err != nil {
		return nil, err
	}

	data, err := o.client.GetAccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("read contribution record: %w", err)
	}
	return program.DecodeContribution(data)
}
