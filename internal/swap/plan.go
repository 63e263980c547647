// internal/swap/plan.go
package swap

import (
	"fmt"

	"github.com/multihub-labs/multihub-client/internal/ratemath"
	"github.com/multihub-labs/multihub-client/internal/split"
)

// BuildPlan prices an intent against a reserves snapshot. Splitting happens on
// the input side: the contribution leg is floored and the pool leg is the
// exact remainder, so the two always sum back to the input. The rebate is
// priced off the expected output because the user never pays it in.
func BuildPlan(intent Intent, reserves Reserves, params Params) (Plan, error) {
	if intent.AmountIn == 0 {
		return Plan{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if intent.SlippageBps > 10_000 {
		return Plan{}, fmt.Errorf("%w: slippage %d bps out of range", ErrInvalidInput, intent.SlippageBps)
	}

	legs, err := split.Split(intent.AmountIn, params.ContributionPct)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if legs.PoolInput == 0 {
		return Plan{}, ErrAmountTooSmall
	}

	reserveIn, reserveOut := reserves.Sol, reserves.Token
	if intent.Direction == DirectionTokenToSol {
		reserveIn, reserveOut = reserves.Token, reserves.Sol
	}

	expected, err := ratemath.QuoteOutput(reserveIn, reserveOut, legs.PoolInput, params.FeeBps)
	if err != nil {
		return Plan{}, fmt.Errorf("quote failed: %w", err)
	}

	minOut, err := ratemath.MinOutput(expected, intent.SlippageBps)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rebate, err := split.RebateOnOutput(expected, params.RebatePct)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return Plan{
		PoolInput:    legs.PoolInput,
		Contribution: legs.Contribution,
		ExpectedOut:  expected,
		MinOut:       minOut,
		Rebate:       rebate,
		Stale:        reserves.Stale,
	}, nil
}
