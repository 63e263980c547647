// internal/split/split.go
package split

import (
	"errors"
	"math/big"
)

// ErrInvalidPercentage is returned when a percentage falls outside [0, 100].
var ErrInvalidPercentage = errors.New("split: percentage out of range")

// Result carries the two input-side legs of a swap. The contribution leg is
// floored, the pool leg is the exact remainder, so PoolInput + Contribution
// always equals the original input with no rounding drift.
type Result struct {
	PoolInput    uint64
	Contribution uint64
}

// Split divides a swap input between the trading pool and the protocol
// liquidity reserve. contributionPct is a whole percentage in [0, 100].
func Split(inputAmount, contributionPct uint64) (Result, error) {
	if contributionPct > 100 {
		return Result{}, ErrInvalidPercentage
	}
	contribution := floorPct(inputAmount, contributionPct)
	return Result{
		PoolInput:    inputAmount - contribution,
		Contribution: contribution,
	}, nil
}

// RebateOnOutput computes the rebate leg against the swap output. The rebate
// token is minted to the user rather than taken from the input, which is why
// it is priced off the output amount.
func RebateOnOutput(outputAmount, rebatePct uint64) (uint64, error) {
	if rebatePct > 100 {
		return 0, ErrInvalidPercentage
	}
	return floorPct(outputAmount, rebatePct), nil
}

func floorPct(amount, pct uint64) uint64 {
	v := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(pct))
	v.Quo(v, big.NewInt(100))
	return v.Uint64()
}
