// internal/ratemath/ratemath.go
package ratemath

import (
	"errors"
	"math/big"
)

// bpsDenominator is the basis-point scale shared by fee and slippage inputs.
const bpsDenominator = 10_000

var (
	// ErrDivisionByZero is returned when the quote denominator collapses to zero
	// (empty reserves and no effective input).
	ErrDivisionByZero = errors.New("ratemath: division by zero")
	// ErrInvalidBps is returned for a basis-point value above 10000.
	ErrInvalidBps = errors.New("ratemath: basis points out of range")
)

// QuoteOutput prices a swap against a constant-product pool with the fee taken
// from the input side:
//
//	out = floor(reserveOut * in * (10000-feeBps) / (reserveIn*10000 + in*(10000-feeBps)))
//
// All intermediate arithmetic runs on big integers; the result is exact and
// never rounds up.
func QuoteOutput(reserveIn, reserveOut, amountIn uint64, feeBps uint16) (uint64, error) {
	if feeBps > bpsDenominator {
		return 0, ErrInvalidBps
	}
	// An empty pool cannot quote; treat it the same as the degenerate
	// denominator so callers have one error to check.
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrDivisionByZero
	}

	// effectiveIn = amountIn * (10000 - feeBps), scaled by 10000.
	effectiveIn := new(big.Int).Mul(
		new(big.Int).SetUint64(amountIn),
		big.NewInt(int64(bpsDenominator-feeBps)),
	)

	denominator := new(big.Int).Add(
		new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), big.NewInt(bpsDenominator)),
		effectiveIn,
	)
	if denominator.Sign() == 0 {
		return 0, ErrDivisionByZero
	}

	numerator := new(big.Int).Mul(new(big.Int).SetUint64(reserveOut), effectiveIn)
	out := new(big.Int).Quo(numerator, denominator)
	return out.Uint64(), nil
}

// MinOutput applies a slippage tolerance to an expected output amount:
// floor(expected * (10000 - slippageBps) / 10000). MinOutput(e, 0) == e.
func MinOutput(expected uint64, slippageBps uint16) (uint64, error) {
	if slippageBps > bpsDenominator {
		return 0, ErrInvalidBps
	}
	out := new(big.Int).Mul(
		new(big.Int).SetUint64(expected),
		big.NewInt(int64(bpsDenominator-slippageBps)),
	)
	out.Quo(out, big.NewInt(bpsDenominator))
	return out.Uint64(), nil
}
