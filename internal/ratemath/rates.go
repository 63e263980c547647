// internal/ratemath/rates.go
package ratemath

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Unit is a time unit for rate conversion.
type Unit string

const (
	UnitSecond Unit = "second"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
	UnitWeek   Unit = "week"
	// UnitMonth is fixed at 30 days. The calendar-accurate 365/12 alternative
	// was rejected so that second->month->second stays a clean power-of-ten
	// chain; see DESIGN.md.
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

var unitSeconds = map[Unit]int64{
	UnitSecond: 1,
	UnitHour:   3_600,
	UnitDay:    86_400,
	UnitWeek:   604_800,
	UnitMonth:  2_592_000,
	UnitYear:   31_536_000,
}

// ConvertRate converts a per-`from` rate into a per-`to` rate. The conversion
// is linear: rate * seconds(to) / seconds(from). Precision is the 18 decimal
// places of LegacyDec, so round-tripping stays within one unit of rounding.
func ConvertRate(rate sdkmath.LegacyDec, from, to Unit) (sdkmath.LegacyDec, error) {
	fromSec, ok := unitSeconds[from]
	if !ok {
		return sdkmath.LegacyDec{}, fmt.Errorf("ratemath: unknown unit %q", from)
	}
	toSec, ok := unitSeconds[to]
	if !ok {
		return sdkmath.LegacyDec{}, fmt.Errorf("ratemath: unknown unit %q", to)
	}
	return rate.MulInt64(toSec).QuoInt64(fromSec), nil
}

// AprToApy compounds a nominal annual rate over the given number of periods:
// (1 + apr/periods)^periods - 1.
func AprToApy(apr sdkmath.LegacyDec, periodsPerYear uint64) (sdkmath.LegacyDec, error) {
	if periodsPerYear == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("ratemath: compounding periods must be positive")
	}
	perPeriod := apr.QuoInt64(int64(periodsPerYear))
	compounded := sdkmath.LegacyOneDec().Add(perPeriod).Power(periodsPerYear)
	return compounded.Sub(sdkmath.LegacyOneDec()), nil
}
