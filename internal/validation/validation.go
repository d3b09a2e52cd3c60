// Package validation holds pure pre-flight checks shared by the monitors
// and the order API. Failures are values, never errors or panics.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

// Result is the outcome of a single validation check.
type Result struct {
	Valid bool
	Error string
}

func valid() Result { return Result{Valid: true} }

func invalid(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

var (
	// DefaultMinTokenAmount is the smallest deposit worth submitting.
	DefaultMinTokenAmount = decimal.NewFromFloat(0.001)
	// DefaultMaxTokenAmount caps a single deposit side.
	DefaultMaxTokenAmount = decimal.NewFromInt(1_000_000)

	minRangeWidthPercent = decimal.NewFromInt(1)
	maxRangeWidthPercent = decimal.NewFromInt(100)

	hundred = decimal.NewFromInt(100)
)

// PriceRange checks position bounds against the current pool price.
// The range width must be between 1% and 100% of the lower bound.
func PriceRange(lower, upper, current decimal.Decimal) Result {
	if !lower.IsPositive() || !upper.IsPositive() {
		return invalid("prices must be positive")
	}
	if lower.GreaterThanOrEqual(upper) {
		return invalid("lower price must be less than upper price")
	}
	if current.LessThanOrEqual(lower) || current.GreaterThanOrEqual(upper) {
		return invalid("current price %s is outside the specified range", current)
	}

	width := upper.Sub(lower).Div(lower).Mul(hundred)
	if width.LessThan(minRangeWidthPercent) {
		return invalid("range too narrow: minimum width is %s%%", minRangeWidthPercent)
	}
	if width.GreaterThan(maxRangeWidthPercent) {
		return invalid("range too wide: maximum width is %s%%", maxRangeWidthPercent)
	}

	return valid()
}

// TokenAmounts checks a deposit pair: non-negative, at least one side at
// or above min, neither side above max.
func TokenAmounts(x, y, min, max decimal.Decimal) Result {
	if x.IsNegative() || y.IsNegative() {
		return invalid("token amounts cannot be negative")
	}
	if x.LessThan(min) && y.LessThan(min) {
		return invalid("at least one token amount must be %s or more", min)
	}
	if x.GreaterThan(max) || y.GreaterThan(max) {
		return invalid("token amount exceeds the maximum of %s", max)
	}

	return valid()
}

// SlippagePercent is the relative distance of actual from expected, in
// percent. Zero when expected is zero.
func SlippagePercent(expected, actual decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return actual.Sub(expected).Abs().Div(expected).Mul(hundred)
}

// Slippage rejects fills that moved more than maxPercent away from the
// expected price.
func Slippage(expected, actual, maxPercent decimal.Decimal) Result {
	slip := SlippagePercent(expected, actual)
	if slip.GreaterThan(maxPercent) {
		return invalid("slippage %s%% exceeds tolerance of %s%%", slip.Round(4), maxPercent)
	}
	return valid()
}

const nativeSymbol = "SOL"

// NativeFeeReserve is kept untouched on the native balance for tx fees.
var NativeFeeReserve = decimal.NewFromFloat(0.01)

// Balance checks that available funds cover the required amount. For the
// native asset a fee reserve must remain after spending.
func Balance(required, available decimal.Decimal, symbol string) Result {
	need := required
	if symbol == nativeSymbol {
		need = need.Add(NativeFeeReserve)
	}
	if need.GreaterThan(available) {
		return invalid("insufficient %s balance: need %s, have %s", symbol, need, available)
	}
	return valid()
}

// RebalanceConfig checks auto-rebalance settings: deviation threshold
// 1-50%, new range width 5-100%, cooldown between 1 minute and 24 hours.
func RebalanceConfig(threshold, rangeWidth decimal.Decimal, cooldownMinutes int64) Result {
	if threshold.LessThan(decimal.NewFromInt(1)) || threshold.GreaterThan(decimal.NewFromInt(50)) {
		return invalid("deviation threshold must be between 1%% and 50%%")
	}
	if rangeWidth.LessThan(decimal.NewFromInt(5)) || rangeWidth.GreaterThan(hundred) {
		return invalid("new range width must be between 5%% and 100%%")
	}
	if cooldownMinutes < 1 || cooldownMinutes > 24*60 {
		return invalid("cooldown must be between 1 minute and 24 hours")
	}
	return valid()
}

var minLimitDistancePercent = decimal.NewFromFloat(0.1)

// OrderParams checks the target price of an order against the current
// pool price before the order is accepted.
func OrderParams(kind domain.OrderKind, target, current decimal.Decimal) Result {
	if !target.IsPositive() {
		return invalid("target price must be positive")
	}

	switch kind {
	case domain.OrderLimit:
		if current.IsPositive() {
			distance := target.Sub(current).Abs().Div(current).Mul(hundred)
			if distance.LessThan(minLimitDistancePercent) {
				return invalid("target price too close to current price (min %s%% away)", minLimitDistancePercent)
			}
		}
	case domain.OrderStopLoss:
		if target.GreaterThanOrEqual(current) {
			return invalid("stop loss price must be below the current price")
		}
	case domain.OrderTakeProfit:
		if target.LessThanOrEqual(current) {
			return invalid("take profit price must be above the current price")
		}
	case domain.OrderDCA:
	default:
		return invalid("unknown order type %q", kind)
	}

	return valid()
}

// Operation names a transaction kind for gas estimation.
type Operation string

const (
	OpCreatePosition  Operation = "create_position"
	OpRemoveLiquidity Operation = "remove_liquidity"
	OpRebalance       Operation = "rebalance"
	OpCollectFees     Operation = "collect_fees"
)

var baseGasCost = decimal.NewFromFloat(0.000005)

// EstimateGasCost returns the expected fee in native units for the
// operation. Rebalance is priced as close-and-reopen plus overhead.
func EstimateGasCost(op Operation) decimal.Decimal {
	switch op {
	case OpCreatePosition:
		return baseGasCost.Mul(decimal.NewFromInt(2))
	case OpRemoveLiquidity:
		return baseGasCost.Mul(decimal.NewFromFloat(1.5))
	case OpRebalance:
		return baseGasCost.Mul(decimal.NewFromFloat(3.5))
	default:
		return baseGasCost
	}
}

// DefaultProfitMultiplier is the minimum profit-to-gas ratio for a
// transaction to be worth submitting.
var DefaultProfitMultiplier = decimal.NewFromInt(2)

// Economical reports whether the expected profit justifies the gas cost.
func Economical(expectedProfit, gasCost, multiplier decimal.Decimal) Result {
	if expectedProfit.LessThan(gasCost.Mul(multiplier)) {
		return invalid("expected profit %s does not cover %sx gas cost %s", expectedProfit, multiplier, gasCost)
	}
	return valid()
}
