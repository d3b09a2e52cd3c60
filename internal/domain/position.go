package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const daysPerYear = 365

// PriceRange is an inclusive price interval covered by a position.
type PriceRange struct {
	Lower decimal.Decimal `json:"lower"`
	Upper decimal.Decimal `json:"upper"`
}

// IsZero reports whether both bounds are unset.
func (r PriceRange) IsZero() bool {
	return r.Lower.IsZero() && r.Upper.IsZero()
}

// EntrySnapshot captures the position state at open time, used to derive
// PnL and APY later without historical queries.
type EntrySnapshot struct {
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	TokenXAmount decimal.Decimal `json:"tokenXAmount"`
	TokenYAmount decimal.Decimal `json:"tokenYAmount"`
	InitialValue decimal.Decimal `json:"initialValue"`
	Time         time.Time       `json:"time"`
}

// PnL is the value difference against the initial deposit.
func (s EntrySnapshot) PnL(currentValue decimal.Decimal) decimal.Decimal {
	return currentValue.Sub(s.InitialValue)
}

// APY annualizes the realized return since entry, in percent.
// Zero when the snapshot is empty or no time has elapsed.
func (s EntrySnapshot) APY(currentValue, feesEarned decimal.Decimal, now time.Time) decimal.Decimal {
	if !s.InitialValue.IsPositive() {
		return decimal.Zero
	}
	elapsedDays := decimal.NewFromFloat(now.Sub(s.Time).Hours() / 24)
	if !elapsedDays.IsPositive() {
		return decimal.Zero
	}
	gain := s.PnL(currentValue).Add(feesEarned)

	return gain.Div(s.InitialValue).
		Div(elapsedDays).
		Mul(decimal.NewFromInt(daysPerYear)).
		Mul(decimal.NewFromInt(100))
}

// Position is a liquidity position within a pool.
type Position struct {
	ID           string          `json:"id"`
	PoolAddress  string          `json:"poolAddress"`
	PositionMint string          `json:"positionMint"`
	LowerPrice   decimal.Decimal `json:"lowerPrice"`
	UpperPrice   decimal.Decimal `json:"upperPrice"`
	LowerBinID   int32           `json:"lowerBinId"`
	UpperBinID   int32           `json:"upperBinId"`
	TokenXAmount decimal.Decimal `json:"tokenXAmount"`
	TokenYAmount decimal.Decimal `json:"tokenYAmount"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	FeesEarned   decimal.Decimal `json:"feesEarned"`
	Entry        *EntrySnapshot  `json:"entry,omitempty"`
}

// Range returns the position price bounds.
func (p Position) Range() PriceRange {
	return PriceRange{Lower: p.LowerPrice, Upper: p.UpperPrice}
}

// RangeCenter is the midpoint of the position range.
func (p Position) RangeCenter() decimal.Decimal {
	return p.LowerPrice.Add(p.UpperPrice).Div(decimal.NewFromInt(2))
}

// IsOutOfRange reports whether price sits strictly outside the bounds.
func (p Position) IsOutOfRange(price decimal.Decimal) bool {
	return price.LessThan(p.LowerPrice) || price.GreaterThan(p.UpperPrice)
}

// DeviationPercent is the absolute distance of price from the range
// center, as a percentage of the center.
func (p Position) DeviationPercent(price decimal.Decimal) decimal.Decimal {
	center := p.RangeCenter()
	if center.IsZero() {
		return decimal.Zero
	}

	return price.Sub(center).Abs().Div(center).Mul(decimal.NewFromInt(100))
}

// CurrentValue prices the position holdings at the given pool price.
func (p Position) CurrentValue(price decimal.Decimal) decimal.Decimal {
	return p.TokenXAmount.Mul(price).Add(p.TokenYAmount)
}
