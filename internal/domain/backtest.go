package domain

import "time"

// Strategy names a backtest liquidity strategy.
type Strategy string

const (
	StrategyStaticRange      Strategy = "static_range"
	StrategyDynamicRebalance Strategy = "dynamic_rebalance"
	StrategyWideRange        Strategy = "wide_range"
	StrategyNarrowRange      Strategy = "narrow_range"
)

// Strategies lists all supported strategies in comparison order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyStaticRange,
		StrategyDynamicRebalance,
		StrategyWideRange,
		StrategyNarrowRange,
	}
}

// BacktestConfig parameterizes one simulation run. Rates are fractions,
// not percents: RangeWidth 0.1 means a 10% wide range.
type BacktestConfig struct {
	Strategy           Strategy  `json:"strategy"`
	PoolAddress        string    `json:"poolAddress"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	InitialCapital     float64   `json:"initialCapital"`
	RangeWidth         float64   `json:"rangeWidth"`
	RebalanceThreshold float64   `json:"rebalanceThreshold"`
	FeePercentage      float64   `json:"feePercentage"`
}

// DailyPoint is one day of the simulated portfolio series.
type DailyPoint struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Return float64   `json:"return"`
}

// BacktestResult aggregates the metrics of one simulation run.
type BacktestResult struct {
	Strategy            Strategy     `json:"strategy"`
	PoolAddress         string       `json:"poolAddress"`
	StartDate           time.Time    `json:"startDate"`
	EndDate             time.Time    `json:"endDate"`
	InitialCapital      float64      `json:"initialCapital"`
	FinalValue          float64      `json:"finalValue"`
	TotalReturn         float64      `json:"totalReturn"`
	AnnualizedReturn    float64      `json:"annualizedReturn"`
	FeesEarned          float64      `json:"feesEarned"`
	ImpermanentLoss     float64      `json:"impermanentLoss"`
	MaxDrawdown         float64      `json:"maxDrawdown"`
	SharpeRatio         float64      `json:"sharpeRatio"`
	TotalTrades         int          `json:"totalTrades"`
	WinRate             float64      `json:"winRate"`
	AvgPositionDuration float64      `json:"avgPositionDuration"`
	DailyReturns        []DailyPoint `json:"dailyReturns"`
}
