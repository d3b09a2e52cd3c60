package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

type staticPools struct {
	pools []domain.Pool
}

func (s *staticPools) ListPools(context.Context) ([]domain.Pool, error) {
	return s.pools, nil
}

func testSource() *staticPools {
	return &staticPools{pools: []domain.Pool{{
		Address:      "pool1",
		CurrentPrice: decimal.NewFromFloat(245.5),
	}}}
}

func baseConfig() domain.BacktestConfig {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.BacktestConfig{
		Strategy:       domain.StrategyStaticRange,
		PoolAddress:    "pool1",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 10),
		InitialCapital: 10_000,
	}
}

func TestEngineTenDayRun(t *testing.T) {
	e := NewEngine(testSource(), zap.NewNop(), WithSeed(42))

	res, err := e.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	require.Len(t, res.DailyReturns, 10)
	require.Zero(t, res.DailyReturns[0].Return)
	require.Equal(t, res.DailyReturns[9].Value, res.FinalValue)
	require.False(t, res.DailyReturns[0].Date.After(res.DailyReturns[9].Date))
	require.GreaterOrEqual(t, res.MaxDrawdown, 0.0)
	require.InDelta(t, res.TotalReturn/10*365, res.AnnualizedReturn, 1e-9)
}

func TestEngineSeededRunsAreReproducible(t *testing.T) {
	cfg := baseConfig()

	first, err := NewEngine(testSource(), zap.NewNop(), WithSeed(7)).Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := NewEngine(testSource(), zap.NewNop(), WithSeed(7)).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, first.FinalValue, second.FinalValue)
	require.Equal(t, first.DailyReturns, second.DailyReturns)

	different, err := NewEngine(testSource(), zap.NewNop(), WithSeed(8)).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotEqual(t, first.FinalValue, different.FinalValue)
}

func TestEngineRejectsBadConfig(t *testing.T) {
	e := NewEngine(testSource(), zap.NewNop(), WithSeed(1))
	ctx := context.Background()

	cfg := baseConfig()
	cfg.PoolAddress = "missing"
	_, err := e.Run(ctx, cfg)
	require.ErrorIs(t, err, ErrPoolNotFound)

	cfg = baseConfig()
	cfg.EndDate = cfg.StartDate
	_, err = e.Run(ctx, cfg)
	require.ErrorIs(t, err, ErrInvalidPeriod)

	cfg = baseConfig()
	cfg.InitialCapital = 0
	_, err = e.Run(ctx, cfg)
	require.ErrorIs(t, err, ErrInvalidCapital)

	cfg = baseConfig()
	cfg.Strategy = domain.Strategy("grid")
	_, err = e.Run(ctx, cfg)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestEngineCompareStrategies(t *testing.T) {
	e := NewEngine(testSource(), zap.NewNop(), WithSeed(42))
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	results, err := e.CompareStrategies(context.Background(), "pool1", 10_000, start, start.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, results, 4)

	seen := make(map[domain.Strategy]bool)
	for _, r := range results {
		seen[r.Strategy] = true
		require.Len(t, r.DailyReturns, 30)
	}
	for _, strat := range domain.Strategies() {
		require.True(t, seen[strat], "missing %s", strat)
	}
}

func TestSharpeRatio(t *testing.T) {
	// identical returns have zero variance, guarded to zero
	require.Zero(t, sharpeRatio([]float64{0.01, 0.01, 0.01}))
	require.Zero(t, sharpeRatio(nil))

	positive := sharpeRatio([]float64{0.01, 0.02, 0.03})
	require.Greater(t, positive, 0.0)

	negative := sharpeRatio([]float64{-0.01, -0.02, -0.03})
	require.Less(t, negative, 0.0)
}

func TestEngineDynamicRebalanceCountsTrades(t *testing.T) {
	e := NewEngine(testSource(), zap.NewNop(), WithSeed(3))

	cfg := baseConfig()
	cfg.Strategy = domain.StrategyDynamicRebalance
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, 365)
	cfg.RebalanceThreshold = 0.01

	res, err := e.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Greater(t, res.TotalTrades, 0)
	require.InDelta(t, 365.0/float64(res.TotalTrades), res.AvgPositionDuration, 1e-9)
}
