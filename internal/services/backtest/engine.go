// Package backtest simulates liquidity strategies over a synthetic
// price path seeded from a pool's current price.
package backtest

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

const (
	dailyDrift        = 0.0002
	dailyVolatility   = 0.02
	tradingDaysPerYr  = 252
	defaultFeePct     = 0.0003
	defaultThreshold  = 0.05
	defaultRangeWide  = 0.2
	defaultRangeMid   = 0.1
	defaultRangeTight = 0.05
	narrowBand        = 0.05
)

var (
	ErrPoolNotFound    = errors.New("pool not found")
	ErrInvalidPeriod   = errors.New("end date must be after start date")
	ErrInvalidCapital  = errors.New("initial capital must be positive")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// PoolSource resolves the pool whose current price seeds the path.
type PoolSource interface {
	ListPools(ctx context.Context) ([]domain.Pool, error)
}

// Engine runs strategy simulations. Apart from the seed price lookup it
// is a pure function of config and the injected random source.
type Engine struct {
	pools   PoolSource
	logger  *zap.Logger
	newRand func() *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes every run use an identical, reproducible price path.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.newRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	}
}

// NewEngine wires the engine. The default random source is
// time-seeded, so production runs stay non-deterministic.
func NewEngine(pools PoolSource, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		pools:  pools,
		logger: logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates one strategy over the configured period.
func (e *Engine) Run(ctx context.Context, cfg domain.BacktestConfig) (domain.BacktestResult, error) {
	switch cfg.Strategy {
	case domain.StrategyStaticRange, domain.StrategyDynamicRebalance,
		domain.StrategyWideRange, domain.StrategyNarrowRange:
	default:
		return domain.BacktestResult{}, errors.Wrap(ErrUnknownStrategy, string(cfg.Strategy))
	}
	if cfg.InitialCapital <= 0 {
		return domain.BacktestResult{}, ErrInvalidCapital
	}
	days := int(math.Ceil(cfg.EndDate.Sub(cfg.StartDate).Hours() / 24))
	if days <= 0 {
		return domain.BacktestResult{}, ErrInvalidPeriod
	}

	seed, err := e.seedPrice(ctx, cfg.PoolAddress)
	if err != nil {
		return domain.BacktestResult{}, err
	}

	feePct := cfg.FeePercentage
	if feePct == 0 {
		feePct = defaultFeePct
	}
	threshold := cfg.RebalanceThreshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	rangeWidth := cfg.RangeWidth
	if rangeWidth == 0 {
		rangeWidth = defaultRangeMid
	}

	prices := e.pricePath(seed, days)

	// entry split: half the capital on each side at the seed price
	tokenX := cfg.InitialCapital / 2 / seed
	tokenY := cfg.InitialCapital / 2
	entryX, entryY := tokenX, tokenY

	var (
		daily       = make([]domain.DailyPoint, 0, days)
		returns     = make([]float64, 0, days)
		peak        = cfg.InitialCapital
		maxDrawdown float64
		feesEarned  float64
		totalIL     float64
		trades      int
		wins        int
		prevValue   float64
	)

	for day := 0; day < days; day++ {
		price := prices[day]
		prevPrice := seed
		if day > 0 {
			prevPrice = prices[day-1]
		}

		value := tokenX*price + tokenY
		fee := value * feePct
		value += fee
		feesEarned += fee

		switch cfg.Strategy {
		case domain.StrategyStaticRange:
			if price < seed*(1-rangeWidth) || price > seed*(1+rangeWidth) {
				value -= fee
				feesEarned -= fee
			}
		case domain.StrategyDynamicRebalance:
			if math.Abs((price-prevPrice)/prevPrice) > threshold {
				before := value
				tokenX = value / 2 / price
				tokenY = value / 2
				trades++
				if value > before {
					wins++
				}
			}
		case domain.StrategyWideRange:
			value -= fee * 0.5
			feesEarned -= fee * 0.5
		case domain.StrategyNarrowRange:
			if price >= seed*(1-narrowBand) && price <= seed*(1+narrowBand) {
				value += fee
				feesEarned += fee
			} else {
				value -= 2 * fee
				feesEarned -= 2 * fee
			}
		}

		ratio := price / seed
		il := 2*math.Sqrt(ratio)/(1+ratio) - 1
		holdValue := entryX*price + entryY
		value += il * holdValue
		totalIL += il * holdValue

		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}

		ret := 0.0
		if day > 0 && prevValue != 0 {
			ret = (value - prevValue) / prevValue
		}
		returns = append(returns, ret)
		daily = append(daily, domain.DailyPoint{
			Date:   cfg.StartDate.AddDate(0, 0, day),
			Value:  value,
			Return: ret,
		})
		prevValue = value
	}

	finalValue := prevValue
	totalReturn := (finalValue - cfg.InitialCapital) / cfg.InitialCapital * 100

	winRate := 0.0
	if trades > 0 {
		winRate = float64(wins) / float64(trades) * 100
	}
	avgDuration := float64(days)
	if trades > 1 {
		avgDuration = float64(days) / float64(trades)
	}

	res := domain.BacktestResult{
		Strategy:            cfg.Strategy,
		PoolAddress:         cfg.PoolAddress,
		StartDate:           cfg.StartDate,
		EndDate:             cfg.EndDate,
		InitialCapital:      cfg.InitialCapital,
		FinalValue:          finalValue,
		TotalReturn:         totalReturn,
		AnnualizedReturn:    totalReturn / float64(days) * 365,
		FeesEarned:          feesEarned,
		ImpermanentLoss:     totalIL,
		MaxDrawdown:         maxDrawdown * 100,
		SharpeRatio:         sharpeRatio(returns),
		TotalTrades:         trades,
		WinRate:             winRate,
		AvgPositionDuration: avgDuration,
		DailyReturns:        daily,
	}

	e.logger.Info("backtest finished",
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("days", days),
		zap.Float64("finalValue", finalValue),
		zap.Float64("totalReturn", totalReturn))

	return res, nil
}

// CompareStrategies runs all four strategies over the same period with
// the fixed default parameters.
func (e *Engine) CompareStrategies(ctx context.Context, poolAddress string, initialCapital float64, start, end time.Time) ([]domain.BacktestResult, error) {
	results := make([]domain.BacktestResult, 0, 4)
	for _, strat := range domain.Strategies() {
		rangeWidth := defaultRangeMid
		switch strat {
		case domain.StrategyWideRange:
			rangeWidth = defaultRangeWide
		case domain.StrategyNarrowRange:
			rangeWidth = defaultRangeTight
		}

		res, err := e.Run(ctx, domain.BacktestConfig{
			Strategy:           strat,
			PoolAddress:        poolAddress,
			StartDate:          start,
			EndDate:            end,
			InitialCapital:     initialCapital,
			RangeWidth:         rangeWidth,
			RebalanceThreshold: defaultThreshold,
			FeePercentage:      defaultFeePct,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "strategy %s", strat)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) seedPrice(ctx context.Context, address string) (float64, error) {
	pools, err := e.pools.ListPools(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range pools {
		if p.Address == address {
			price := p.CurrentPrice.InexactFloat64()
			if price <= 0 {
				return 0, errors.Errorf("pool %s has no usable price", address)
			}
			return price, nil
		}
	}
	return 0, errors.Wrap(ErrPoolNotFound, address)
}

func (e *Engine) pricePath(seed float64, days int) []float64 {
	rng := e.newRand()

	prices := make([]float64, days)
	prices[0] = seed
	for i := 1; i < days; i++ {
		shock := -dailyVolatility + rng.Float64()*2*dailyVolatility
		prices[i] = prices[i-1] * (1 + dailyDrift + shock)
	}
	return prices
}

// sharpeRatio annualizes mean/stddev of daily returns; zero variance
// yields zero, never NaN.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYr)
}
