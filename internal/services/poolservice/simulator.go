package poolservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/entries"
)

var (
	ErrPoolNotFound     = errors.New("pool not found")
	ErrPositionNotFound = errors.New("position not found")
)

// Simulator is an in-memory Service used for dry runs and tests. Pools
// are seeded with market-like snapshots; prices move only through
// SetPrice.
type Simulator struct {
	mu        sync.Mutex
	pools     map[string]domain.Pool
	positions map[string]domain.Position
	entries   *entries.Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewSimulator creates a simulator with the default pool set. The
// entries store is optional; when present, entry snapshots are kept in
// sync with the position lifecycle.
func NewSimulator(logger *zap.Logger, entryStore *entries.Store) *Simulator {
	s := &Simulator{
		pools:     make(map[string]domain.Pool),
		positions: make(map[string]domain.Position),
		entries:   entryStore,
		logger:    logger,
		now:       time.Now,
	}
	for _, p := range defaultPools() {
		s.pools[p.Address] = p
	}
	return s
}

func defaultPools() []domain.Pool {
	return []domain.Pool{
		{
			Address:      "SoLUSDCPooL1111111111111111111111111111111",
			TokenX:       domain.TokenInfo{Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
			TokenY:       domain.TokenInfo{Symbol: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
			CurrentPrice: decimal.NewFromFloat(245.50),
			TVL:          decimal.NewFromInt(2_400_000),
			Volume24h:    decimal.NewFromInt(850_000),
			Fees24h:      decimal.NewFromInt(2_550),
			BinStep:      10,
		},
		{
			Address:      "SoLSAROSPooL111111111111111111111111111111",
			TokenX:       domain.TokenInfo{Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
			TokenY:       domain.TokenInfo{Symbol: "SAROS", Mint: "SarosY6Vscao718M4A778z4CGtvcwcGef5M9MEH1LGL", Decimals: 6},
			CurrentPrice: decimal.NewFromFloat(2450),
			TVL:          decimal.NewFromInt(480_000),
			Volume24h:    decimal.NewFromInt(96_000),
			Fees24h:      decimal.NewFromInt(288),
			BinStep:      25,
		},
	}
}

// SetPrice moves a pool's current price, as the live feed would.
func (s *Simulator) SetPrice(poolAddress string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[poolAddress]
	if !ok {
		return errors.Wrap(ErrPoolNotFound, poolAddress)
	}
	pool.CurrentPrice = price
	pool.ActiveBinID = pool.BinForPrice(price)
	s.pools[poolAddress] = pool
	return nil
}

func (s *Simulator) ListPools(_ context.Context) ([]domain.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, p)
	}
	return out, nil
}

func (s *Simulator) ListPositions(_ context.Context, _ string) ([]domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	return out, nil
}

func (s *Simulator) CreatePosition(_ context.Context, poolAddress string, lower, upper, amountX, amountY decimal.Decimal) (TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[poolAddress]
	if !ok {
		return TxResult{}, errors.Wrap(ErrPoolNotFound, poolAddress)
	}

	id := fmt.Sprintf("pos_%s", uuid.NewString())
	entry := domain.EntrySnapshot{
		EntryPrice:   pool.CurrentPrice,
		TokenXAmount: amountX,
		TokenYAmount: amountY,
		InitialValue: amountX.Mul(pool.CurrentPrice).Add(amountY),
		Time:         s.now(),
	}
	pos := domain.Position{
		ID:           id,
		PoolAddress:  poolAddress,
		PositionMint: fmt.Sprintf("mint_%s", uuid.NewString()),
		LowerPrice:   lower,
		UpperPrice:   upper,
		LowerBinID:   pool.BinForPrice(lower),
		UpperBinID:   pool.BinForPrice(upper),
		TokenXAmount: amountX,
		TokenYAmount: amountY,
		Liquidity:    entry.InitialValue,
		Entry:        &entry,
	}
	s.positions[id] = pos

	if s.entries != nil {
		if err := s.entries.Save(id, entry); err != nil {
			s.logger.Warn("failed to save entry snapshot", zap.String("position", id), zap.Error(err))
		}
	}
	s.logger.Info("position created",
		zap.String("position", id),
		zap.String("pool", poolAddress),
		zap.String("range", fmt.Sprintf("[%s, %s]", lower, upper)))

	return s.txResult(), nil
}

func (s *Simulator) RemoveLiquidity(_ context.Context, positionID string, percent decimal.Decimal) (TxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[positionID]
	if !ok {
		return TxResult{}, errors.Wrap(ErrPositionNotFound, positionID)
	}

	if percent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		delete(s.positions, positionID)
		if s.entries != nil {
			if err := s.entries.Delete(positionID); err != nil {
				s.logger.Warn("failed to delete entry snapshot", zap.String("position", positionID), zap.Error(err))
			}
		}
	} else {
		keep := decimal.NewFromInt(1).Sub(percent.Div(decimal.NewFromInt(100)))
		pos.TokenXAmount = pos.TokenXAmount.Mul(keep)
		pos.TokenYAmount = pos.TokenYAmount.Mul(keep)
		pos.Liquidity = pos.Liquidity.Mul(keep)
		s.positions[positionID] = pos
	}

	s.logger.Info("liquidity removed",
		zap.String("position", positionID),
		zap.String("percent", percent.String()))

	return s.txResult(), nil
}

func (s *Simulator) CollectFees(_ context.Context, positionID string) (FeesResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[positionID]
	if !ok {
		return FeesResult{}, errors.Wrap(ErrPositionNotFound, positionID)
	}

	collected := pos.FeesEarned
	pos.FeesEarned = decimal.Zero
	s.positions[positionID] = pos

	return FeesResult{TxResult: s.txResult(), FeesCollected: collected}, nil
}

// RebalancePosition closes the position range and reopens it centered on
// the current pool price, newRangeWidthPercent wide in total.
func (s *Simulator) RebalancePosition(_ context.Context, positionID string, newRangeWidthPercent decimal.Decimal) (RebalanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[positionID]
	if !ok {
		return RebalanceResult{}, errors.Wrap(ErrPositionNotFound, positionID)
	}
	pool, ok := s.pools[pos.PoolAddress]
	if !ok {
		return RebalanceResult{}, errors.Wrap(ErrPoolNotFound, pos.PoolAddress)
	}

	oldRange := pos.Range()
	halfWidth := newRangeWidthPercent.Div(decimal.NewFromInt(200))
	price := pool.CurrentPrice
	pos.LowerPrice = price.Mul(decimal.NewFromInt(1).Sub(halfWidth))
	pos.UpperPrice = price.Mul(decimal.NewFromInt(1).Add(halfWidth))
	pos.LowerBinID = pool.BinForPrice(pos.LowerPrice)
	pos.UpperBinID = pool.BinForPrice(pos.UpperPrice)
	s.positions[positionID] = pos

	s.logger.Info("position rebalanced",
		zap.String("position", positionID),
		zap.String("price", price.String()),
		zap.String("newRange", fmt.Sprintf("[%s, %s]", pos.LowerPrice, pos.UpperPrice)))

	return RebalanceResult{
		TxResult: s.txResult(),
		OldRange: oldRange,
		NewRange: pos.Range(),
	}, nil
}

// AccrueFees credits earned fees to a position, for demos and tests.
func (s *Simulator) AccrueFees(positionID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[positionID]
	if !ok {
		return errors.Wrap(ErrPositionNotFound, positionID)
	}
	pos.FeesEarned = pos.FeesEarned.Add(amount)
	s.positions[positionID] = pos
	return nil
}

func (s *Simulator) txResult() TxResult {
	return TxResult{Success: true, TransactionID: fmt.Sprintf("sim_tx_%s", uuid.NewString())}
}
