// Package orderexec creates advanced orders and executes the ones whose
// price conditions are met.
package orderexec

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/rebalancer"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/orders"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/validation"
)

var (
	ErrPoolNotFound     = errors.New("pool not found")
	ErrPositionNotFound = errors.New("position not found")
)

// Service is the order creation and cancellation API. Orders are
// validated against the current pool price before they are persisted.
type Service struct {
	store  *orders.Store
	source rebalancer.SnapshotSource
	logger *zap.Logger
	owner  string
	now    func() time.Time
}

// NewService wires the order API.
func NewService(logger *zap.Logger, store *orders.Store, source rebalancer.SnapshotSource, owner string) *Service {
	return &Service{
		store:  store,
		source: source,
		logger: logger,
		owner:  owner,
		now:    time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func newOrderID(kind domain.OrderKind) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}

func (s *Service) poolByAddress(ctx context.Context, address string) (domain.Pool, error) {
	pools, err := s.source.ListPools(ctx)
	if err != nil {
		return domain.Pool{}, err
	}
	for _, p := range pools {
		if p.Address == address {
			return p, nil
		}
	}
	return domain.Pool{}, errors.Wrap(ErrPoolNotFound, address)
}

func (s *Service) positionByID(ctx context.Context, id string) (domain.Position, error) {
	positions, err := s.source.ListPositions(ctx, s.owner)
	if err != nil {
		return domain.Position{}, err
	}
	for _, p := range positions {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Position{}, errors.Wrap(ErrPositionNotFound, id)
}

// CreateLimitOrder places a buy-the-dip style order that opens a
// position once price comes within reach of the target. expiresIn of
// zero means the order never expires.
func (s *Service) CreateLimitOrder(ctx context.Context, poolAddress string, targetPrice, amountX, amountY decimal.Decimal, expiresIn time.Duration) (domain.Order, error) {
	pool, err := s.poolByAddress(ctx, poolAddress)
	if err != nil {
		return domain.Order{}, err
	}
	if res := validation.OrderParams(domain.OrderLimit, targetPrice, pool.CurrentPrice); !res.Valid {
		return domain.Order{}, errors.New(res.Error)
	}
	if res := validation.TokenAmounts(amountX, amountY, validation.DefaultMinTokenAmount, validation.DefaultMaxTokenAmount); !res.Valid {
		return domain.Order{}, errors.New(res.Error)
	}

	now := s.now()
	o := domain.Order{
		ID:           newOrderID(domain.OrderLimit),
		Kind:         domain.OrderLimit,
		PoolAddress:  poolAddress,
		TargetPrice:  targetPrice,
		TokenXAmount: amountX,
		TokenYAmount: amountY,
		Status:       domain.OrderPending,
		CreatedAt:    now,
	}
	if expiresIn > 0 {
		expires := now.Add(expiresIn)
		o.ExpiresAt = &expires
	}
	return s.persist(o)
}

// CreateStopLoss places an order that fully exits a position once price
// falls to the stop.
func (s *Service) CreateStopLoss(ctx context.Context, positionID string, stopPrice decimal.Decimal) (domain.Order, error) {
	return s.createPositionExit(ctx, domain.OrderStopLoss, positionID, stopPrice)
}

// CreateTakeProfit places an order that fully exits a position once
// price rises to the target.
func (s *Service) CreateTakeProfit(ctx context.Context, positionID string, targetPrice decimal.Decimal) (domain.Order, error) {
	return s.createPositionExit(ctx, domain.OrderTakeProfit, positionID, targetPrice)
}

func (s *Service) createPositionExit(ctx context.Context, kind domain.OrderKind, positionID string, target decimal.Decimal) (domain.Order, error) {
	pos, err := s.positionByID(ctx, positionID)
	if err != nil {
		return domain.Order{}, err
	}
	pool, err := s.poolByAddress(ctx, pos.PoolAddress)
	if err != nil {
		return domain.Order{}, err
	}
	if res := validation.OrderParams(kind, target, pool.CurrentPrice); !res.Valid {
		return domain.Order{}, errors.New(res.Error)
	}

	o := domain.Order{
		ID:          newOrderID(kind),
		Kind:        kind,
		PoolAddress: pos.PoolAddress,
		PositionID:  positionID,
		TargetPrice: target,
		Status:      domain.OrderPending,
		CreatedAt:   s.now(),
	}
	return s.persist(o)
}

// CreateDCAOrder records a recurring-buy intent. No execution schedule
// is attached; the order stays pending until cancelled.
func (s *Service) CreateDCAOrder(ctx context.Context, poolAddress string, amountX, amountY decimal.Decimal) (domain.Order, error) {
	pool, err := s.poolByAddress(ctx, poolAddress)
	if err != nil {
		return domain.Order{}, err
	}
	if res := validation.TokenAmounts(amountX, amountY, validation.DefaultMinTokenAmount, validation.DefaultMaxTokenAmount); !res.Valid {
		return domain.Order{}, errors.New(res.Error)
	}

	o := domain.Order{
		ID:           newOrderID(domain.OrderDCA),
		Kind:         domain.OrderDCA,
		PoolAddress:  poolAddress,
		TargetPrice:  pool.CurrentPrice,
		TokenXAmount: amountX,
		TokenYAmount: amountY,
		Status:       domain.OrderPending,
		CreatedAt:    s.now(),
	}
	return s.persist(o)
}

// Cancel marks a pending order cancelled.
func (s *Service) Cancel(_ context.Context, orderID string) error {
	return s.store.Cancel(orderID)
}

func (s *Service) persist(o domain.Order) (domain.Order, error) {
	if err := s.store.Add(o); err != nil {
		return domain.Order{}, err
	}
	s.logger.Info("order created",
		zap.String("order", o.ID),
		zap.String("type", string(o.Kind)),
		zap.String("target", o.TargetPrice.String()))
	return o, nil
}
