package orderexec

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/inflight"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/notifier"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/poolservice"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/rebalancer"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/journal"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/orders"
	"github.com/Blessedbiello/dlmm-pro-manager/pkg/scheduler"
)

const (
	defaultCheckInterval = 30 * time.Second
	defaultKickDelay     = time.Second

	// limit orders fill when price is within 0.5% of target
	limitTriggerFraction = 0.005
	// new positions open 1% around the limit target
	limitRangeFraction = 0.01
)

// Executor submits position transactions for triggered orders.
type Executor interface {
	CreatePosition(ctx context.Context, poolAddress string, lower, upper, amountX, amountY decimal.Decimal) (poolservice.TxResult, error)
	RemoveLiquidity(ctx context.Context, positionID string, percent decimal.Decimal) (poolservice.TxResult, error)
}

// Monitor evaluates pending orders against live pool prices on a fixed
// interval. One bad order never halts evaluation of the rest.
type Monitor struct {
	store   *orders.Store
	source  rebalancer.SnapshotSource
	exec    Executor
	guard   *inflight.Set
	journal *journal.Store
	alerts  *notifier.Alerts
	logger  *zap.Logger
	owner   string

	now           func() time.Time
	checkInterval time.Duration
	kickDelay     time.Duration

	kickMu      sync.Mutex
	pendingKick scheduler.CancelFunc
}

// NewMonitor wires the monitor. journal and alerts may be nil.
func NewMonitor(
	logger *zap.Logger,
	store *orders.Store,
	source rebalancer.SnapshotSource,
	exec Executor,
	guard *inflight.Set,
	jrnl *journal.Store,
	alerts *notifier.Alerts,
	owner string,
) *Monitor {
	return &Monitor{
		store:         store,
		source:        source,
		exec:          exec,
		guard:         guard,
		journal:       jrnl,
		alerts:        alerts,
		logger:        logger,
		owner:         owner,
		now:           time.Now,
		checkInterval: defaultCheckInterval,
		kickDelay:     defaultKickDelay,
	}
}

// SetCheckInterval overrides the tick interval.
func (m *Monitor) SetCheckInterval(d time.Duration) { m.checkInterval = d }

// SetClock overrides the time source, for tests.
func (m *Monitor) SetClock(now func() time.Time) { m.now = now }

// Start registers the periodic check and returns its cancel.
func (m *Monitor) Start(ctx context.Context, sched scheduler.Scheduler) scheduler.CancelFunc {
	return sched.Every(m.checkInterval, func() {
		if err := m.CheckOnce(ctx); err != nil {
			m.logger.Error("order check failed", zap.Error(err))
		}
	})
}

// Kick schedules one debounced off-cycle check.
func (m *Monitor) Kick(ctx context.Context, sched scheduler.Scheduler) {
	m.kickMu.Lock()
	defer m.kickMu.Unlock()

	if m.pendingKick != nil {
		m.pendingKick()
	}
	m.pendingKick = sched.After(m.kickDelay, func() {
		if err := m.CheckOnce(ctx); err != nil {
			m.logger.Error("order check failed", zap.Error(err))
		}
	})
}

// CheckOnce evaluates all pending orders once, in storage order.
func (m *Monitor) CheckOnce(ctx context.Context) error {
	pending, err := m.store.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	pools, err := m.source.ListPools(ctx)
	if err != nil {
		return err
	}
	poolsByAddr := make(map[string]domain.Pool, len(pools))
	for _, p := range pools {
		poolsByAddr[p.Address] = p
	}

	positions, err := m.source.ListPositions(ctx, m.owner)
	if err != nil {
		return err
	}
	positionsByID := make(map[string]domain.Position, len(positions))
	for _, p := range positions {
		positionsByID[p.ID] = p
	}

	for _, o := range pending {
		m.evaluate(ctx, o, poolsByAddr, positionsByID)
	}
	return nil
}

func (m *Monitor) evaluate(ctx context.Context, o domain.Order, pools map[string]domain.Pool, positions map[string]domain.Position) {
	// expiry wins over a satisfied price condition
	if o.IsExpired(m.now()) {
		if err := m.store.Transition(o.ID, domain.OrderCancelled, ""); err != nil {
			m.logger.Error("failed to cancel expired order", zap.String("order", o.ID), zap.Error(err))
		} else {
			m.logger.Info("order expired", zap.String("order", o.ID))
		}
		return
	}

	pool, ok := pools[o.PoolAddress]
	if !ok {
		m.logger.Warn("pool snapshot missing", zap.String("order", o.ID), zap.String("pool", o.PoolAddress))
		return
	}
	price := pool.CurrentPrice

	if !m.shouldTrigger(o, price) {
		return
	}

	if !m.guard.TryAcquire(o.ID) {
		return
	}
	defer m.guard.Release(o.ID)

	tx, err := m.execute(ctx, o, positions)
	if err != nil {
		if terr := m.store.Transition(o.ID, domain.OrderFailed, ""); terr != nil {
			m.logger.Error("failed to mark order failed", zap.String("order", o.ID), zap.Error(terr))
		}
		m.alerts.Error(ctx, fmt.Sprintf("execution of %s order %s", o.Kind, o.ID), err)
		m.logger.Error("order execution failed", zap.String("order", o.ID), zap.Error(err))
		return
	}

	if err := m.store.Transition(o.ID, domain.OrderExecuted, tx.TransactionID); err != nil {
		m.logger.Error("failed to mark order executed", zap.String("order", o.ID), zap.Error(err))
		return
	}

	if m.journal != nil {
		executed, found, gerr := m.store.Get(o.ID)
		if gerr == nil && found {
			if jerr := m.journal.AppendOrder(executed); jerr != nil {
				m.logger.Warn("failed to journal order", zap.String("order", o.ID), zap.Error(jerr))
			}
		}
	}
	m.alerts.OrderExecuted(ctx, o.ID, o.Kind, price)
	m.logger.Info("order executed",
		zap.String("order", o.ID),
		zap.String("type", string(o.Kind)),
		zap.String("price", price.String()),
		zap.String("tx", tx.TransactionID))
}

func (m *Monitor) shouldTrigger(o domain.Order, price decimal.Decimal) bool {
	switch o.Kind {
	case domain.OrderLimit:
		if !o.TargetPrice.IsPositive() {
			return false
		}
		distance := price.Sub(o.TargetPrice).Abs().Div(o.TargetPrice)
		return distance.LessThan(decimal.NewFromFloat(limitTriggerFraction))
	case domain.OrderStopLoss:
		return price.LessThanOrEqual(o.TargetPrice)
	case domain.OrderTakeProfit:
		return price.GreaterThanOrEqual(o.TargetPrice)
	default:
		// dca orders have no price trigger
		return false
	}
}

func (m *Monitor) execute(ctx context.Context, o domain.Order, positions map[string]domain.Position) (poolservice.TxResult, error) {
	switch o.Kind {
	case domain.OrderLimit:
		one := decimal.NewFromInt(1)
		spread := decimal.NewFromFloat(limitRangeFraction)
		lower := o.TargetPrice.Mul(one.Sub(spread))
		upper := o.TargetPrice.Mul(one.Add(spread))
		return m.exec.CreatePosition(ctx, o.PoolAddress, lower, upper, o.TokenXAmount, o.TokenYAmount)
	case domain.OrderStopLoss, domain.OrderTakeProfit:
		if o.PositionID == "" {
			return poolservice.TxResult{}, fmt.Errorf("%s order %s has no linked position", o.Kind, o.ID)
		}
		if _, ok := positions[o.PositionID]; !ok {
			return poolservice.TxResult{}, fmt.Errorf("position %s not found for order %s", o.PositionID, o.ID)
		}
		return m.exec.RemoveLiquidity(ctx, o.PositionID, decimal.NewFromInt(100))
	default:
		return poolservice.TxResult{}, fmt.Errorf("order kind %s is not executable", o.Kind)
	}
}
