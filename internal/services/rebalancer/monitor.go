// Package rebalancer watches positions with auto-rebalance enabled and
// recenters them when price drifts too far from the range center.
package rebalancer

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
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/journal"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/rebalance"
	"github.com/Blessedbiello/dlmm-pro-manager/pkg/scheduler"
)

const (
	defaultCheckInterval = 30 * time.Second
	defaultKickDelay     = time.Second
)

// SnapshotSource supplies the pool and position snapshots a tick acts on.
type SnapshotSource interface {
	ListPools(ctx context.Context) ([]domain.Pool, error)
	ListPositions(ctx context.Context, owner string) ([]domain.Position, error)
}

// RebalanceAction submits the actual close-and-reopen transaction.
type RebalanceAction interface {
	RebalancePosition(ctx context.Context, positionID string, newRangeWidthPercent decimal.Decimal) (poolservice.RebalanceResult, error)
}

// Monitor evaluates every position against its auto-rebalance config on
// a fixed interval. Entries are processed sequentially; failures are
// contained per position.
type Monitor struct {
	source  SnapshotSource
	action  RebalanceAction
	store   *rebalance.Store
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
	source SnapshotSource,
	action RebalanceAction,
	store *rebalance.Store,
	guard *inflight.Set,
	jrnl *journal.Store,
	alerts *notifier.Alerts,
	owner string,
) *Monitor {
	return &Monitor{
		source:        source,
		action:        action,
		store:         store,
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
			m.logger.Error("rebalance check failed", zap.Error(err))
		}
	})
}

// Kick schedules one debounced off-cycle check, collapsing bursts of
// config changes into a single evaluation.
func (m *Monitor) Kick(ctx context.Context, sched scheduler.Scheduler) {
	m.kickMu.Lock()
	defer m.kickMu.Unlock()

	if m.pendingKick != nil {
		m.pendingKick()
	}
	m.pendingKick = sched.After(m.kickDelay, func() {
		if err := m.CheckOnce(ctx); err != nil {
			m.logger.Error("rebalance check failed", zap.Error(err))
		}
	})
}

// CheckOnce evaluates all positions once, in snapshot order.
func (m *Monitor) CheckOnce(ctx context.Context) error {
	positions, err := m.source.ListPositions(ctx, m.owner)
	if err != nil {
		return err
	}
	pools, err := m.source.ListPools(ctx)
	if err != nil {
		return err
	}

	poolsByAddr := make(map[string]domain.Pool, len(pools))
	for _, p := range pools {
		poolsByAddr[p.Address] = p
	}

	for _, pos := range positions {
		m.evaluate(ctx, pos, poolsByAddr)
	}
	return nil
}

func (m *Monitor) evaluate(ctx context.Context, pos domain.Position, pools map[string]domain.Pool) {
	cfg, ok, err := m.store.Config(pos.ID)
	if err != nil {
		m.logger.Error("failed to load rebalance config", zap.String("position", pos.ID), zap.Error(err))
		return
	}
	if !ok || !cfg.Enabled || m.guard.Has(pos.ID) {
		return
	}

	now := m.now()
	if cfg.CoolingDown(now) {
		return
	}

	pool, ok := pools[pos.PoolAddress]
	if !ok {
		m.logger.Warn("pool snapshot missing", zap.String("position", pos.ID), zap.String("pool", pos.PoolAddress))
		return
	}
	price := pool.CurrentPrice

	if !pos.IsOutOfRange(price) {
		return
	}

	deviation := pos.DeviationPercent(price)
	if deviation.LessThan(cfg.PriceDeviationThreshold) {
		m.alerts.PositionOutOfRange(ctx, pos.ID, price)
		return
	}

	if !m.guard.TryAcquire(pos.ID) {
		return
	}
	defer m.guard.Release(pos.ID)

	m.logger.Info("rebalance triggered",
		zap.String("position", pos.ID),
		zap.String("price", price.String()),
		zap.String("deviation", deviation.String()),
		zap.String("threshold", cfg.PriceDeviationThreshold.String()))

	ev := domain.RebalanceEvent{
		ID:         fmt.Sprintf("rebalance_%s_%d", pos.ID, now.UnixMilli()),
		PositionID: pos.ID,
		Timestamp:  now,
	}

	res, err := m.action.RebalancePosition(ctx, pos.ID, cfg.NewRangeWidth)
	if err != nil {
		ev.OldRange = pos.Range()
		ev.Success = false
		m.record(ev)
		m.alerts.Error(ctx, fmt.Sprintf("rebalance of position %s", pos.ID), err)
		m.logger.Error("rebalance failed", zap.String("position", pos.ID), zap.Error(err))
		return
	}

	ev.OldRange = res.OldRange
	ev.NewRange = res.NewRange
	ev.TxHash = res.TransactionID
	ev.Success = res.Success
	m.record(ev)

	if res.Success {
		m.alerts.RebalanceExecuted(ctx, pos.ID, res.OldRange, res.NewRange)
		m.logger.Info("rebalance executed",
			zap.String("position", pos.ID),
			zap.String("tx", res.TransactionID))
	}
}

func (m *Monitor) record(ev domain.RebalanceEvent) {
	if err := m.store.RecordEvent(ev); err != nil {
		m.logger.Error("failed to record rebalance event", zap.String("position", ev.PositionID), zap.Error(err))
	}
	if m.journal != nil {
		if err := m.journal.AppendRebalance(ev); err != nil {
			m.logger.Warn("failed to journal rebalance event", zap.String("position", ev.PositionID), zap.Error(err))
		}
	}
}
