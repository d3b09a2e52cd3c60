// Package notifier delivers user-facing notifications. Delivery
// failures are logged and never propagated to the monitors.
package notifier

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

// Notifier delivers one notification to its transport.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// LogNotifier writes notifications to the log, the default transport.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg domain.Notification) error {
	fields := []zap.Field{
		zap.String("title", msg.Title),
		zap.String("message", msg.Message),
	}
	for k, v := range msg.Data {
		fields = append(fields, zap.String(k, v))
	}

	switch msg.Type {
	case domain.NotifyError:
		n.logger.Error("notification", fields...)
	case domain.NotifyWarning:
		n.logger.Warn("notification", fields...)
	default:
		n.logger.Info("notification", fields...)
	}
	return nil
}

// Alerts provides the domain notification shortcuts used by the
// monitors.
type Alerts struct {
	sink   Notifier
	logger *zap.Logger
}

// NewAlerts wraps a delivery sink.
func NewAlerts(sink Notifier, logger *zap.Logger) *Alerts {
	return &Alerts{sink: sink, logger: logger}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func (a *Alerts) send(ctx context.Context, n domain.Notification) {
	if a == nil || a.sink == nil {
		return
	}
	if err := a.sink.Send(ctx, n); err != nil {
		a.logger.Warn("notification delivery failed", zap.String("title", n.Title), zap.Error(err))
	}
}

// PositionOutOfRange warns that a position stopped earning fees.
func (a *Alerts) PositionOutOfRange(ctx context.Context, positionID string, price decimal.Decimal) {
	a.send(ctx, domain.Notification{
		Type:    domain.NotifyWarning,
		Title:   "Position Out of Range",
		Message: fmt.Sprintf("Position %s is out of range at price %s and is not earning fees", shortID(positionID), price),
		Data:    map[string]string{"positionId": positionID, "price": price.String()},
	})
}

// RebalanceExecuted reports a completed auto-rebalance.
func (a *Alerts) RebalanceExecuted(ctx context.Context, positionID string, oldRange, newRange domain.PriceRange) {
	a.send(ctx, domain.Notification{
		Type:  domain.NotifySuccess,
		Title: "Position Rebalanced",
		Message: fmt.Sprintf("Position %s moved from [%s, %s] to [%s, %s]",
			shortID(positionID), oldRange.Lower, oldRange.Upper, newRange.Lower, newRange.Upper),
		Data: map[string]string{"positionId": positionID},
	})
}

// OrderExecuted reports a filled order.
func (a *Alerts) OrderExecuted(ctx context.Context, orderID string, kind domain.OrderKind, price decimal.Decimal) {
	a.send(ctx, domain.Notification{
		Type:    domain.NotifySuccess,
		Title:   "Order Executed",
		Message: fmt.Sprintf("%s order %s executed at price %s", kind, shortID(orderID), price),
		Data:    map[string]string{"orderId": orderID, "type": string(kind)},
	})
}

// HighFees suggests collecting accumulated fees.
func (a *Alerts) HighFees(ctx context.Context, positionID string, fees decimal.Decimal) {
	a.send(ctx, domain.Notification{
		Type:    domain.NotifyInfo,
		Title:   "Fees Available",
		Message: fmt.Sprintf("Position %s has earned %s in fees, consider collecting", shortID(positionID), fees),
		Data:    map[string]string{"positionId": positionID},
	})
}

// PriceAlert reports a watched pool crossing a target price.
func (a *Alerts) PriceAlert(ctx context.Context, poolAddress string, target, current decimal.Decimal) {
	a.send(ctx, domain.Notification{
		Type:    domain.NotifyInfo,
		Title:   "Price Alert",
		Message: fmt.Sprintf("Pool %s reached %s (target %s)", shortID(poolAddress), current, target),
		Data:    map[string]string{"poolAddress": poolAddress},
	})
}

// Error reports a failed operation.
func (a *Alerts) Error(ctx context.Context, operation string, err error) {
	a.send(ctx, domain.Notification{
		Type:    domain.NotifyError,
		Title:   "Operation Failed",
		Message: fmt.Sprintf("%s: %s", operation, err),
	})
}
