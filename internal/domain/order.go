package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderKind classifies advanced order types.
type OrderKind string

const (
	OrderLimit      OrderKind = "limit"
	OrderStopLoss   OrderKind = "stop_loss"
	OrderTakeProfit OrderKind = "take_profit"
	OrderDCA        OrderKind = "dca"
)

// RequiresPosition reports whether the kind acts on an existing position.
func (k OrderKind) RequiresPosition() bool {
	return k == OrderStopLoss || k == OrderTakeProfit
}

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderExecuted  OrderStatus = "executed"
	OrderCancelled OrderStatus = "cancelled"
	OrderFailed    OrderStatus = "failed"
)

// Terminal reports whether no further transition is allowed from the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderExecuted || s == OrderCancelled || s == OrderFailed
}

// Order is a price-conditional instruction evaluated by the order monitor.
type Order struct {
	ID            string          `json:"id"`
	Kind          OrderKind       `json:"type"`
	PoolAddress   string          `json:"poolAddress"`
	PositionID    string          `json:"positionId,omitempty"`
	TargetPrice   decimal.Decimal `json:"targetPrice"`
	TokenXAmount  decimal.Decimal `json:"tokenXAmount"`
	TokenYAmount  decimal.Decimal `json:"tokenYAmount"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	ExecutedAt    *time.Time      `json:"executedAt,omitempty"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
}

// IsExpired reports whether the order expiry has passed.
func (o Order) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && now.After(*o.ExpiresAt)
}

// Transition moves the order to the given status, rejecting any move out
// of a terminal state and any move back to pending.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if o.Status.Terminal() {
		return errors.Errorf("order %s already %s", o.ID, o.Status)
	}
	if to == OrderPending {
		return errors.Errorf("order %s cannot return to pending", o.ID)
	}

	o.Status = to
	if to == OrderExecuted {
		o.ExecutedAt = &now
	}
	return nil
}
