package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderTransition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending to executed sets executedAt", func(t *testing.T) {
		o := Order{ID: "o1", Status: OrderPending}
		require.NoError(t, o.Transition(OrderExecuted, now))
		require.Equal(t, OrderExecuted, o.Status)
		require.NotNil(t, o.ExecutedAt)
		require.Equal(t, now, *o.ExecutedAt)
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		for _, st := range []OrderStatus{OrderExecuted, OrderCancelled, OrderFailed} {
			o := Order{ID: "o2", Status: st}
			err := o.Transition(OrderCancelled, now)
			require.Error(t, err)
			require.Equal(t, st, o.Status)
		}
	})

	t.Run("cannot move back to pending", func(t *testing.T) {
		o := Order{ID: "o3", Status: OrderPending}
		require.Error(t, o.Transition(OrderPending, now))
	})
}

func TestOrderIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	require.False(t, Order{}.IsExpired(now))
	require.True(t, Order{ExpiresAt: &past}.IsExpired(now))
	require.False(t, Order{ExpiresAt: &future}.IsExpired(now))
}

func TestOrderKindRequiresPosition(t *testing.T) {
	require.True(t, OrderStopLoss.RequiresPosition())
	require.True(t, OrderTakeProfit.RequiresPosition())
	require.False(t, OrderLimit.RequiresPosition())
	require.False(t, OrderDCA.RequiresPosition())
}

func TestOrderJSONKindField(t *testing.T) {
	o := Order{ID: "x", Kind: OrderStopLoss, TargetPrice: decimal.NewFromInt(90)}
	require.Equal(t, OrderKind("stop_loss"), o.Kind)
}
