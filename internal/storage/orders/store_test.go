package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(kv.NewMemory())
}

func TestStoreAddListPending(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Add(domain.Order{ID: "a", Status: domain.OrderPending}))
	require.NoError(t, s.Add(domain.Order{ID: "b", Status: domain.OrderExecuted}))
	require.NoError(t, s.Add(domain.Order{ID: "c", Status: domain.OrderPending}))

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 3)

	pending, err := s.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a", pending[0].ID)
	require.Equal(t, "c", pending[1].ID)
}

func TestStoreTransition(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	require.NoError(t, s.Add(domain.Order{
		ID:          "o1",
		Kind:        domain.OrderLimit,
		Status:      domain.OrderPending,
		TargetPrice: decimal.NewFromInt(100),
	}))

	require.NoError(t, s.Transition("o1", domain.OrderExecuted, "tx123"))

	o, ok, err := s.Get("o1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.OrderExecuted, o.Status)
	require.Equal(t, "tx123", o.TransactionID)
	require.NotNil(t, o.ExecutedAt)
	require.Equal(t, fixed, *o.ExecutedAt)

	// terminal, no second transition
	require.Error(t, s.Transition("o1", domain.OrderCancelled, ""))
	require.ErrorIs(t, s.Transition("missing", domain.OrderCancelled, ""), ErrOrderNotFound)
}

func TestStorePurgeExpired(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, s.Add(domain.Order{ID: "expired", Status: domain.OrderPending, ExpiresAt: &past}))
	require.NoError(t, s.Add(domain.Order{ID: "alive", Status: domain.OrderPending, ExpiresAt: &future}))
	require.NoError(t, s.Add(domain.Order{ID: "done", Status: domain.OrderExecuted, ExpiresAt: &past}))

	purged, err := s.PurgeExpired(now)
	require.NoError(t, err)
	require.Equal(t, 1, purged)

	o, _, err := s.Get("expired")
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, o.Status)

	o, _, err = s.Get("alive")
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, o.Status)

	o, _, err = s.Get("done")
	require.NoError(t, err)
	require.Equal(t, domain.OrderExecuted, o.Status)
}
