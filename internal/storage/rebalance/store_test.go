package rebalance

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

func TestStoreMissingKeysReadEmpty(t *testing.T) {
	s := NewStore(kv.NewMemory())

	configs, err := s.Configs()
	require.NoError(t, err)
	require.Empty(t, configs)

	history, err := s.History()
	require.NoError(t, err)
	require.Empty(t, history)

	_, ok, err := s.Config("pos1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreConfigRoundTrip(t *testing.T) {
	s := NewStore(kv.NewMemory())

	cfg := domain.AutoRebalanceConfig{
		PositionID:               "pos1",
		Enabled:                  true,
		PriceDeviationThreshold:  decimal.NewFromInt(5),
		NewRangeWidth:            decimal.NewFromInt(10),
		MinTimeBetweenRebalances: 60,
	}
	require.NoError(t, s.SetConfig(cfg))

	got, ok, err := s.Config("pos1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg.PositionID, got.PositionID)
	require.True(t, got.PriceDeviationThreshold.Equal(cfg.PriceDeviationThreshold))

	require.NoError(t, s.RemoveConfig("pos1"))
	_, ok, err = s.Config("pos1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.RemoveConfig("missing"))
}

func TestStoreHistoryCapNewestFirst(t *testing.T) {
	s := NewStore(kv.NewMemory())
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		ev := domain.RebalanceEvent{
			ID:         fmt.Sprintf("ev%d", i),
			PositionID: "pos1",
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Success:    false,
		}
		require.NoError(t, s.RecordEvent(ev))
	}

	history, err := s.History()
	require.NoError(t, err)
	require.Len(t, history, HistoryLimit)
	require.Equal(t, "ev59", history[0].ID)
	require.Equal(t, "ev10", history[HistoryLimit-1].ID)
}

func TestStoreRecordEventAdvancesCooldownOnSuccessOnly(t *testing.T) {
	s := NewStore(kv.NewMemory())
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetConfig(domain.AutoRebalanceConfig{PositionID: "pos1", Enabled: true}))

	require.NoError(t, s.RecordEvent(domain.RebalanceEvent{
		ID: "fail", PositionID: "pos1", Timestamp: ts, Success: false,
	}))
	cfg, _, err := s.Config("pos1")
	require.NoError(t, err)
	require.Nil(t, cfg.LastRebalanceTime)

	require.NoError(t, s.RecordEvent(domain.RebalanceEvent{
		ID: "ok", PositionID: "pos1", Timestamp: ts, Success: true,
	}))
	cfg, _, err = s.Config("pos1")
	require.NoError(t, err)
	require.NotNil(t, cfg.LastRebalanceTime)
	require.True(t, cfg.LastRebalanceTime.Equal(ts))

	// an older success never rolls the cooldown back
	require.NoError(t, s.RecordEvent(domain.RebalanceEvent{
		ID: "late", PositionID: "pos1", Timestamp: ts.Add(-time.Hour), Success: true,
	}))
	cfg, _, err = s.Config("pos1")
	require.NoError(t, err)
	require.True(t, cfg.LastRebalanceTime.Equal(ts))

	// success for an unknown position is recorded without a config write
	require.NoError(t, s.RecordEvent(domain.RebalanceEvent{
		ID: "orphan", PositionID: "ghost", Timestamp: ts, Success: true,
	}))
}
