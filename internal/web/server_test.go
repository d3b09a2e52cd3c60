package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/orders"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/rebalance"
)

type staticSource struct {
	pools     []domain.Pool
	positions []domain.Position
}

func (s *staticSource) ListPools(context.Context) ([]domain.Pool, error) {
	return s.pools, nil
}

func (s *staticSource) ListPositions(context.Context, string) ([]domain.Position, error) {
	return s.positions, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	source := &staticSource{
		pools: []domain.Pool{{Address: "pool1", CurrentPrice: decimal.NewFromInt(100)}},
		positions: []domain.Position{{
			ID:          "pos1",
			PoolAddress: "pool1",
			LowerPrice:  decimal.NewFromInt(90),
			UpperPrice:  decimal.NewFromInt(110),
		}},
	}
	backend := kv.NewMemory()
	orderStore := orders.NewStore(backend)
	require.NoError(t, orderStore.Add(domain.Order{ID: "o1", Kind: domain.OrderLimit, Status: domain.OrderPending}))

	rebalanceStore := rebalance.NewStore(backend)
	require.NoError(t, rebalanceStore.SetConfig(domain.AutoRebalanceConfig{PositionID: "pos1", Enabled: true}))

	return NewServer(":0", source, orderStore, rebalanceStore, nil, zap.NewNop(), "owner1")
}

func TestHandlePools(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handlePools(rec, httptest.NewRequest("GET", "/api/pools", nil))

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var pools []domain.Pool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pools))
	require.Len(t, pools, 1)
	require.Equal(t, "pool1", pools[0].Address)
}

func TestHandlePositionsAndOrders(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handlePositions(rec, httptest.NewRequest("GET", "/api/positions", nil))
	require.Equal(t, 200, rec.Code)

	var positions []domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 1)

	rec = httptest.NewRecorder()
	s.handleOrders(rec, httptest.NewRequest("GET", "/api/orders", nil))
	require.Equal(t, 200, rec.Code)

	var all []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
}

func TestHandleRebalanceEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleRebalanceConfigs(rec, httptest.NewRequest("GET", "/api/rebalance/configs", nil))
	require.Equal(t, 200, rec.Code)

	var configs map[string]domain.AutoRebalanceConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &configs))
	require.Contains(t, configs, "pos1")

	rec = httptest.NewRecorder()
	s.handleRebalanceHistory(rec, httptest.NewRequest("GET", "/api/rebalance/history", nil))
	require.Equal(t, 200, rec.Code)
}

func TestEventStreamUnavailableWithoutJournal(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleEventStream(rec, httptest.NewRequest("GET", "/events/stream", nil))
	require.Equal(t, 503, rec.Code)
}
