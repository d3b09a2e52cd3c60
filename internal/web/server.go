// Package web exposes the dashboard HTTP API: pool/position/order/
// rebalance state as JSON plus an SSE stream over the audit journal.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/rebalancer"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/journal"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/orders"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/rebalance"
)

const (
	journalPollInterval = 2 * time.Second
	heartbeatInterval   = 30 * time.Second
)

// Server serves the dashboard API.
type Server struct {
	addr      string
	source    rebalancer.SnapshotSource
	orders    *orders.Store
	rebalance *rebalance.Store
	journal   *journal.Store
	logger    *zap.Logger
	owner     string
}

// NewServer wires the server. The journal may be nil, which disables
// the event stream.
func NewServer(
	addr string,
	source rebalancer.SnapshotSource,
	orderStore *orders.Store,
	rebalanceStore *rebalance.Store,
	jrnl *journal.Store,
	logger *zap.Logger,
	owner string,
) *Server {
	return &Server{
		addr:      addr,
		source:    source,
		orders:    orderStore,
		rebalance: rebalanceStore,
		journal:   jrnl,
		logger:    logger,
		owner:     owner,
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pools", s.handlePools)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/rebalance/configs", s.handleRebalanceConfigs)
	mux.HandleFunc("/api/rebalance/history", s.handleRebalanceHistory)
	mux.HandleFunc("/events/stream", s.handleEventStream)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.source.ListPools(r.Context())
	if err != nil {
		http.Error(w, "failed to load pools", http.StatusInternalServerError)
		s.logger.Error("list pools failed", zap.Error(err))
		return
	}
	s.writeJSON(w, pools)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.source.ListPositions(r.Context(), s.owner)
	if err != nil {
		http.Error(w, "failed to load positions", http.StatusInternalServerError)
		s.logger.Error("list positions failed", zap.Error(err))
		return
	}
	s.writeJSON(w, positions)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	all, err := s.orders.List()
	if err != nil {
		http.Error(w, "failed to load orders", http.StatusInternalServerError)
		s.logger.Error("list orders failed", zap.Error(err))
		return
	}
	s.writeJSON(w, all)
}

func (s *Server) handleRebalanceConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.rebalance.Configs()
	if err != nil {
		http.Error(w, "failed to load configs", http.StatusInternalServerError)
		s.logger.Error("list rebalance configs failed", zap.Error(err))
		return
	}
	s.writeJSON(w, configs)
}

func (s *Server) handleRebalanceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.rebalance.History()
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		s.logger.Error("list rebalance history failed", zap.Error(err))
		return
	}
	s.writeJSON(w, history)
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "event journal not available", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat keeps proxies from dropping the connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	poll := time.NewTicker(journalPollInterval)
	defer poll.Stop()

	lastIndex := uint64(0)
	send := func() error {
		records, err := s.journal.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			fmt.Fprintf(w, "event: %s\n", record.Kind)
			fmt.Fprintf(w, "data: %s\n\n", record.Payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := send(); err != nil {
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		s.logger.Error("event stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			if err := send(); err != nil {
				s.logger.Warn("event stream poll failed", zap.Error(err))
			}
		}
	}
}
