// Command dlmm-manager runs the position management daemon: the
// auto-rebalance and order monitors, the websocket price feed and the
// dashboard API.
//
// Usage:
//
//	dlmm-manager --config config.yaml
//	dlmm-manager --owner wallet1 --webaddr :8080
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Blessedbiello/dlmm-pro-manager/config"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/logger"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/inflight"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/notifier"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/orderexec"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/poolservice"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/pricefeed"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/services/rebalancer"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/badgerkv"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/entries"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/journal"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/orders"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/rebalance"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/web"
	"github.com/Blessedbiello/dlmm-pro-manager/pkg/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("daemon failed", zap.Error(err))
	}
	zlog.Info("daemon stopped")
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := badgerkv.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer backend.Close()

	jrnl, err := journal.NewStore(cfg.JournalDir)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	rebalanceStore := rebalance.NewStore(backend)
	orderStore := orders.NewStore(backend)
	entryStore := entries.NewStore(backend)

	pools := poolservice.NewSimulator(zlog, entryStore)
	alerts := notifier.NewAlerts(notifier.NewLogNotifier(zlog), zlog)
	guard := inflight.NewSet()

	rebalanceMonitor := rebalancer.NewMonitor(zlog, pools, pools, rebalanceStore, guard, jrnl, alerts, cfg.Owner)
	rebalanceMonitor.SetCheckInterval(cfg.CheckInterval)

	orderMonitor := orderexec.NewMonitor(zlog, orderStore, pools, pools, guard, jrnl, alerts, cfg.Owner)
	orderMonitor.SetCheckInterval(cfg.CheckInterval)

	sched := scheduler.NewTimers()
	stopRebalance := rebalanceMonitor.Start(ctx, sched)
	defer stopRebalance()
	stopOrders := orderMonitor.Start(ctx, sched)
	defer stopOrders()

	server := web.NewServer(cfg.WebAddr, pools, orderStore, rebalanceStore, jrnl, zlog, cfg.Owner)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	if cfg.PriceFeedURL != "" {
		feed := pricefeed.New(cfg.PriceFeedURL, pools, zlog)
		g.Go(func() error {
			return feed.Run(ctx)
		})
	}

	zlog.Info("daemon started",
		zap.String("owner", cfg.Owner),
		zap.String("webAddr", cfg.WebAddr),
		zap.Duration("checkInterval", cfg.CheckInterval))

	return g.Wait()
}
