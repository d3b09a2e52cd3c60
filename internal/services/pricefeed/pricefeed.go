// Package pricefeed streams live pool price ticks over a websocket and
// pushes them into the price sink.
package pricefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Blessedbiello/dlmm-pro-manager/pkg/retrier"
)

const reconnectPause = 5 * time.Second

// Sink receives price updates, normally the pool simulator or a cache
// in front of the real pool service.
type Sink interface {
	SetPrice(poolAddress string, price decimal.Decimal) error
}

type tick struct {
	Pool  string          `json:"pool"`
	Price decimal.Decimal `json:"price"`
}

// Feed is the reconnecting websocket client.
type Feed struct {
	url    string
	sink   Sink
	retr   *retrier.Retrier
	logger *zap.Logger
}

// New creates a feed reading ticks from url.
func New(url string, sink Sink, logger *zap.Logger) *Feed {
	return &Feed{
		url:  url,
		sink: sink,
		retr: retrier.New(
			retrier.WithMaxRetries(10),
			retrier.WithInitialInterval(time.Second),
			retrier.WithMaxInterval(time.Minute),
			retrier.WithNotify(func(attempt int, err error) {
				logger.Warn("price feed dial failed", zap.Int("attempt", attempt), zap.Error(err))
			}),
		),
		logger: logger,
	}
}

// Run keeps a connection open until ctx is cancelled, reconnecting on
// read errors. Returns only when ctx is done or the dial budget is
// exhausted.
func (f *Feed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := f.dial(ctx)
		if err != nil {
			return errors.Wrap(err, "price feed connect")
		}

		f.readLoop(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectPause):
		}
	}
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	var conn *websocket.Conn
	err := f.retr.Do(ctx, func(ctx context.Context) error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logger.Info("price feed connected", zap.String("url", f.url))
	return conn, nil
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) {
	// unblock ReadMessage when ctx is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("price feed read failed, reconnecting", zap.Error(err))
			}
			return
		}

		var t tick
		if err := json.Unmarshal(payload, &t); err != nil {
			f.logger.Warn("malformed price tick", zap.Error(err))
			continue
		}
		if t.Pool == "" || !t.Price.IsPositive() {
			continue
		}

		if err := f.sink.SetPrice(t.Pool, t.Price); err != nil {
			f.logger.Warn("price update rejected",
				zap.String("pool", t.Pool),
				zap.String("price", t.Price.String()),
				zap.Error(err))
		}
	}
}
