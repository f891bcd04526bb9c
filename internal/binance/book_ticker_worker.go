package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/domain"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/infra"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/market"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/metrics"
)

// FeedConfig holds the stream endpoint and keep-alive/reconnect settings.
type FeedConfig struct {
	WSBase       string
	Symbol       string
	PingInterval time.Duration
	PingTimeout  time.Duration
	Backoff      infra.Backoff
}

// BookTickerWorker consumes the @bookTicker stream for one symbol and feeds
// the shared market state. Connection lifecycle (reconnect, keep-alive) is
// delegated to the generic WSWorker.
type BookTickerWorker struct {
	base  *infra.WSWorker
	cfg   FeedConfig
	state *market.State
}

// NewBookTickerWorker factory.
func NewBookTickerWorker(cfg FeedConfig, state *market.State) *BookTickerWorker {
	w := &BookTickerWorker{cfg: cfg, state: state}
	w.base = infra.NewWSWorker(w)
	if cfg.PingInterval > 0 {
		w.base.PingInterval = cfg.PingInterval
	}
	if cfg.PingTimeout > 0 {
		w.base.PingTimeout = cfg.PingTimeout
	}
	if cfg.Backoff.MaxAttempts > 0 {
		w.base.Backoff = cfg.Backoff
	}
	return w
}

func (w *BookTickerWorker) ID() string { return "BINANCE_BOOK_TICKER" }

func (w *BookTickerWorker) GetURL() string {
	return fmt.Sprintf("%s/ws/%s@bookTicker", w.cfg.WSBase, strings.ToLower(w.cfg.Symbol))
}

// Connect starts the connection loop.
func (w *BookTickerWorker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect stops the worker.
func (w *BookTickerWorker) Disconnect() {
	w.base.Stop()
}

func (w *BookTickerWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	// The /ws/{stream} endpoint subscribes implicitly; nothing to send.
	slog.Info("📡 Listening for best bid/ask", "symbol", w.cfg.Symbol)
	return nil
}

// OnMessage parses one tick. A malformed message is dropped with a report;
// the connection stays up.
func (w *BookTickerWorker) OnMessage(ctx context.Context, msg []byte) {
	metrics.WSMessages.Inc()

	quote, err := parseBookTicker(msg)
	if err != nil {
		metrics.WSParseErrors.Inc()
		slog.Warn("⚠️ Dropping malformed book ticker", "err", err)
		return
	}

	w.state.Update(quote)
	slog.Debug("💰 Book ticker",
		"symbol", quote.Symbol, "bid", quote.Bid.String(), "ask", quote.Ask.String())
}

// parseBookTicker accepts a flat bookTicker record or one wrapped in a
// combined-stream "data" envelope.
func parseBookTicker(msg []byte) (domain.Quote, error) {
	var m bookTickerMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return domain.Quote{}, fmt.Errorf("decode: %w", err)
	}

	payload := m.bookTickerPayload
	if m.Data != nil {
		payload = *m.Data
	}

	if payload.BestBid == "" || payload.BestAsk == "" {
		return domain.Quote{}, fmt.Errorf("missing bid/ask fields")
	}

	bid, err := decimal.NewFromString(payload.BestBid)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("bad bid %q: %w", payload.BestBid, err)
	}
	ask, err := decimal.NewFromString(payload.BestAsk)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("bad ask %q: %w", payload.BestAsk, err)
	}

	return domain.Quote{Symbol: payload.Symbol, Bid: bid, Ask: ask}, nil
}
