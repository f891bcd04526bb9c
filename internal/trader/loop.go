package trader

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/market"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/metrics"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/strategy"
)

// Exchange is what the loop needs from the REST client.
type Exchange interface {
	PlaceOrder(ctx context.Context, symbol, side string, price, quantity decimal.Decimal) (int, string, error)
	CancelAllOrders(ctx context.Context, symbol string) (int, string, error)
}

// Config drives the loop cadence and the cancel sweep policy.
type Config struct {
	Symbol          string
	MinWait         time.Duration
	MaxWait         time.Duration
	CancelThreshold int
	CancelPause     time.Duration
	StaleAfter      time.Duration
}

// Loop is the decision activity: every cycle it waits a random interval,
// reads the shared quote, places one order chosen by the policy, and sweeps
// all open orders after every CancelThreshold placements. It is independent
// of the feed: feed trouble only means trading on a stale or absent quote.
type Loop struct {
	cfg      Config
	exchange Exchange
	state    *market.State
	policy   strategy.Policy

	orderCount int
}

// NewLoop wires the loop. The policy is pluggable; the loop itself only
// sequences placement and cancellation.
func NewLoop(cfg Config, exchange Exchange, state *market.State, policy strategy.Policy) *Loop {
	return &Loop{cfg: cfg, exchange: exchange, state: state, policy: policy}
}

// Run blocks until ctx is canceled. Every cycle failure is reported and
// swallowed; the next scheduled cycle always runs.
func (l *Loop) Run(ctx context.Context) {
	slog.Info("🤖 Trading loop started",
		"symbol", l.cfg.Symbol, "cancel_threshold", l.cfg.CancelThreshold)

	for {
		if !sleepCtx(ctx, l.nextWait()) {
			slog.Info("🛑 Trading loop stopped")
			return
		}
		l.step(ctx)
	}
}

// nextWait draws a uniform duration from [MinWait, MaxWait].
func (l *Loop) nextWait() time.Duration {
	span := l.cfg.MaxWait - l.cfg.MinWait
	if span <= 0 {
		return l.cfg.MinWait
	}
	return l.cfg.MinWait + time.Duration(rand.Int64N(int64(span)))
}

// step runs one decision cycle.
func (l *Loop) step(ctx context.Context) {
	quote, ok := l.state.Snapshot()
	if !ok {
		// The feed has never delivered; different condition from a stale
		// quote, which still trades below.
		slog.Info("📊 Waiting for first quote...")
		return
	}

	if age := l.state.Age(); l.cfg.StaleAfter > 0 && age > l.cfg.StaleAfter {
		slog.Warn("⏳ Quote is stale, trading on last known prices", "age", age)
	}

	intent := l.policy.Decide(quote)
	slog.Info("📈 Placing order",
		"side", intent.Side, "qty", intent.Quantity.String(), "price", intent.Price.String())

	status, body, err := l.exchange.PlaceOrder(ctx, l.cfg.Symbol, intent.Side, intent.Price, intent.Quantity)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(intent.Side, "error").Inc()
		slog.Error("❌ Order submission failed", "err", err)
	} else {
		metrics.OrdersPlaced.WithLabelValues(intent.Side, strconv.Itoa(status)).Inc()
		slog.Info("✅ Order result", "status", status, "body", body)
	}

	// Placement was attempted, so the counter moves regardless of outcome.
	l.orderCount++
	if l.orderCount >= l.cfg.CancelThreshold {
		l.sweep(ctx)
		l.orderCount = 0
	}
}

// sweep cancels all open orders for the symbol. The pause lets the last
// order register with the exchange before the sweep; the caller resets the
// counter whether or not the sweep succeeded (at most one sweep per window).
func (l *Loop) sweep(ctx context.Context) {
	if !sleepCtx(ctx, l.cfg.CancelPause) {
		return
	}

	slog.Info("🧹 Cancelling all open orders...", "symbol", l.cfg.Symbol)
	status, body, err := l.exchange.CancelAllOrders(ctx, l.cfg.Symbol)
	if err != nil {
		metrics.CancelSweeps.WithLabelValues("error").Inc()
		slog.Error("❌ Cancel sweep failed", "err", err)
		return
	}

	metrics.CancelSweeps.WithLabelValues(strconv.Itoa(status)).Inc()
	slog.Info("🧹 Cancel sweep result", "status", status, "body", body)
}

// sleepCtx waits for d or until ctx is done. Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
