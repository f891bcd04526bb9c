package trader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/domain"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/market"
)

// mockExchange records calls and returns scripted results.
type mockExchange struct {
	mu           sync.Mutex
	placeCalls   int
	cancelCalls  int
	placeStatus  int
	placeErr     error
	cancelStatus int
	cancelErr    error
}

func (m *mockExchange) PlaceOrder(ctx context.Context, symbol, side string, price, quantity decimal.Decimal) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeCalls++
	if m.placeErr != nil {
		return 0, "", m.placeErr
	}
	return m.placeStatus, `{"orderId":1}`, nil
}

func (m *mockExchange) CancelAllOrders(ctx context.Context, symbol string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	if m.cancelErr != nil {
		return 0, "", m.cancelErr
	}
	return m.cancelStatus, `{"code":200}`, nil
}

func (m *mockExchange) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placeCalls, m.cancelCalls
}

// fixedPolicy always returns the same intent.
type fixedPolicy struct{}

func (fixedPolicy) Decide(q domain.Quote) domain.OrderIntent {
	return domain.OrderIntent{
		Side:     domain.SideBuy,
		Price:    decimal.RequireFromString("95.95"),
		Quantity: decimal.RequireFromString("0.004"),
	}
}

func readyState() *market.State {
	state := market.NewState()
	state.Update(domain.Quote{
		Symbol: "BTCUSDT",
		Bid:    decimal.RequireFromString("100.0"),
		Ask:    decimal.RequireFromString("102.0"),
	})
	return state
}

func testLoop(exchange Exchange, state *market.State) *Loop {
	return NewLoop(Config{
		Symbol:          "BTCUSDT",
		MinWait:         time.Millisecond,
		MaxWait:         2 * time.Millisecond,
		CancelThreshold: 5,
		CancelPause:     0,
		StaleAfter:      time.Minute,
	}, exchange, state, fixedPolicy{})
}

func TestLoop_NoQuoteSkipsCycle(t *testing.T) {
	exchange := &mockExchange{placeStatus: 200, cancelStatus: 200}
	loop := testLoop(exchange, market.NewState())

	for i := 0; i < 10; i++ {
		loop.step(context.Background())
	}

	places, cancels := exchange.counts()
	if places != 0 || cancels != 0 {
		t.Errorf("no-quote cycles made network calls: place=%d cancel=%d", places, cancels)
	}
	if loop.orderCount != 0 {
		t.Errorf("orderCount = %d, want 0", loop.orderCount)
	}
}

func TestLoop_SweepAfterThreshold(t *testing.T) {
	exchange := &mockExchange{placeStatus: 200, cancelStatus: 200}
	loop := testLoop(exchange, readyState())

	for i := 0; i < 4; i++ {
		loop.step(context.Background())
	}
	if _, cancels := exchange.counts(); cancels != 0 {
		t.Fatalf("sweep before threshold: %d", cancels)
	}
	if loop.orderCount != 4 {
		t.Fatalf("orderCount = %d, want 4", loop.orderCount)
	}

	// Fifth placement crosses the threshold.
	loop.step(context.Background())

	places, cancels := exchange.counts()
	if places != 5 {
		t.Errorf("placeCalls = %d, want 5", places)
	}
	if cancels != 1 {
		t.Errorf("cancelCalls = %d, want 1", cancels)
	}
	if loop.orderCount != 0 {
		t.Errorf("orderCount not reset after sweep: %d", loop.orderCount)
	}
}

func TestLoop_CounterMovesOnFailedPlacement(t *testing.T) {
	// Transport failures still count as attempts.
	exchange := &mockExchange{placeErr: errors.New("connection refused"), cancelStatus: 200}
	loop := testLoop(exchange, readyState())

	for i := 0; i < 5; i++ {
		loop.step(context.Background())
	}

	places, cancels := exchange.counts()
	if places != 5 {
		t.Errorf("placeCalls = %d, want 5", places)
	}
	if cancels != 1 {
		t.Errorf("failed placements must still trigger the sweep, cancelCalls = %d", cancels)
	}
	if loop.orderCount != 0 {
		t.Errorf("orderCount = %d, want 0", loop.orderCount)
	}
}

func TestLoop_CounterResetsOnFailedSweep(t *testing.T) {
	exchange := &mockExchange{placeStatus: 200, cancelErr: errors.New("timeout")}
	loop := testLoop(exchange, readyState())

	for i := 0; i < 5; i++ {
		loop.step(context.Background())
	}

	if _, cancels := exchange.counts(); cancels != 1 {
		t.Fatalf("cancelCalls = %d, want 1", cancels)
	}
	// The sweep was attempted; the counter resets regardless of its outcome.
	if loop.orderCount != 0 {
		t.Errorf("orderCount = %d, want 0", loop.orderCount)
	}

	// And the loop keeps going.
	loop.step(context.Background())
	if places, _ := exchange.counts(); places != 6 {
		t.Errorf("loop did not continue after failed sweep: placeCalls = %d", places)
	}
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	exchange := &mockExchange{placeStatus: 200, cancelStatus: 200}
	loop := testLoop(exchange, readyState())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Run returned at its next suspension point.
	case <-time.After(2 * time.Second):
		t.Error("Run did not stop after cancellation")
	}
}

func TestLoop_NextWaitWithinBounds(t *testing.T) {
	loop := NewLoop(Config{
		MinWait: 3 * time.Second,
		MaxWait: 7 * time.Second,
	}, &mockExchange{}, market.NewState(), fixedPolicy{})

	for i := 0; i < 1000; i++ {
		w := loop.nextWait()
		if w < 3*time.Second || w > 7*time.Second {
			t.Fatalf("nextWait() = %s out of [3s, 7s]", w)
		}
	}
}
