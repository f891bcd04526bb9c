package binance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/infra"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/market"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testFeedConfig() FeedConfig {
	return FeedConfig{
		WSBase:       "wss://stream.binancefuture.com",
		Symbol:       "BTCUSDT",
		PingInterval: 20 * time.Second,
		PingTimeout:  20 * time.Second,
		Backoff:      infra.DefaultBackoff(),
	}
}

func TestBookTickerWorker_URL(t *testing.T) {
	worker := NewBookTickerWorker(testFeedConfig(), market.NewState())

	want := "wss://stream.binancefuture.com/ws/btcusdt@bookTicker"
	if got := worker.GetURL(); got != want {
		t.Errorf("GetURL() = %q, want %q", got, want)
	}
}

func TestBookTickerWorker_FlatMessage(t *testing.T) {
	state := market.NewState()
	worker := NewBookTickerWorker(testFeedConfig(), state)

	msg := []byte(`{"u":400900217,"s":"BTCUSDT","b":"95000.10","B":"31.21","a":"95000.20","A":"40.66"}`)
	worker.OnMessage(context.Background(), msg)

	quote, ok := state.Snapshot()
	if !ok {
		t.Fatal("quote was not stored")
	}
	if quote.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q", quote.Symbol)
	}
	if quote.Bid.String() != "95000.1" || quote.Ask.String() != "95000.2" {
		t.Errorf("bid/ask = %s/%s", quote.Bid, quote.Ask)
	}
}

func TestBookTickerWorker_EnvelopeMessage(t *testing.T) {
	state := market.NewState()
	worker := NewBookTickerWorker(testFeedConfig(), state)

	msg := []byte(`{"stream":"btcusdt@bookTicker","data":{"s":"BTCUSDT","b":"100.0","a":"102.0"}}`)
	worker.OnMessage(context.Background(), msg)

	quote, ok := state.Snapshot()
	if !ok {
		t.Fatal("quote was not stored")
	}
	if !quote.Mid().Equal(mustDecimal(t, "101")) {
		t.Errorf("mid = %s, want 101", quote.Mid())
	}
}

func TestBookTickerWorker_MalformedMessageIsDropped(t *testing.T) {
	state := market.NewState()
	worker := NewBookTickerWorker(testFeedConfig(), state)

	// Seed a good quote, then throw garbage at the worker.
	worker.OnMessage(context.Background(), []byte(`{"s":"BTCUSDT","b":"100.0","a":"102.0"}`))

	for _, bad := range [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"s":"BTCUSDT","b":"100.0"}`),               // ask missing
		[]byte(`{"s":"BTCUSDT","b":"oops","a":"102.0"}`),    // unparseable bid
		[]byte(`{"data":{"s":"BTCUSDT","a":"102.0"}}`),      // bid missing in envelope
	} {
		worker.OnMessage(context.Background(), bad)
	}

	quote, ok := state.Snapshot()
	if !ok {
		t.Fatal("previous quote lost")
	}
	// The stored pair must be untouched by the malformed messages.
	if quote.Bid.String() != "100" || quote.Ask.String() != "102" {
		t.Errorf("quote overwritten by malformed data: %s/%s", quote.Bid, quote.Ask)
	}
}
