package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/app"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/binance"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/market"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/strategy"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/trader"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 2. Ops server: /metrics plus pprof, localhost only
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		slog.Info("🕵️ Ops server started", "addr", cfg.Ops.Addr)
		if err := http.ListenAndServe(cfg.Ops.Addr, nil); err != nil {
			slog.Error("Ops server failed", slog.Any("error", err))
		}
	}()

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Exchange client (owns the REST session; released exactly once)
	client := binance.NewClient(
		cfg.API.Binance.APIKey,
		cfg.API.Binance.SecretKey,
		cfg.API.Binance.RestURL,
	)
	defer client.Close()

	// 5. Shared price state + feed worker (Gateway)
	state := market.NewState()
	feed := binance.NewBookTickerWorker(binance.FeedConfig{
		WSBase:       cfg.API.Binance.WSURL,
		Symbol:       cfg.Trading.Symbol,
		PingInterval: time.Duration(cfg.Feed.PingIntervalSec) * time.Second,
		PingTimeout:  time.Duration(cfg.Feed.PingTimeoutSec) * time.Second,
		Backoff:      cfg.FeedBackoff(),
	}, state)

	if err := feed.Connect(ctx); err != nil {
		slog.Error("Failed to start book ticker feed", slog.Any("error", err))
		os.Exit(1)
	}
	defer feed.Disconnect()

	// 6. Decision policy + trading loop
	quantities, err := cfg.Trading.ParsedQuantities()
	if err != nil {
		slog.Error("❌ Invalid quantity pool", slog.Any("error", err))
		os.Exit(1)
	}
	policy := strategy.NewRandom(
		quantities,
		cfg.Trading.BuyRatio,
		cfg.Trading.SellRatio,
		cfg.Trading.PricePrecision,
	)
	loop := trader.NewLoop(trader.Config{
		Symbol:          cfg.Trading.Symbol,
		MinWait:         time.Duration(cfg.Trading.MinWaitSec) * time.Second,
		MaxWait:         time.Duration(cfg.Trading.MaxWaitSec) * time.Second,
		CancelThreshold: cfg.Trading.CancelThreshold,
		CancelPause:     time.Duration(cfg.Trading.CancelPauseSec) * time.Second,
		StaleAfter:      time.Duration(cfg.Trading.StaleAfterSec) * time.Second,
	}, client, state, policy)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	slog.InfoContext(ctx, "✨ Bot fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal, then for the loop to reach its next
	// suspension point. The deferred Disconnect/Close run after that, so
	// the session is released exactly once, after both activities stopped.
	<-ctx.Done()
	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	wg.Wait()
}
