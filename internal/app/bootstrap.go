package app

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/infra"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/metrics"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads credentials and configuration, then wires logging and
// metrics. Any error here is fatal; nothing is recoverable before config.
func (b *Bootstrap) Initialize() error {
	// .env is optional; deployments pass real environment variables.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig(configPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	metrics.Init()

	infra.PrintBanner(cfg)
	slog.Info("🚀 Bootstrapped",
		"symbol", cfg.Trading.Symbol,
		"ws", cfg.API.Binance.WSURL,
		"rest", cfg.API.Binance.RestURL)

	return nil
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}
