package infra

import (
	"fmt"
	"strings"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with endpoint-specific warnings.
func PrintBanner(cfg *Config) {
	color := ColorRed
	envDesc := "MAINNET (REAL MONEY)"
	if strings.Contains(cfg.API.Binance.RestURL, "testnet") {
		color = ColorYellow
		envDesc = "TESTNET (PLAY MONEY)"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#           🚀 Futures Trading Strategy Bot               #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   SYMBOL:  %-36s #%s\n", color, cfg.Trading.Symbol, ColorReset)
	fmt.Printf("%s#   ENV:     %-36s #%s\n", color, envDesc, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if color == ColorRed {
		fmt.Printf("%s#   ⚠️  WARNING: ORDERS WILL USE REAL FUNDS  ⚠️           #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
