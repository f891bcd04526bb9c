package strategy

import (
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/domain"
)

// Policy decides what to submit for the current quote. Implementations must
// be safe for use from a single goroutine; the trading loop calls Decide at
// most once per cycle.
type Policy interface {
	Decide(quote domain.Quote) domain.OrderIntent
}
