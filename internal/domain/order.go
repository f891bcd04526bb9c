package domain

import (
	"github.com/shopspring/decimal"
)

// Order sides as Binance expects them on the wire.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderIntent is a decision produced by a policy: one limit order to submit.
// Price is already rounded to the instrument's price precision.
type OrderIntent struct {
	Side     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}
