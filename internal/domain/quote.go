package domain

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Quote is a best bid/ask pair taken from a single bookTicker message.
// Both sides always originate from the same message; a Quote is replaced
// wholesale, never patched field by field.
type Quote struct {
	Symbol string
	Bid    decimal.Decimal
	Ask    decimal.Decimal
}

// Mid returns the arithmetic mean of best bid and best ask.
func (q Quote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(two)
}
