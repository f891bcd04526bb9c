package strategy

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/domain"
)

// Random places deliberately off-market limit orders: a uniformly random side
// and quantity, priced away from mid by the configured ratios so the order is
// unlikely to fill. This is a connectivity exercise, not a strategy that
// expects to profit.
type Random struct {
	quantities []decimal.Decimal
	buyRatio   decimal.Decimal
	sellRatio  decimal.Decimal
	precision  int32
}

// NewRandom creates the policy. buyRatio < 1 < sellRatio is enforced by
// config validation before this is reached.
func NewRandom(quantities []decimal.Decimal, buyRatio, sellRatio float64, precision int) *Random {
	return &Random{
		quantities: quantities,
		buyRatio:   decimal.NewFromFloat(buyRatio),
		sellRatio:  decimal.NewFromFloat(sellRatio),
		precision:  int32(precision),
	}
}

// Decide picks a side and quantity uniformly at random and prices the limit
// off the mid, rounded to the instrument's price precision.
func (r *Random) Decide(quote domain.Quote) domain.OrderIntent {
	mid := quote.Mid()

	side := domain.SideBuy
	ratio := r.buyRatio
	if rand.IntN(2) == 1 {
		side = domain.SideSell
		ratio = r.sellRatio
	}

	return domain.OrderIntent{
		Side:     side,
		Price:    mid.Mul(ratio).Round(r.precision),
		Quantity: r.quantities[rand.IntN(len(r.quantities))],
	}
}
