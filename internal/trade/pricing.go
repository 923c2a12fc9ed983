package trade

import (
	"github.com/shopspring/decimal"

	"daytrader-client/internal/types"
)

// Estimate is the client-side preview of an order. The server's Order is
// authoritative once the order is placed.
type Estimate struct {
	Action   types.OrderType
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Fee      decimal.Decimal
	Total    decimal.Decimal
}

// EstimateBuy is quantity × price + fee. It is unavailable for a
// non-positive quantity.
func EstimateBuy(quantity int, q types.Quote, fee decimal.Decimal) (Estimate, bool) {
	if quantity <= 0 {
		return Estimate{}, false
	}
	qty := decimal.NewFromInt(int64(quantity))
	return Estimate{
		Action:   types.OrderTypeBuy,
		Quantity: qty,
		Price:    q.Price,
		Fee:      fee,
		Total:    qty.Mul(q.Price).Add(fee),
	}, true
}

// EstimateSell is holding quantity × current price − fee. It is unavailable
// when the server did not report a current price.
func EstimateSell(h types.Holding, fee decimal.Decimal) (Estimate, bool) {
	if h.CurrentPrice == nil {
		return Estimate{}, false
	}
	price := *h.CurrentPrice
	return Estimate{
		Action:   types.OrderTypeSell,
		Quantity: h.Quantity,
		Price:    price,
		Fee:      fee,
		Total:    h.Quantity.Mul(price).Sub(fee),
	}, true
}
