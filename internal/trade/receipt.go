package trade

import (
	"fmt"

	"daytrader-client/internal/types"
)

// Receipt is the success summary of a placed order, built from the
// server's values only.
type Receipt struct {
	OrderID  int64
	Action   types.OrderType
	Symbol   string
	Quantity string
	Price    string
	Fee      string
	Total    string
	Status   types.OrderStatus
}

func NewReceipt(o types.Order) Receipt {
	return Receipt{
		OrderID:  o.OrderID,
		Action:   o.OrderType,
		Symbol:   o.Symbol,
		Quantity: o.Quantity.String(),
		Price:    types.FormatMoney(o.Price),
		Fee:      types.FormatMoney(o.OrderFee),
		Total:    types.FormatMoney(o.Total()),
		Status:   o.OrderStatus,
	}
}

func (r Receipt) String() string {
	return fmt.Sprintf("Order #%d %s %s %s @ %s, fee %s, total %s (%s)",
		r.OrderID, r.Action, r.Quantity, r.Symbol, r.Price, r.Fee, r.Total, r.Status)
}
