package types

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the backend has no quote or holding for the
// requested key.
var ErrNotFound = errors.New("not found")

type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "open"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusClosed     OrderStatus = "closed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Quote is a market snapshot for one symbol. It is never mutated once
// decoded; a newer snapshot replaces it.
type Quote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Price       decimal.Decimal `json:"price"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Volume      decimal.Decimal `json:"volume"`
	Change      decimal.Decimal `json:"change"`
}

// Holding is one owned position. The optional fields are computed by the
// server and are nil when it did not send them.
type Holding struct {
	HoldingID     int64            `json:"holdingID"`
	Symbol        string           `json:"symbol"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PurchasePrice decimal.Decimal  `json:"purchasePrice"`
	PurchaseDate  time.Time        `json:"purchaseDate"`
	CurrentPrice  *decimal.Decimal `json:"currentPrice,omitempty"`
	MarketValue   *decimal.Decimal `json:"marketValue,omitempty"`
	Gain          *decimal.Decimal `json:"gain,omitempty"`
	GainPercent   *decimal.Decimal `json:"gainPercent,omitempty"`
}

type Order struct {
	OrderID        int64           `json:"orderID"`
	OrderType      OrderType       `json:"orderType"`
	OrderStatus    OrderStatus     `json:"orderStatus"`
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	OrderFee       decimal.Decimal `json:"orderFee"`
	OpenDate       time.Time       `json:"openDate"`
	CompletionDate *time.Time      `json:"completionDate,omitempty"`
}

// Total is the settled amount of the order as reported by the server:
// cost including fee for a buy, proceeds net of fee for a sell.
func (o Order) Total() decimal.Decimal {
	gross := o.Quantity.Mul(o.Price)
	if o.OrderType == OrderTypeSell {
		return gross.Sub(o.OrderFee)
	}
	return gross.Add(o.OrderFee)
}

type AccountSummary struct {
	AccountID        int64            `json:"accountId"`
	CashBalance      decimal.Decimal  `json:"cashBalance"`
	OpenBalance      *decimal.Decimal `json:"openBalance,omitempty"`
	HoldingsValue    decimal.Decimal  `json:"holdingsValue"`
	TotalValue       decimal.Decimal  `json:"totalValue"`
	TotalGain        decimal.Decimal  `json:"totalGain"`
	TotalGainPercent float64          `json:"totalGainPercent"`
	HoldingsCount    int              `json:"holdingsCount"`
}

// TradeIntent is the form state of one trade before it is submitted. It is
// never persisted.
type TradeIntent struct {
	Action    OrderType `json:"action"`
	Symbol    string    `json:"symbol,omitempty"`
	HoldingID int64     `json:"holdingId,omitempty"`
	Quantity  int       `json:"quantity"`
}

type BuyRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
}

// APIError is the error envelope returned by the backend.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// Text returns the most specific human-readable message in the envelope.
func (e APIError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// FormatMoney renders an amount the way the trade views show it, e.g. $1512.49.
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
