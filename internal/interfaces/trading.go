package interfaces

import (
	"context"

	"daytrader-client/internal/types"
)

type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

type HoldingSource interface {
	Holding(ctx context.Context, holdingID int64) (types.Holding, error)
}

type OrderPlacer interface {
	Buy(ctx context.Context, req types.BuyRequest) (types.Order, error)
	Sell(ctx context.Context, holdingID int64) (types.Order, error)
}

// TradingAPI is the backend surface the trade workflow and its cached views
// consume. Lookups return an error matching types.ErrNotFound on 404.
type TradingAPI interface {
	QuoteSource
	HoldingSource
	OrderPlacer
	Holdings(ctx context.Context) ([]types.Holding, error)
	Orders(ctx context.Context) ([]types.Order, error)
	AccountSummary(ctx context.Context) (types.AccountSummary, error)
}
