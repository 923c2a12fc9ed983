package cache

import (
	"context"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/types"
)

// Keys of the server views a trade affects.
const (
	KeyHoldings = "holdings"
	KeyOrders   = "orders"
	KeyAccount  = "account"
)

// RegisterTradingQueries wires the list views of api into c.
func RegisterTradingQueries(c *QueryCache, api interfaces.TradingAPI) {
	c.Register(KeyHoldings, func(ctx context.Context, _ string) (any, error) {
		return api.Holdings(ctx)
	})
	c.Register(KeyOrders, func(ctx context.Context, _ string) (any, error) {
		return api.Orders(ctx)
	})
	c.Register(KeyAccount, func(ctx context.Context, _ string) (any, error) {
		return api.AccountSummary(ctx)
	})
}

func Holdings(ctx context.Context, r interfaces.InvalidationRegistry) ([]types.Holding, error) {
	return Get[[]types.Holding](ctx, r, KeyHoldings)
}

func Orders(ctx context.Context, r interfaces.InvalidationRegistry) ([]types.Order, error) {
	return Get[[]types.Order](ctx, r, KeyOrders)
}

func Account(ctx context.Context, r interfaces.InvalidationRegistry) (types.AccountSummary, error) {
	return Get[types.AccountSummary](ctx, r, KeyAccount)
}
