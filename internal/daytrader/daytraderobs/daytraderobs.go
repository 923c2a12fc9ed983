package daytraderobs

import (
	"context"
	"errors"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/trace"
	"daytrader-client/internal/types"
)

// observableAPI wraps a TradingAPI with logging and tracing
type observableAPI struct {
	api interfaces.TradingAPI
}

// Compile-time interface check
var _ interfaces.TradingAPI = (*observableAPI)(nil)

// Wrap wraps a trading API with observability middleware
func Wrap(api interfaces.TradingAPI) interfaces.TradingAPI {
	return &observableAPI{api: api}
}

func (o *observableAPI) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Quote")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching quote", "symbol", symbol)

	q, err := o.api.Quote(ctx, symbol)
	if err != nil {
		// A missing symbol is an expected answer while the user types.
		if errors.Is(err, types.ErrNotFound) {
			logger.DebugSkip(ctx, 1, "Quote not found", "symbol", symbol)
		} else {
			logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		}
		return types.Quote{}, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "price", q.Price.String())
	return q, nil
}

func (o *observableAPI) Holding(ctx context.Context, holdingID int64) (types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Holding")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching holding", "holding_id", holdingID)

	h, err := o.api.Holding(ctx, holdingID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			logger.DebugSkip(ctx, 1, "Holding not found", "holding_id", holdingID)
		} else {
			logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holding", err, "holding_id", holdingID)
		}
		return types.Holding{}, err
	}

	logger.DebugSkip(ctx, 1, "Holding fetched", "holding_id", holdingID, "symbol", h.Symbol)
	return h, nil
}

func (o *observableAPI) Buy(ctx context.Context, req types.BuyRequest) (types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Buy")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing buy order", "symbol", req.Symbol, "quantity", req.Quantity)

	order, err := o.api.Buy(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place buy order", err,
			"symbol", req.Symbol,
			"quantity", req.Quantity,
		)
		return types.Order{}, err
	}

	logger.InfoSkip(ctx, 1, "Buy order placed",
		"symbol", order.Symbol,
		"order_id", order.OrderID,
		"status", string(order.OrderStatus),
	)
	return order, nil
}

func (o *observableAPI) Sell(ctx context.Context, holdingID int64) (types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Sell")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing sell order", "holding_id", holdingID)

	order, err := o.api.Sell(ctx, holdingID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place sell order", err, "holding_id", holdingID)
		return types.Order{}, err
	}

	logger.InfoSkip(ctx, 1, "Sell order placed",
		"holding_id", holdingID,
		"order_id", order.OrderID,
		"status", string(order.OrderStatus),
	)
	return order, nil
}

func (o *observableAPI) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Holdings")
	defer span.End()

	hs, err := o.api.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Holdings fetched", "count", len(hs))
	return hs, nil
}

func (o *observableAPI) Orders(ctx context.Context) ([]types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.Orders")
	defer span.End()

	orders, err := o.api.Orders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch orders", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Orders fetched", "count", len(orders))
	return orders, nil
}

func (o *observableAPI) AccountSummary(ctx context.Context) (types.AccountSummary, error) {
	ctx, span := trace.StartSpan(ctx, "daytrader.AccountSummary")
	defer span.End()

	s, err := o.api.AccountSummary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account summary", err)
		return types.AccountSummary{}, err
	}
	logger.DebugSkip(ctx, 1, "Account summary fetched", "cash_balance", s.CashBalance.String())
	return s, nil
}
