package daytrader

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daytrader-client/internal/api"
	"daytrader-client/internal/daytrader/daytradertest"
	"daytrader-client/internal/types"
)

func newBackend(t *testing.T) (*daytradertest.Server, *Client) {
	t.Helper()
	srv := daytradertest.New(decimal.RequireFromString("9.99"), decimal.NewFromInt(100000))
	t.Cleanup(srv.Close)
	srv.AddQuote(types.Quote{
		Symbol:      "AAPL",
		CompanyName: "Apple Inc.",
		Price:       decimal.RequireFromString("150.25"),
	})
	return srv, New(Params{BaseURL: srv.BaseURL(), Token: "test-token"})
}

func TestQuote(t *testing.T) {
	_, c := newBackend(t)

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", q.CompanyName)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("150.25")))
}

func TestQuoteNotFound(t *testing.T) {
	_, c := newBackend(t)

	_, err := c.Quote(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestQuoteServerErrorIsNotNotFound(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(daytradertest.RouteQuote, http.StatusInternalServerError, "")

	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrNotFound))
}

func TestBuyThenSell(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()

	bought, err := c.Buy(ctx, types.BuyRequest{Symbol: "AAPL", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, types.OrderTypeBuy, bought.OrderType)
	assert.Equal(t, types.OrderStatusCompleted, bought.OrderStatus)
	assert.Equal(t, "1512.49", bought.Total().StringFixed(2))

	holdings, err := c.Holdings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)

	h, err := c.Holding(ctx, holdings[0].HoldingID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Symbol)

	sold, err := c.Sell(ctx, h.HoldingID)
	require.NoError(t, err)
	assert.Equal(t, types.OrderTypeSell, sold.OrderType)

	_, err = c.Holding(ctx, h.HoldingID)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	orders, err := c.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 1, srv.Calls(daytradertest.RouteSell))

	summary, err := c.AccountSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.HoldingsCount)
}

func TestBuyFailureKeepsServerMessage(t *testing.T) {
	srv, c := newBackend(t)
	srv.Fail(daytradertest.RouteBuy, http.StatusBadRequest, "Insufficient funds for purchase")

	_, err := c.Buy(context.Background(), types.BuyRequest{Symbol: "AAPL", Quantity: 1})

	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Insufficient funds for purchase", se.Message())
}
