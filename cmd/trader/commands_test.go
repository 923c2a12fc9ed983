package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daytrader-client/internal/cache"
	"daytrader-client/internal/daytrader"
	"daytrader-client/internal/daytrader/daytradertest"
	"daytrader-client/internal/store"
	"daytrader-client/internal/types"
)

func newTestApp(t *testing.T) (*app, *daytradertest.Server) {
	t.Helper()
	srv := daytradertest.New(decimal.RequireFromString("9.99"), decimal.NewFromInt(100000))
	t.Cleanup(srv.Close)
	srv.AddQuote(types.Quote{Symbol: "AAPL", CompanyName: "Apple Inc.", Price: decimal.RequireFromString("150.25")})

	cfg := store.Default()
	cfg.API.BaseURL = srv.BaseURL()
	cfg.Trade.DebounceMs = 1

	a := &app{
		cfg:   cfg,
		api:   daytrader.New(daytrader.Params{BaseURL: srv.BaseURL()}),
		cache: cache.New(0),
	}
	cache.RegisterTradingQueries(a.cache, a.api)
	return a, srv
}

func TestConfirmPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Place this order?"), "input %q", tt.input)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestBuyDeclinedPlacesNothing(t *testing.T) {
	a, srv := newTestApp(t)
	nav := &termNavigator{}
	ctrl := a.newController(nav)
	defer ctrl.Close()
	ctrl.SetSymbol("AAPL")
	ctrl.SetQuantity(10)

	var out bytes.Buffer
	status := runTrade(context.Background(), a, ctrl, nav, false, strings.NewReader("n\n"), &out)

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "1512.49")
	assert.Contains(t, out.String(), "Order cancelled.")
	assert.Zero(t, srv.Calls(daytradertest.RouteBuy))
}

func TestSellShowsOrdersAfterwards(t *testing.T) {
	a, srv := newTestApp(t)
	price := decimal.RequireFromString("150.25")
	srv.AddHolding(types.Holding{
		HoldingID:     1,
		Symbol:        "AAPL",
		Quantity:      decimal.NewFromInt(100),
		PurchasePrice: decimal.RequireFromString("120"),
		CurrentPrice:  &price,
	})

	nav := &termNavigator{}
	ctrl := a.newController(nav)
	defer ctrl.Close()
	ctrl.SetAction(types.OrderTypeSell)
	ctrl.SetHolding(1)

	var out bytes.Buffer
	status := runTrade(context.Background(), a, ctrl, nav, true, strings.NewReader(""), &out)

	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "15015.01")
	assert.True(t, strings.HasPrefix(nav.route, "/orders?sold="))
	assert.Contains(t, out.String(), "Orders")
	assert.Equal(t, 1, srv.Calls(daytradertest.RouteSell))
	assert.Equal(t, 1, srv.Calls(daytradertest.RouteHolding))
}

func TestInvalidQuantityFailsBeforeNetwork(t *testing.T) {
	a, srv := newTestApp(t)
	nav := &termNavigator{}
	ctrl := a.newController(nav)
	defer ctrl.Close()
	ctrl.SetQuantity(0)

	var out bytes.Buffer
	status := runTrade(context.Background(), a, ctrl, nav, true, strings.NewReader(""), &out)

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Zero(t, srv.Calls(daytradertest.RouteQuote))
	assert.Zero(t, srv.Calls(daytradertest.RouteBuy))
}

func TestOrdersMarkdownHighlightsSoldOrder(t *testing.T) {
	orders := []types.Order{
		{OrderID: 1, OrderType: types.OrderTypeBuy, Symbol: "AAPL", Quantity: decimal.NewFromInt(1)},
		{OrderID: 2, OrderType: types.OrderTypeSell, Symbol: "AAPL", Quantity: decimal.NewFromInt(1)},
	}
	md := ordersMarkdown(orders, 2)

	assert.Contains(t, md, "| **2** |")
	assert.Less(t, strings.Index(md, "**2**"), strings.Index(md, "| 1 |"))
}

func TestHoldingsMarkdownShowsUnknownPrices(t *testing.T) {
	md := holdingsMarkdown([]types.Holding{{HoldingID: 3, Symbol: "IBM", Quantity: decimal.NewFromInt(5)}})
	assert.Contains(t, md, "N/A")
}
