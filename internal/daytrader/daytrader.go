package daytrader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daytrader-client/internal/api"
	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/types"
)

type Params struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logging bool
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the DayTrader REST backend.
type Client struct {
	http *api.Client
}

var _ interfaces.TradingAPI = (*Client)(nil)

func New(p Params) *Client {
	opts := []api.ClientOption{
		api.WithBaseURL(p.BaseURL),
		api.WithBearerToken(p.Token),
		api.WithLogging(p.Logging),
	}
	if p.Timeout > 0 {
		opts = append(opts, api.WithTimeout(p.Timeout))
	}
	if p.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(p.HTTPClient))
	}
	return &Client{http: api.NewClient(opts...)}
}

func (c *Client) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	var q types.Quote
	if strings.TrimSpace(symbol) == "" {
		return q, fmt.Errorf("quote: empty symbol")
	}
	err := c.http.GetJSON(ctx, "/market/quotes/"+url.PathEscape(symbol), &q)
	if err != nil {
		return types.Quote{}, classify(fmt.Sprintf("quote %s", symbol), err)
	}
	return q, nil
}

func (c *Client) Holding(ctx context.Context, holdingID int64) (types.Holding, error) {
	var h types.Holding
	err := c.http.GetJSON(ctx, fmt.Sprintf("/trade/holdings/%d", holdingID), &h)
	if err != nil {
		return types.Holding{}, classify(fmt.Sprintf("holding %d", holdingID), err)
	}
	return h, nil
}

func (c *Client) Buy(ctx context.Context, req types.BuyRequest) (types.Order, error) {
	var o types.Order
	if err := c.http.PostJSON(ctx, "/trade/buy", req, &o); err != nil {
		return types.Order{}, fmt.Errorf("buy %s: %w", req.Symbol, err)
	}
	return o, nil
}

func (c *Client) Sell(ctx context.Context, holdingID int64) (types.Order, error) {
	var o types.Order
	if err := c.http.PostJSON(ctx, fmt.Sprintf("/trade/sell/%d", holdingID), nil, &o); err != nil {
		return types.Order{}, fmt.Errorf("sell holding %d: %w", holdingID, err)
	}
	return o, nil
}

func (c *Client) Holdings(ctx context.Context) ([]types.Holding, error) {
	var hs []types.Holding
	if err := c.http.GetJSON(ctx, "/trade/holdings", &hs); err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	return hs, nil
}

func (c *Client) Orders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.http.GetJSON(ctx, "/trade/orders", &orders); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	return orders, nil
}

func (c *Client) AccountSummary(ctx context.Context) (types.AccountSummary, error) {
	var s types.AccountSummary
	if err := c.http.GetJSON(ctx, "/portfolio/summary", &s); err != nil {
		return types.AccountSummary{}, fmt.Errorf("account summary: %w", err)
	}
	return s, nil
}

// notFoundError keeps the transport error reachable while matching
// types.ErrNotFound.
type notFoundError struct {
	what string
	err  error
}

func (e *notFoundError) Error() string { return e.what + ": not found" }

func (e *notFoundError) Is(target error) bool { return target == types.ErrNotFound }

func (e *notFoundError) Unwrap() error { return e.err }

func classify(what string, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return &notFoundError{what: what, err: err}
	}
	return fmt.Errorf("%s: %w", what, err)
}
