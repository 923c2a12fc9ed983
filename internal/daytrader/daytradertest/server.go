// Package daytradertest provides an in-memory DayTrader backend for tests.
package daytradertest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"daytrader-client/internal/types"
)

// Route names used by Calls and Fail.
const (
	RouteQuote    = "quote"
	RouteHolding  = "holding"
	RouteBuy      = "buy"
	RouteSell     = "sell"
	RouteHoldings = "holdings"
	RouteOrders   = "orders"
	RouteSummary  = "summary"
)

type failure struct {
	status int
	body   gin.H
}

// Server is a fake backend mounted under /api.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	fee      decimal.Decimal
	cash     decimal.Decimal
	quotes   map[string]types.Quote
	holdings map[int64]types.Holding
	orders   []types.Order
	nextID   int64
	calls    map[string]int
	failures map[string]failure
}

// New starts a server charging fee per order with the given cash balance.
func New(fee, cash decimal.Decimal) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		fee:      fee,
		cash:     cash,
		quotes:   make(map[string]types.Quote),
		holdings: make(map[int64]types.Holding),
		nextID:   1,
		calls:    make(map[string]int),
		failures: make(map[string]failure),
	}

	r := gin.New()
	g := r.Group("/api")
	g.GET("/market/quotes/:symbol", s.handle(RouteQuote, s.getQuote))
	g.GET("/trade/holdings/:id", s.handle(RouteHolding, s.getHolding))
	g.POST("/trade/buy", s.handle(RouteBuy, s.buy))
	g.POST("/trade/sell/:id", s.handle(RouteSell, s.sell))
	g.GET("/trade/holdings", s.handle(RouteHoldings, s.listHoldings))
	g.GET("/trade/orders", s.handle(RouteOrders, s.listOrders))
	g.GET("/portfolio/summary", s.handle(RouteSummary, s.summary))

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the API root to configure a client with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) AddQuote(q types.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[strings.ToUpper(q.Symbol)] = q
}

func (s *Server) AddHolding(h types.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.HoldingID == 0 {
		h.HoldingID = s.nextID
		s.nextID++
	}
	s.holdings[h.HoldingID] = h
}

// Calls reports how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Fail makes every later request to route answer with status and an error
// envelope carrying message. An empty message sends an empty body.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var body gin.H
	if message != "" {
		body = gin.H{"error": http.StatusText(status), "message": message}
	}
	s.failures[route] = failure{status: status, body: body}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

func (s *Server) handle(route string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls[route]++
		f, failing := s.failures[route]
		s.mu.Unlock()

		if failing {
			if f.body == nil {
				c.Status(f.status)
				return
			}
			c.JSON(f.status, f.body)
			return
		}
		h(c)
	}
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": msg})
}

func (s *Server) getQuote(c *gin.Context) {
	s.mu.Lock()
	q, ok := s.quotes[strings.ToUpper(c.Param("symbol"))]
	s.mu.Unlock()
	if !ok {
		notFound(c, "Quote not found: "+c.Param("symbol"))
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) getHolding(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "invalid holding id"})
		return
	}
	s.mu.Lock()
	h, ok := s.holdings[id]
	s.mu.Unlock()
	if !ok {
		notFound(c, "Holding not found")
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) buy(c *gin.Context) {
	var req types.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "invalid buy request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[strings.ToUpper(req.Symbol)]
	if !ok {
		notFound(c, "Quote not found: "+req.Symbol)
		return
	}
	qty := decimal.NewFromInt(int64(req.Quantity))
	cost := qty.Mul(q.Price).Add(s.fee)
	if cost.GreaterThan(s.cash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INSUFFICIENT_FUNDS", "message": "Insufficient funds for purchase"})
		return
	}
	s.cash = s.cash.Sub(cost)

	now := time.Now().UTC()
	price := q.Price
	h := types.Holding{
		HoldingID:     s.nextID,
		Symbol:        q.Symbol,
		Quantity:      qty,
		PurchasePrice: q.Price,
		PurchaseDate:  now,
		CurrentPrice:  &price,
	}
	s.holdings[h.HoldingID] = h
	s.nextID++

	c.JSON(http.StatusCreated, s.recordOrder(types.OrderTypeBuy, q.Symbol, qty, q.Price, now))
}

func (s *Server) sell(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": "invalid holding id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.holdings[id]
	if !ok {
		notFound(c, "Holding not found")
		return
	}
	price := h.PurchasePrice
	if q, ok := s.quotes[h.Symbol]; ok {
		price = q.Price
	} else if h.CurrentPrice != nil {
		price = *h.CurrentPrice
	}
	delete(s.holdings, id)
	s.cash = s.cash.Add(h.Quantity.Mul(price)).Sub(s.fee)

	c.JSON(http.StatusOK, s.recordOrder(types.OrderTypeSell, h.Symbol, h.Quantity, price, time.Now().UTC()))
}

// recordOrder must be called with s.mu held.
func (s *Server) recordOrder(t types.OrderType, symbol string, qty, price decimal.Decimal, at time.Time) types.Order {
	done := at
	o := types.Order{
		OrderID:        s.nextID,
		OrderType:      t,
		OrderStatus:    types.OrderStatusCompleted,
		Symbol:         symbol,
		Quantity:       qty,
		Price:          price,
		OrderFee:       s.fee,
		OpenDate:       at,
		CompletionDate: &done,
	}
	s.nextID++
	s.orders = append(s.orders, o)
	return o
}

func (s *Server) listHoldings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Holding, 0, len(s.holdings))
	for _, h := range s.holdings {
		out = append(out, h)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]types.Order{}, s.orders...))
}

func (s *Server) summary(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value := decimal.Zero
	for _, h := range s.holdings {
		p := h.PurchasePrice
		if q, ok := s.quotes[h.Symbol]; ok {
			p = q.Price
		}
		value = value.Add(h.Quantity.Mul(p))
	}
	c.JSON(http.StatusOK, types.AccountSummary{
		AccountID:     1,
		CashBalance:   s.cash,
		HoldingsValue: value,
		TotalValue:    s.cash.Add(value),
		HoldingsCount: len(s.holdings),
	})
}
