package trade

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/types"
)

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s        *manualScheduler
	at       time.Duration
	fn       func()
	done     bool
	canceled bool
}

func (t *manualTimer) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	return true
}

func (s *manualScheduler) ScheduleAfter(delay time.Duration, fn func()) interfaces.CancelHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + delay, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and runs due callbacks in order on the caller's
// goroutine.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.done && !t.canceled && t.at <= s.now {
			t.done = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.done && !t.canceled {
			n++
		}
	}
	return n
}

// events is an ordered log shared by the fakes.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

func (e *events) index(entry string) int {
	for i, s := range e.all() {
		if s == entry {
			return i
		}
	}
	return -1
}

type fakeAPI struct {
	ev *events

	mu       sync.Mutex
	quotes   map[string]types.Quote
	holdings map[int64]types.Holding
	quoteErr error
	buyErr   error
	sellErr  error
	// order, when set, is returned by Buy and Sell instead of one derived
	// from the request.
	order *types.Order
	// gate, when set, blocks Buy and Sell until it is closed.
	gate chan struct{}

	quoteCalls   []string
	holdingCalls []int64
	buyCalls     int
	sellCalls    int
	listCalls    int
}

var _ interfaces.TradingAPI = (*fakeAPI)(nil)

func newFakeAPI(ev *events) *fakeAPI {
	return &fakeAPI{
		ev:       ev,
		quotes:   make(map[string]types.Quote),
		holdings: make(map[int64]types.Holding),
	}
}

var fee = decimal.RequireFromString("9.99")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fakeAPI) addQuote(symbol, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = types.Quote{Symbol: symbol, CompanyName: symbol + " Corp", Price: dec(price)}
}

func (f *fakeAPI) addHolding(id int64, symbol, qty, current string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := types.Holding{HoldingID: id, Symbol: symbol, Quantity: dec(qty), PurchasePrice: dec("120.00")}
	if current != "" {
		p := dec(current)
		h.CurrentPrice = &p
	}
	f.holdings[id] = h
}

func (f *fakeAPI) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls = append(f.quoteCalls, symbol)
	if f.quoteErr != nil {
		return types.Quote{}, f.quoteErr
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return types.Quote{}, fmt.Errorf("quote %s: %w", symbol, types.ErrNotFound)
	}
	return q, nil
}

func (f *fakeAPI) Holding(ctx context.Context, id int64) (types.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdingCalls = append(f.holdingCalls, id)
	if f.ev != nil {
		f.ev.add("holding:%d", id)
	}
	h, ok := f.holdings[id]
	if !ok {
		return types.Holding{}, fmt.Errorf("holding %d: %w", id, types.ErrNotFound)
	}
	return h, nil
}

func (f *fakeAPI) Buy(ctx context.Context, req types.BuyRequest) (types.Order, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buyCalls++
	if f.buyErr != nil {
		return types.Order{}, f.buyErr
	}
	if f.order != nil {
		return *f.order, nil
	}
	q := f.quotes[req.Symbol]
	return types.Order{
		OrderID:     100,
		OrderType:   types.OrderTypeBuy,
		OrderStatus: types.OrderStatusCompleted,
		Symbol:      req.Symbol,
		Quantity:    decimal.NewFromInt(int64(req.Quantity)),
		Price:       q.Price,
		OrderFee:    fee,
	}, nil
}

func (f *fakeAPI) Sell(ctx context.Context, id int64) (types.Order, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sellCalls++
	if f.sellErr != nil {
		return types.Order{}, f.sellErr
	}
	h, ok := f.holdings[id]
	if !ok {
		return types.Order{}, fmt.Errorf("sell %d: %w", id, types.ErrNotFound)
	}
	delete(f.holdings, id)
	return types.Order{
		OrderID:     200,
		OrderType:   types.OrderTypeSell,
		OrderStatus: types.OrderStatusCompleted,
		Symbol:      h.Symbol,
		Quantity:    h.Quantity,
		Price:       *h.CurrentPrice,
		OrderFee:    fee,
	}, nil
}

func (f *fakeAPI) Holdings(ctx context.Context) ([]types.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]types.Holding, 0, len(f.holdings))
	for _, h := range f.holdings {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeAPI) Orders(ctx context.Context) ([]types.Order, error) {
	return nil, nil
}

func (f *fakeAPI) AccountSummary(ctx context.Context) (types.AccountSummary, error) {
	return types.AccountSummary{AccountID: 1}, nil
}

func (f *fakeAPI) wait() {
	f.mu.Lock()
	g := f.gate
	f.mu.Unlock()
	if g != nil {
		<-g
	}
}

func (f *fakeAPI) counts() (quotes, holdings, buys, sells int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.quoteCalls), len(f.holdingCalls), f.buyCalls, f.sellCalls
}

type recordingRegistry struct {
	ev *events
}

func (r *recordingRegistry) Invalidate(key string) { r.ev.add("invalidate:%s", key) }

func (r *recordingRegistry) Fetch(ctx context.Context, key string) (any, error) {
	r.ev.add("fetch:%s", key)
	return nil, nil
}

type recordingNavigator struct {
	ev *events
}

func (n *recordingNavigator) Navigate(route string) { n.ev.add("navigate:%s", route) }
