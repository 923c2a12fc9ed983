package trade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"daytrader-client/internal/api"
	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/trace"
	"daytrader-client/internal/types"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateAwaitingConfirmation
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	genericBuyFailure  = "Failed to place buy order. Please try again."
	genericSellFailure = "Failed to place sell order. Please try again."
)

// Snapshot is everything a host needs to render the trade form.
type Snapshot struct {
	State   State
	Intent  types.TradeIntent
	Quote   QuoteState
	Holding HoldingState
	// Estimate is nil while the inputs cannot be priced.
	Estimate *Estimate
	// Order is the server's order once Succeeded.
	Order *types.Order
	// Err is a *ValidationError while Validating and a *SubmissionError
	// once Failed.
	Err error
}

// CanConfirm reports whether the confirm control should be enabled.
func (s Snapshot) CanConfirm() bool {
	return s.State == StateAwaitingConfirmation
}

// Message is the inline text to show for the current state, if any.
func (s Snapshot) Message() string {
	var ve *ValidationError
	var se *SubmissionError
	switch {
	case errors.As(s.Err, &ve):
		return ve.Reason
	case errors.As(s.Err, &se):
		return se.Message
	}
	return ""
}

type Params struct {
	Quotes   interfaces.QuoteSource
	Holdings interfaces.HoldingSource
	Orders   interfaces.OrderPlacer
	// Cache receives invalidations after each placed order. Optional.
	Cache interfaces.InvalidationRegistry
	// Navigator is told where to go after a sell. Optional.
	Navigator interfaces.Navigator
	// Scheduler drives the symbol debounce. Defaults to TimerScheduler.
	Scheduler interfaces.Scheduler
	Debounce  time.Duration
	Fee       decimal.Decimal
}

// Controller runs one trade form: Idle → Validating → AwaitingConfirmation
// → Submitting → Succeeded | Failed. At most one order is in flight.
type Controller struct {
	fee        decimal.Decimal
	orders     interfaces.OrderPlacer
	nav        interfaces.Navigator
	reconciler *Reconciler
	quotes     *QuoteResolver
	holdings   *HoldingResolver
	unsub      []func()

	mu        sync.Mutex
	state     State
	intent    types.TradeIntent
	order     *types.Order
	err       error
	closed    bool
	listeners map[int]func(Snapshot)
	nextSub   int
}

func NewController(p Params) *Controller {
	nav := p.Navigator
	if nav == nil {
		nav = nopNavigator{}
	}
	c := &Controller{
		fee:        p.Fee,
		orders:     p.Orders,
		nav:        nav,
		reconciler: NewReconciler(p.Cache),
		quotes:     NewQuoteResolver(p.Quotes, p.Scheduler, p.Debounce),
		holdings:   NewHoldingResolver(p.Holdings),
		intent:     types.TradeIntent{Action: types.OrderTypeBuy},
		listeners:  make(map[int]func(Snapshot)),
	}
	c.unsub = []func(){
		c.quotes.Subscribe(func(QuoteState) { c.notify() }),
		c.holdings.Subscribe(func(HoldingState) { c.notify() }),
	}
	return c
}

// Snapshot returns the current form state with a freshly computed estimate.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every change and returns a function that
// removes it. fn runs outside the controller's lock.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) SetAction(a types.OrderType) {
	if !c.edit(func(in *types.TradeIntent) { in.Action = a }) {
		return
	}
	c.notify()
}

func (c *Controller) SetSymbol(symbol string) {
	if !c.edit(func(in *types.TradeIntent) { in.Symbol = NormalizeSymbol(symbol) }) {
		return
	}
	c.quotes.SetSymbol(symbol)
	c.notify()
}

func (c *Controller) SetQuantity(n int) {
	if !c.edit(func(in *types.TradeIntent) { in.Quantity = n }) {
		return
	}
	c.notify()
}

func (c *Controller) SetHolding(id int64) {
	if !c.edit(func(in *types.TradeIntent) { in.HoldingID = id }) {
		return
	}
	c.holdings.Resolve(id)
	c.notify()
}

// WaitLookups blocks until neither resolver is loading.
func (c *Controller) WaitLookups(ctx context.Context) error {
	if _, err := c.quotes.Wait(ctx); err != nil {
		return err
	}
	_, err := c.holdings.Wait(ctx)
	return err
}

// RetryLookup retries a failed lookup for the current action. The form
// itself is untouched.
func (c *Controller) RetryLookup() bool {
	c.mu.Lock()
	action := c.intent.Action
	c.mu.Unlock()
	if action == types.OrderTypeSell {
		return c.holdings.Retry()
	}
	return c.quotes.Retry()
}

// Submit validates the form. Valid input moves to AwaitingConfirmation;
// invalid input stays at Validating and the *ValidationError is returned.
func (c *Controller) Submit() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateValidating
	c.order = nil
	c.err = c.validateLocked()
	if c.err == nil {
		c.state = StateAwaitingConfirmation
	}
	err, intent := c.err, c.intent
	c.mu.Unlock()

	if err != nil {
		logger.Debug(context.Background(), "Trade validation failed", "action", string(intent.Action), "reason", err.Error())
	} else {
		logger.Debug(context.Background(), "Trade awaiting confirmation", "action", string(intent.Action), "symbol", intent.Symbol, "holding_id", intent.HoldingID)
	}
	c.notify()
	return err
}

// Cancel abandons the confirmation step without side effects.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.closed || c.state != StateAwaitingConfirmation {
		c.mu.Unlock()
		return false
	}
	c.state = StateIdle
	c.mu.Unlock()
	c.notify()
	return true
}

// Dismiss clears a validation, success or failure outcome. Inputs are kept.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	switch c.state {
	case StateValidating, StateSucceeded, StateFailed:
	default:
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.order, c.err = nil, nil
	c.mu.Unlock()
	c.notify()
}

// Confirm places the order awaiting confirmation and blocks until the
// server answers. Exactly one request is issued; concurrent confirms get
// ErrNotConfirmable.
func (c *Controller) Confirm(ctx context.Context) (types.Order, error) {
	c.mu.Lock()
	if c.closed || c.state != StateAwaitingConfirmation {
		c.mu.Unlock()
		return types.Order{}, ErrNotConfirmable
	}
	c.state = StateSubmitting
	intent := c.intent
	c.mu.Unlock()
	c.notify()

	ctx, span := trace.StartSpan(ctx, "trade.Confirm")
	defer span.End()
	op := logger.StartOperation(ctx, "place_order", "action", string(intent.Action), "symbol", intent.Symbol, "holding_id", intent.HoldingID)

	var order types.Order
	var err error
	if intent.Action == types.OrderTypeSell {
		order, err = c.orders.Sell(op.Context(), intent.HoldingID)
	} else {
		order, err = c.orders.Buy(op.Context(), types.BuyRequest{Symbol: intent.Symbol, Quantity: intent.Quantity})
	}
	if err != nil {
		op.EndWithError(err)
		return types.Order{}, c.fail(intent, err)
	}
	op.End("order_id", order.OrderID)
	c.succeed(op.Context(), intent, order)
	return order, nil
}

// Close tears the form down. Pending lookups are discarded and an order
// still in flight will not change state, notify or navigate when it
// returns; its cache invalidation still runs.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.listeners = nil
	c.mu.Unlock()

	for _, u := range c.unsub {
		u()
	}
	c.quotes.Close()
	c.holdings.Close()
}

// succeed runs the success handler in a fixed order: the sold holding is
// abandoned, then the host navigates away, then cached views are
// invalidated. Nothing can refetch the deleted holding after navigation.
func (c *Controller) succeed(ctx context.Context, intent types.TradeIntent, order types.Order) {
	c.mu.Lock()
	closed := c.closed
	if !closed {
		c.state = StateSucceeded
		c.order = &order
		c.err = nil
	}
	c.mu.Unlock()

	logger.Order(ctx, order.OrderID, string(order.OrderType), order.Symbol,
		order.Quantity.String(), order.Price.String(), order.OrderFee.String(), string(order.OrderStatus))

	if intent.Action == types.OrderTypeSell {
		c.holdings.Abandon()
	}
	if !closed {
		c.notify()
		if intent.Action == types.OrderTypeSell {
			c.nav.Navigate(SoldRoute(order.OrderID))
		}
	}
	c.reconciler.Reconcile(ctx, order)
}

func (c *Controller) fail(intent types.TradeIntent, err error) error {
	msg := genericBuyFailure
	if intent.Action == types.OrderTypeSell {
		msg = genericSellFailure
	}
	var se *api.StatusError
	if errors.As(err, &se) && se.Message() != "" {
		msg = se.Message()
	}
	serr := &SubmissionError{Action: intent.Action, Message: msg, Err: err}

	c.mu.Lock()
	closed := c.closed
	if !closed {
		c.state = StateFailed
		c.err = serr
	}
	c.mu.Unlock()

	logger.Warn(context.Background(), "Order rejected", "action", string(intent.Action), "message", msg)
	if !closed {
		c.notify()
	}
	return serr
}

// edit applies fn to the intent unless an order is being submitted. Any
// outcome on screen is cleared; a confirmation in progress goes back to
// Idle since its estimate no longer matches the inputs.
func (c *Controller) edit(fn func(*types.TradeIntent)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateSubmitting {
		return false
	}
	before := c.intent
	fn(&c.intent)
	if c.intent == before {
		return false
	}
	c.state = StateIdle
	c.order, c.err = nil, nil
	return true
}

// validateLocked may read the resolvers; they never call back into the
// controller while holding their own lock.
func (c *Controller) validateLocked() error {
	in := c.intent
	switch in.Action {
	case types.OrderTypeBuy:
		if in.Symbol == "" {
			return &ValidationError{Field: "symbol", Reason: "Please enter a stock symbol"}
		}
		if in.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Reason: "Please enter a valid quantity"}
		}
		return lookupReady(c.quotes.State(), in.Symbol, "symbol", "Stock symbol not found")
	case types.OrderTypeSell:
		if in.HoldingID <= 0 {
			return &ValidationError{Field: "holding", Reason: "Please select a holding to sell"}
		}
		return lookupReady(c.holdings.State(), in.HoldingID, "holding", "Holding not found")
	}
	return &ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", in.Action)}
}

func lookupReady[K comparable, V any](l Lookup[K, V], key K, field, notFound string) error {
	if l.Key != key {
		return &ValidationError{Field: field, Reason: "Lookup in progress"}
	}
	switch l.Status {
	case LookupResolved:
		return nil
	case LookupNotFound:
		return &ValidationError{Field: field, Reason: notFound}
	case LookupFailed:
		return &ValidationError{Field: field, Reason: "Lookup failed, retry to continue"}
	}
	return &ValidationError{Field: field, Reason: "Lookup in progress"}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:   c.state,
		Intent:  c.intent,
		Quote:   c.quotes.State(),
		Holding: c.holdings.State(),
		Order:   c.order,
		Err:     c.err,
	}
	var est Estimate
	var ok bool
	switch c.intent.Action {
	case types.OrderTypeBuy:
		if s.Quote.Resolved() && s.Quote.Key == c.intent.Symbol {
			est, ok = EstimateBuy(c.intent.Quantity, s.Quote.Value, c.fee)
		}
	case types.OrderTypeSell:
		if s.Holding.Resolved() && s.Holding.Key == c.intent.HoldingID {
			est, ok = EstimateSell(s.Holding.Value, c.fee)
		}
	}
	if ok {
		s.Estimate = &est
	}
	return s
}

func (c *Controller) notify() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	notify(subs, snap)
}
