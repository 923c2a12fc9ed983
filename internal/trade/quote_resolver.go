package trade

import (
	"context"
	"strings"
	"time"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/types"
)

// DefaultDebounce is how long symbol input must be quiet before a lookup.
const DefaultDebounce = 500 * time.Millisecond

type QuoteState = Lookup[string, types.Quote]

// QuoteResolver turns typed symbol input into a quote. Input is debounced;
// the resolver reports Loading from the first keystroke until the lookup
// for the final symbol settles.
type QuoteResolver struct {
	*resolver[string, types.Quote]

	sched   interfaces.Scheduler
	delay   time.Duration
	pending interfaces.CancelHandle // guarded by resolver.mu
}

// NewQuoteResolver returns a resolver reading from src. A nil sched uses
// TimerScheduler and a non-positive delay uses DefaultDebounce.
func NewQuoteResolver(src interfaces.QuoteSource, sched interfaces.Scheduler, delay time.Duration) *QuoteResolver {
	if sched == nil {
		sched = TimerScheduler{}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &QuoteResolver{
		resolver: newResolver("quote", func(ctx context.Context, symbol string) (types.Quote, error) {
			return src.Quote(ctx, symbol)
		}),
		sched: sched,
		delay: delay,
	}
}

func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SetSymbol records new input. Repeating the current symbol is a no-op, so
// a lookup already outstanding or settled for it is reused.
func (q *QuoteResolver) SetSymbol(raw string) {
	sym := NormalizeSymbol(raw)

	r := q.resolver
	r.mu.Lock()
	if r.closed || sym == r.state.Key {
		r.mu.Unlock()
		return
	}
	q.cancelPendingLocked()
	if sym == "" {
		r.idleLocked()
	} else {
		gen := r.beginLocked(sym)
		q.pending = q.sched.ScheduleAfter(q.delay, func() { q.fire(gen, sym) })
	}
	st, subs := r.state, r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, st)
}

// Close cancels the debounce timer and any lookup in flight.
func (q *QuoteResolver) Close() {
	q.resolver.mu.Lock()
	q.cancelPendingLocked()
	q.resolver.mu.Unlock()
	q.resolver.Close()
}

func (q *QuoteResolver) fire(gen uint64, sym string) {
	q.resolver.mu.Lock()
	if gen == q.resolver.gen {
		q.pending = nil
	}
	q.resolver.mu.Unlock()
	q.resolver.run(gen, sym)
}

func (q *QuoteResolver) cancelPendingLocked() {
	if q.pending != nil {
		q.pending.Cancel()
		q.pending = nil
	}
}
