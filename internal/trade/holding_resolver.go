package trade

import (
	"context"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/types"
)

type HoldingState = Lookup[int64, types.Holding]

// HoldingResolver looks up one owned position. Identifier 0 means no lookup
// was requested.
//
// Once a holding is sold the server no longer knows it, so the caller must
// Abandon the resolver before anything refetches. Abandoned identifiers are
// never looked up again.
type HoldingResolver struct {
	*resolver[int64, types.Holding]

	abandoned map[int64]bool // guarded by resolver.mu
}

func NewHoldingResolver(src interfaces.HoldingSource) *HoldingResolver {
	return &HoldingResolver{
		resolver: newResolver("holding", func(ctx context.Context, id int64) (types.Holding, error) {
			return src.Holding(ctx, id)
		}),
		abandoned: make(map[int64]bool),
	}
}

// Resolve starts a lookup of id unless it is already loading or resolved.
func (h *HoldingResolver) Resolve(id int64) {
	h.start(id, false)
}

// Refresh looks the current holding up again.
func (h *HoldingResolver) Refresh() {
	h.start(h.State().Key, true)
}

// Abandon marks the current holding as sold and drops any lookup in flight.
func (h *HoldingResolver) Abandon() {
	r := h.resolver
	r.mu.Lock()
	defer r.mu.Unlock()
	if id := r.state.Key; id != 0 {
		h.abandoned[id] = true
	}
	r.gen++
	if r.state.Status == LookupLoading {
		r.state.Status = LookupIdle
	}
	r.settleLocked()
}

func (h *HoldingResolver) start(id int64, force bool) {
	r := h.resolver
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if h.abandoned[id] {
		r.mu.Unlock()
		logger.Debug(r.ctx, "Skipping lookup of sold holding", "holding_id", id, "reason", ErrStaleHolding.Error())
		return
	}
	switch {
	case id == 0:
		if r.state.Key == 0 && r.state.Status == LookupIdle {
			r.mu.Unlock()
			return
		}
		r.idleLocked()
	case !force && id == r.state.Key && (r.state.Status == LookupLoading || r.state.Status == LookupResolved):
		r.mu.Unlock()
		return
	}

	var gen uint64
	if id != 0 {
		gen = r.beginLocked(id)
	}
	st, subs := r.state, r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, st)
	if id != 0 {
		go r.run(gen, id)
	}
}
