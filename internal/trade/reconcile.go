package trade

import (
	"context"

	"daytrader-client/internal/cache"
	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/types"
)

// Reconciler marks the cached views an order affects as stale. It never
// patches them; the next read refetches the server's numbers.
type Reconciler struct {
	reg  interfaces.InvalidationRegistry
	keys []string
}

func NewReconciler(reg interfaces.InvalidationRegistry) *Reconciler {
	return &Reconciler{
		reg:  reg,
		keys: []string{cache.KeyHoldings, cache.KeyOrders, cache.KeyAccount},
	}
}

// Reconcile runs once per placed order, after it succeeded.
func (r *Reconciler) Reconcile(ctx context.Context, order types.Order) {
	if r == nil || r.reg == nil {
		return
	}
	for _, k := range r.keys {
		r.reg.Invalidate(k)
	}
	logger.Debug(ctx, "Cached views invalidated", "order_id", order.OrderID, "keys", r.keys)
}
