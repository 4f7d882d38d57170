package order

import "github.com/dkochetov/storefront/internal/types/order"

var statusRank = map[order.OrderStatus]int{
	order.StatusPending:    0,
	order.StatusProcessing: 1,
	order.StatusShipped:    2,
	order.StatusDelivered:  3,
}

// CanTransition reports whether an order may move from current to
// target. Fulfilment moves forward only (skipping steps is allowed);
// cancellation is reachable from any non-cancelled state; re-applying
// the current status is accepted as a timestamp touch.
func CanTransition(current, target order.OrderStatus) bool {
	if current == target {
		return true
	}
	if current == order.StatusCancelled {
		return false
	}
	if target == order.StatusCancelled {
		return true
	}
	cur, ok := statusRank[current]
	tgt, tok := statusRank[target]
	return ok && tok && tgt > cur
}
