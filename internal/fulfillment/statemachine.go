package fulfillment

import (
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
)

// allowedTransitions is the full transition table for order items. CANCELLED
// and RETURNED are terminal.
var allowedTransitions = map[enums.OrderItemStatus][]enums.OrderItemStatus{
	enums.OrderItemStatusPending:   {enums.OrderItemStatusAccepted, enums.OrderItemStatusCancelled},
	enums.OrderItemStatusAccepted:  {enums.OrderItemStatusPacked, enums.OrderItemStatusCancelled},
	enums.OrderItemStatusPacked:    {enums.OrderItemStatusShipped},
	enums.OrderItemStatusShipped:   {enums.OrderItemStatusDelivered},
	enums.OrderItemStatusDelivered: {enums.OrderItemStatusReturned},
}

// statusRank is the fixed total order used to pick a representative status for
// a mixed sibling group. Higher rank means further advanced.
var statusRank = map[enums.OrderItemStatus]int{
	enums.OrderItemStatusCancelled: 0,
	enums.OrderItemStatusPending:   1,
	enums.OrderItemStatusAccepted:  2,
	enums.OrderItemStatusPacked:    3,
	enums.OrderItemStatusShipped:   4,
	enums.OrderItemStatusDelivered: 5,
	enums.OrderItemStatusReturned:  6,
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to enums.OrderItemStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an IllegalTransition error when from -> to is not in
// the transition table.
func CheckTransition(from, to enums.OrderItemStatus) error {
	if !to.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown status %q", to)
	}
	if !CanTransition(from, to) {
		return pkgerrors.Newf(pkgerrors.CodeIllegalTransition, "cannot move item from %s to %s", from, to).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return nil
}

// DeriveSellerOrderStatus recomputes a seller order's status from its items.
// Uniform DELIVERED or CANCELLED groups collapse to that status; otherwise the
// furthest-advanced sibling wins under the fixed ranking.
func DeriveSellerOrderStatus(items []enums.OrderItemStatus) enums.SellerOrderStatus {
	if len(items) == 0 {
		return enums.SellerOrderStatusPending
	}

	allDelivered := true
	allCancelled := true
	highest := items[0]
	for _, status := range items {
		if status != enums.OrderItemStatusDelivered {
			allDelivered = false
		}
		if status != enums.OrderItemStatusCancelled {
			allCancelled = false
		}
		if statusRank[status] > statusRank[highest] {
			highest = status
		}
	}

	switch {
	case allDelivered:
		return enums.SellerOrderStatusDelivered
	case allCancelled:
		return enums.SellerOrderStatusCancelled
	default:
		return enums.SellerOrderStatus(highest)
	}
}

// DeriveOrderStatus recomputes the buyer-facing order status from its seller
// orders.
func DeriveOrderStatus(sellerOrders []enums.SellerOrderStatus) enums.OrderStatus {
	if len(sellerOrders) == 0 {
		return enums.OrderStatusPending
	}

	allDelivered := true
	allCancelled := true
	anyShipped := false
	anyActive := false
	for _, status := range sellerOrders {
		if status != enums.SellerOrderStatusDelivered {
			allDelivered = false
		}
		if status != enums.SellerOrderStatusCancelled {
			allCancelled = false
		}
		if status == enums.SellerOrderStatusShipped {
			anyShipped = true
		}
		if status == enums.SellerOrderStatusAccepted || status == enums.SellerOrderStatusPacked {
			anyActive = true
		}
	}

	switch {
	case allDelivered:
		return enums.OrderStatusDelivered
	case allCancelled:
		return enums.OrderStatusCancelled
	case anyShipped:
		return enums.OrderStatusShipped
	case anyActive:
		return enums.OrderStatusConfirmed
	default:
		return enums.OrderStatusPending
	}
}
