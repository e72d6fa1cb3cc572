package enums

import "fmt"

// OrderItemStatus tracks the fulfillment state of a single order item. Items
// advance independently; the owning seller is the only writer.
type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "pending"
	OrderItemStatusAccepted  OrderItemStatus = "accepted"
	OrderItemStatusPacked    OrderItemStatus = "packed"
	OrderItemStatusShipped   OrderItemStatus = "shipped"
	OrderItemStatusDelivered OrderItemStatus = "delivered"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
	OrderItemStatusReturned  OrderItemStatus = "returned"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusAccepted,
	OrderItemStatusPacked,
	OrderItemStatusShipped,
	OrderItemStatusDelivered,
	OrderItemStatusCancelled,
	OrderItemStatusReturned,
}

// String implements fmt.Stringer.
func (s OrderItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (s OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
