package enums

import "fmt"

// SellerOrderStatus is the derived aggregate over a seller order's items. It
// is never authored directly; recomputation happens whenever a sibling item
// changes.
type SellerOrderStatus string

const (
	SellerOrderStatusPending   SellerOrderStatus = "pending"
	SellerOrderStatusAccepted  SellerOrderStatus = "accepted"
	SellerOrderStatusPacked    SellerOrderStatus = "packed"
	SellerOrderStatusShipped   SellerOrderStatus = "shipped"
	SellerOrderStatusDelivered SellerOrderStatus = "delivered"
	SellerOrderStatusCancelled SellerOrderStatus = "cancelled"
	SellerOrderStatusReturned  SellerOrderStatus = "returned"
)

var validSellerOrderStatuses = []SellerOrderStatus{
	SellerOrderStatusPending,
	SellerOrderStatusAccepted,
	SellerOrderStatusPacked,
	SellerOrderStatusShipped,
	SellerOrderStatusDelivered,
	SellerOrderStatusCancelled,
	SellerOrderStatusReturned,
}

// String implements fmt.Stringer.
func (s SellerOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellerOrderStatus.
func (s SellerOrderStatus) IsValid() bool {
	for _, candidate := range validSellerOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellerOrderStatus converts raw input into a SellerOrderStatus.
func ParseSellerOrderStatus(value string) (SellerOrderStatus, error) {
	for _, candidate := range validSellerOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller order status %q", value)
}
