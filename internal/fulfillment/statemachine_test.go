package fulfillment

import (
	"testing"

	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
)

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to enums.OrderItemStatus }{
		{enums.OrderItemStatusPending, enums.OrderItemStatusAccepted},
		{enums.OrderItemStatusPending, enums.OrderItemStatusCancelled},
		{enums.OrderItemStatusAccepted, enums.OrderItemStatusPacked},
		{enums.OrderItemStatusAccepted, enums.OrderItemStatusCancelled},
		{enums.OrderItemStatusPacked, enums.OrderItemStatusShipped},
		{enums.OrderItemStatusShipped, enums.OrderItemStatusDelivered},
		{enums.OrderItemStatusDelivered, enums.OrderItemStatusReturned},
	}
	for _, tc := range allowed {
		if err := CheckTransition(tc.from, tc.to); err != nil {
			t.Errorf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
	}

	illegal := []struct{ from, to enums.OrderItemStatus }{
		{enums.OrderItemStatusPending, enums.OrderItemStatusShipped},
		{enums.OrderItemStatusPacked, enums.OrderItemStatusCancelled},
		{enums.OrderItemStatusShipped, enums.OrderItemStatusCancelled},
		{enums.OrderItemStatusCancelled, enums.OrderItemStatusPending},
		{enums.OrderItemStatusReturned, enums.OrderItemStatusDelivered},
		{enums.OrderItemStatusDelivered, enums.OrderItemStatusDelivered},
	}
	for _, tc := range illegal {
		err := CheckTransition(tc.from, tc.to)
		if err == nil {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
			continue
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeIllegalTransition {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
	}

	if err := CheckTransition(enums.OrderItemStatusPending, "teleported"); err == nil {
		t.Error("unknown target status should be rejected")
	}
}

func TestDeriveSellerOrderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []enums.OrderItemStatus
		want  enums.SellerOrderStatus
	}{
		{
			name:  "all delivered",
			items: []enums.OrderItemStatus{enums.OrderItemStatusDelivered, enums.OrderItemStatusDelivered},
			want:  enums.SellerOrderStatusDelivered,
		},
		{
			name:  "all cancelled",
			items: []enums.OrderItemStatus{enums.OrderItemStatusCancelled, enums.OrderItemStatusCancelled},
			want:  enums.SellerOrderStatusCancelled,
		},
		{
			name:  "accepted beats cancelled sibling",
			items: []enums.OrderItemStatus{enums.OrderItemStatusCancelled, enums.OrderItemStatusAccepted},
			want:  enums.SellerOrderStatusAccepted,
		},
		{
			name:  "shipped beats pending",
			items: []enums.OrderItemStatus{enums.OrderItemStatusPending, enums.OrderItemStatusShipped},
			want:  enums.SellerOrderStatusShipped,
		},
		{
			name:  "returned outranks delivered in mixed group",
			items: []enums.OrderItemStatus{enums.OrderItemStatusDelivered, enums.OrderItemStatusReturned},
			want:  enums.SellerOrderStatusReturned,
		},
		{
			name:  "empty group stays pending",
			items: nil,
			want:  enums.SellerOrderStatusPending,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DeriveSellerOrderStatus(tc.items)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			// Derivation is idempotent: same siblings, same aggregate.
			if again := DeriveSellerOrderStatus(tc.items); again != got {
				t.Fatalf("derivation not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		groups []enums.SellerOrderStatus
		want   enums.OrderStatus
	}{
		{
			name:   "all delivered",
			groups: []enums.SellerOrderStatus{enums.SellerOrderStatusDelivered, enums.SellerOrderStatusDelivered},
			want:   enums.OrderStatusDelivered,
		},
		{
			name:   "all cancelled",
			groups: []enums.SellerOrderStatus{enums.SellerOrderStatusCancelled},
			want:   enums.OrderStatusCancelled,
		},
		{
			name:   "any shipped wins over accepted",
			groups: []enums.SellerOrderStatus{enums.SellerOrderStatusAccepted, enums.SellerOrderStatusShipped},
			want:   enums.OrderStatusShipped,
		},
		{
			name:   "accepted or packed means confirmed",
			groups: []enums.SellerOrderStatus{enums.SellerOrderStatusPending, enums.SellerOrderStatusPacked},
			want:   enums.OrderStatusConfirmed,
		},
		{
			name:   "delivered plus pending is still pending overall",
			groups: []enums.SellerOrderStatus{enums.SellerOrderStatusDelivered, enums.SellerOrderStatusPending},
			want:   enums.OrderStatusPending,
		},
		{
			name:   "no groups",
			groups: nil,
			want:   enums.OrderStatusPending,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DeriveOrderStatus(tc.groups)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
