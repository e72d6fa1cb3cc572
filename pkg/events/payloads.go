package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadkart/threadkart-backend/pkg/enums"
)

// Event type attribute values carried on published messages.
const (
	TypeOrderCreated      = "order.created"
	TypeItemStatusUpdated = "order.item.status.updated"
)

// Envelope is the stable wire structure for every published event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// SellerOrderSummary is the per-seller slice of an order announced at creation.
type SellerOrderSummary struct {
	SellerOrderID uuid.UUID       `json:"sellerOrderId"`
	SellerID      uuid.UUID       `json:"sellerId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ItemCount     int             `json:"itemCount"`
}

// OrderCreated announces a committed checkout.
type OrderCreated struct {
	OrderID      uuid.UUID            `json:"orderId"`
	BuyerID      uuid.UUID            `json:"buyerId"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	SellerOrders []SellerOrderSummary `json:"sellerOrders"`
}

// ItemStatusUpdated announces a committed fulfillment transition, including
// the statuses derived from it.
type ItemStatusUpdated struct {
	OrderID           uuid.UUID               `json:"orderId"`
	SellerOrderID     uuid.UUID               `json:"sellerOrderId"`
	OrderItemID       uuid.UUID               `json:"orderItemId"`
	SellerID          uuid.UUID               `json:"sellerId"`
	PreviousStatus    enums.OrderItemStatus   `json:"previousStatus"`
	NewStatus         enums.OrderItemStatus   `json:"newStatus"`
	SellerOrderStatus enums.SellerOrderStatus `json:"sellerOrderStatus"`
	OrderStatus       enums.OrderStatus       `json:"orderStatus"`
}
