package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/threadkart/threadkart-backend/api/validators"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
	"github.com/threadkart/threadkart-backend/pkg/types"
)

type orderResponse struct {
	OrderID         uuid.UUID             `json:"order_id"`
	Status          string                `json:"status"`
	TotalAmount     string                `json:"total_amount"`
	ShippingAddress types.Address         `json:"shipping_address"`
	PaymentRef      *string               `json:"payment_reference,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	SellerOrders    []sellerOrderResponse `json:"seller_orders,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

type sellerOrderResponse struct {
	SellerOrderID uuid.UUID           `json:"seller_order_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	Status        string              `json:"status"`
	TotalAmount   string              `json:"total_amount"`
	Items         []orderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ItemID        uuid.UUID  `json:"item_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	SizeVariantID *uuid.UUID `json:"size_variant_id,omitempty"`
	ProductTitle  string     `json:"product_title"`
	Quantity      int        `json:"quantity"`
	UnitPrice     string     `json:"unit_price"`
	OriginalPrice string     `json:"original_unit_price"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue *string    `json:"discount_value,omitempty"`
	LineTotal     string     `json:"line_total"`
	Status        string     `json:"status"`
}

type cartLineResponse struct {
	LineID        uuid.UUID  `json:"line_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	SizeVariantID *uuid.UUID `json:"size_variant_id,omitempty"`
	ProductTitle  string     `json:"product_title,omitempty"`
	Quantity      int        `json:"quantity"`
}

type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		OrderID:         order.ID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ShippingAddress: order.ShippingAddress,
		PaymentRef:      order.PaymentReference,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
	for i := range order.SellerOrders {
		resp.SellerOrders = append(resp.SellerOrders, newSellerOrderResponse(&order.SellerOrders[i]))
	}
	return resp
}

func newSellerOrderResponse(so *models.SellerOrder) sellerOrderResponse {
	resp := sellerOrderResponse{
		SellerOrderID: so.ID,
		SellerID:      so.SellerID,
		Status:        string(so.Status),
		TotalAmount:   so.TotalAmount.StringFixed(2),
		CreatedAt:     so.CreatedAt,
	}
	for _, item := range so.Items {
		resp.Items = append(resp.Items, newOrderItemResponse(item))
	}
	return resp
}

func newOrderItemResponse(item models.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ItemID:        item.ID,
		ProductID:     item.ProductID,
		SizeVariantID: item.SizeVariantID,
		ProductTitle:  item.ProductTitle,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice.StringFixed(2),
		OriginalPrice: item.OriginalUnitPrice.StringFixed(2),
		DiscountType:  string(item.DiscountType),
		LineTotal:     item.LineTotal().StringFixed(2),
		Status:        string(item.Status),
	}
	if item.DiscountValue != nil {
		v := item.DiscountValue.StringFixed(2)
		resp.DiscountValue = &v
	}
	return resp
}

func newCartLineResponse(line models.CartLine) cartLineResponse {
	resp := cartLineResponse{
		LineID:        line.ID,
		ProductID:     line.ProductID,
		SizeVariantID: line.SizeVariantID,
		Quantity:      line.Quantity,
	}
	if line.Product != nil {
		resp.ProductTitle = line.Product.Title
	}
	return resp
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), 256),
	}, nil
}

// trimPage cuts a buffered result set down to the requested limit and derives
// the next cursor from the final visible row.
func trimPage[T any](rows []T, limit int, cursorOf func(T) string) ([]T, string) {
	limit = pagination.NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	trimmed := rows[:limit]
	return trimmed, cursorOf(trimmed[limit-1])
}
