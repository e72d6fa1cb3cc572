package controllers

import (
	"net/http"

	"github.com/threadkart/threadkart-backend/api/middleware"
	"github.com/threadkart/threadkart-backend/api/responses"
	"github.com/threadkart/threadkart-backend/api/validators"
	checkoutsvc "github.com/threadkart/threadkart-backend/internal/checkout"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/types"
)

type checkoutRequest struct {
	ShippingAddress checkoutAddress `json:"shipping_address" validate:"required"`
}

type checkoutAddress struct {
	Line1      string  `json:"line1" validate:"required,max=200"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string  `json:"city" validate:"required,max=100"`
	State      string  `json:"state" validate:"required,max=100"`
	PostalCode string  `json:"postal_code" validate:"required,max=20"`
	Country    string  `json:"country,omitempty" validate:"omitempty,max=100"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// Checkout submits the buyer's cart as a multi-seller order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), buyerID, types.Address{
			Line1:      payload.ShippingAddress.Line1,
			Line2:      payload.ShippingAddress.Line2,
			City:       payload.ShippingAddress.City,
			State:      payload.ShippingAddress.State,
			PostalCode: payload.ShippingAddress.PostalCode,
			Country:    payload.ShippingAddress.Country,
			Phone:      payload.ShippingAddress.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
