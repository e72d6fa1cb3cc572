package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/threadkart/threadkart-backend/api/middleware"
	"github.com/threadkart/threadkart-backend/api/responses"
	"github.com/threadkart/threadkart-backend/api/validators"
	paymentssvc "github.com/threadkart/threadkart-backend/internal/payments"
	"github.com/threadkart/threadkart-backend/pkg/logger"
)

type paymentConfirmRequest struct {
	OrderID    uuid.UUID `json:"order_id" validate:"required,uuid4"`
	PaymentRef string    `json:"payment_reference" validate:"required,max=200"`
}

type paymentFailRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required,uuid4"`
	Reason  string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func PaymentConfirm(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Confirm(r.Context(), buyerID, payload.OrderID, payload.PaymentRef); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "confirmed"})
	}
}

func PaymentFail(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentFailRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Fail(r.Context(), buyerID, payload.OrderID, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "acknowledged"})
	}
}
