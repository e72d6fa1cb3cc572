package controllers

import (
	"net/http"

	"github.com/threadkart/threadkart-backend/api/middleware"
	"github.com/threadkart/threadkart-backend/api/responses"
	"github.com/threadkart/threadkart-backend/api/validators"
	"github.com/threadkart/threadkart-backend/internal/fulfillment"
	orderssvc "github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
)

type itemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func SellerOrdersList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListSellerOrders(r.Context(), sellerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, next := trimPage(rows, params.Limit, func(so models.SellerOrder) string {
			return pagination.EncodeCursor(pagination.Cursor{CreatedAt: so.CreatedAt, ID: so.ID})
		})
		out := make([]sellerOrderResponse, 0, len(page))
		for i := range page {
			out = append(out, newSellerOrderResponse(&page[i]))
		}
		responses.WriteSuccess(w, pageResponse[sellerOrderResponse]{Items: out, NextCursor: next})
	}
}

func SellerOrderGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerOrderID, err := pathUUID(r, "sellerOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerOrder, err := svc.GetSellerOrder(r.Context(), sellerID, sellerOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSellerOrderResponse(sellerOrder))
	}
}

// SellerItemStatusUpdate walks one order item through the fulfillment state
// machine and returns the item with its re-derived aggregates.
func SellerItemStatusUpdate(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseOrderItemStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item status"))
			return
		}

		item, err := svc.UpdateItemStatus(r.Context(), sellerID, itemID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderItemResponse(*item))
	}
}
