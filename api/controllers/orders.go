package controllers

import (
	"net/http"

	"github.com/threadkart/threadkart-backend/api/middleware"
	"github.com/threadkart/threadkart-backend/api/responses"
	orderssvc "github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
)

func OrdersList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListBuyerOrders(r.Context(), buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, next := trimPage(rows, params.Limit, func(o models.Order) string {
			return pagination.EncodeCursor(pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID})
		})
		out := make([]orderResponse, 0, len(page))
		for i := range page {
			out = append(out, newOrderResponse(&page[i]))
		}
		responses.WriteSuccess(w, pageResponse[orderResponse]{Items: out, NextCursor: next})
	}
}

func OrderGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func OrderCancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), buyerID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func OrderReorder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reorder(r.Context(), buyerID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cart_replaced"})
	}
}
