package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/threadkart/threadkart-backend/api/middleware"
	"github.com/threadkart/threadkart-backend/api/responses"
	"github.com/threadkart/threadkart-backend/api/validators"
	cartsvc "github.com/threadkart/threadkart-backend/internal/cart"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/logger"
)

type addCartLineRequest struct {
	ProductID     uuid.UUID  `json:"product_id" validate:"required,uuid4"`
	SizeVariantID *uuid.UUID `json:"size_variant_id,omitempty" validate:"omitempty,uuid4"`
	Quantity      int        `json:"quantity" validate:"required,gt=0"`
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.List(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]cartLineResponse, 0, len(lines))
		for _, line := range lines {
			out = append(out, newCartLineResponse(line))
		}
		responses.WriteSuccess(w, out)
	}
}

func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddLine(r.Context(), buyerID, cartsvc.AddLineInput{
			ProductID:     payload.ProductID,
			SizeVariantID: payload.SizeVariantID,
			Quantity:      payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartLineResponse(*line))
	}
}

func CartUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateLine(r.Context(), buyerID, lineID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := middleware.ActorUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveLine(r.Context(), buyerID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
