package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/api/responses"
	"github.com/swiftcart-dev/swiftcart-backend/api/validators"
	cartsvc "github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
)

type cartLineRequest struct {
	ProductRef       string  `json:"product_ref" validate:"required"`
	SizeHint         *string `json:"size_hint,omitempty"`
	ColorHint        *string `json:"color_hint,omitempty"`
	Quantity         int     `json:"quantity" validate:"required,min=1"`
	UnitPriceCents   int     `json:"unit_price_cents" validate:"required,gt=0"`
	IsResale         bool    `json:"is_resale"`
	ResalePriceCents *int    `json:"resale_price_cents,omitempty" validate:"omitempty,gt=0"`
	CachedStockQty   *int    `json:"cached_stock_qty,omitempty" validate:"omitempty,min=0"`
}

type cartLineResponse struct {
	LineID           uuid.UUID `json:"line_id"`
	ProductRef       string    `json:"product_ref"`
	SizeHint         *string   `json:"size_hint,omitempty"`
	ColorHint        *string   `json:"color_hint,omitempty"`
	Quantity         int       `json:"quantity"`
	UnitPriceCents   int       `json:"unit_price_cents"`
	IsResale         bool      `json:"is_resale"`
	ResalePriceCents *int      `json:"resale_price_cents,omitempty"`
	TotalCents       int       `json:"total_cents"`
	AddedAt          time.Time `json:"added_at"`
}

type cartResponse struct {
	Lines         []cartLineResponse `json:"lines"`
	SubtotalCents int                `json:"subtotal_cents"`
	CouponCode    string             `json:"coupon_code,omitempty"`
}

// CartFetch returns the user's current cart lines with running totals.
func CartFetch(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart"))
			return
		}

		code, err := store.AppliedCoupon(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applied coupon"))
			return
		}

		responses.WriteSuccess(w, newCartResponse(lines, code))
	}
}

// CartAdd appends one raw line to the cart. Resolution happens at checkout,
// so any non-empty product reference is accepted here. A client-observed
// cached_stock_qty is snapshotted onto the line for availability fallback.
func CartAdd(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := store.Add(r.Context(), &models.CartLine{
			UserID:           userID,
			RawProductRef:    payload.ProductRef,
			SizeHint:         payload.SizeHint,
			ColorHint:        payload.ColorHint,
			Quantity:         payload.Quantity,
			UnitPriceCents:   payload.UnitPriceCents,
			IsResale:         payload.IsResale,
			ResalePriceCents: payload.ResalePriceCents,
			CachedStockQty:   payload.CachedStockQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartLineResponse(*line))
	}
}

// CartRemoveLine deletes a single line owned by the caller.
func CartRemoveLine(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := uuid.Parse(chi.URLParam(r, "lineId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id"))
			return
		}

		if err := store.Remove(r.Context(), userID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartClear empties the cart, including any applied coupon.
func CartClear(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func newCartResponse(lines []models.CartLine, couponCode string) cartResponse {
	resp := cartResponse{Lines: make([]cartLineResponse, 0, len(lines)), CouponCode: couponCode}
	for i := range lines {
		item := newCartLineResponse(lines[i])
		resp.Lines = append(resp.Lines, item)
		resp.SubtotalCents += item.TotalCents
	}
	return resp
}

func newCartLineResponse(line models.CartLine) cartLineResponse {
	return cartLineResponse{
		LineID:           line.ID,
		ProductRef:       line.RawProductRef,
		SizeHint:         line.SizeHint,
		ColorHint:        line.ColorHint,
		Quantity:         line.Quantity,
		UnitPriceCents:   line.UnitPriceCents,
		IsResale:         line.IsResale,
		ResalePriceCents: line.ResalePriceCents,
		TotalCents:       pricing.LineTotal(&line),
		AddedAt:          line.CreatedAt,
	}
}
