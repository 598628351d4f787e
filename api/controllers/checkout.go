package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/api/responses"
	"github.com/swiftcart-dev/swiftcart-backend/api/validators"
	"github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	checkoutsvc "github.com/swiftcart-dev/swiftcart-backend/internal/checkout"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
)

// Checkout submits the caller's cart for fulfillment reconciliation.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), userID, checkoutsvc.Input{
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

// ApplyCoupon validates a coupon against the current cart and pins it for the
// next checkout attempt.
func ApplyCoupon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		application, err := svc.ApplyCoupon(r.Context(), userID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, applyCouponResponse{
			Code:          application.Code,
			DiscountCents: application.DiscountCents,
		})
	}
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method,omitempty" validate:"omitempty,oneof=cash_on_delivery"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

type applyCouponResponse struct {
	Code          string `json:"code"`
	DiscountCents int    `json:"discount_cents"`
}

type checkoutResponse struct {
	Order     *orderResponse     `json:"order,omitempty"`
	Backorder *backorderResponse `json:"backorder,omitempty"`
}

type orderResponse struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	SubtotalCents int                 `json:"subtotal_cents"`
	DiscountCents int                 `json:"discount_cents"`
	ShippingCents int                 `json:"shipping_cents"`
	TotalCents    int                 `json:"total_cents"`
	Items         []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ItemID         uuid.UUID  `json:"item_id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	Qty            int        `json:"qty"`
	UnitPriceCents int        `json:"unit_price_cents"`
	TotalCents     int        `json:"total_cents"`
	IsResale       bool       `json:"is_resale"`
}

type backorderResponse struct {
	DraftID        uuid.UUID               `json:"draft_id"`
	DraftNumber    string                  `json:"draft_number"`
	Status         string                  `json:"status"`
	ProcessedCount int                     `json:"processed_count"`
	SkippedCount   int                     `json:"skipped_count"`
	Items          []backorderItemResponse `json:"items"`
}

type backorderItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	Qty            int       `json:"qty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	AvailableQty   int       `json:"available_qty"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	resp := checkoutResponse{}
	if result.Order != nil {
		resp.Order = newOrderResponse(result.Order)
	}
	if result.Backorder != nil {
		resp.Backorder = newBackorderResponse(result.Backorder)
	}
	return resp
}

func newOrderResponse(order *models.Order) *orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:         item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
			IsResale:       item.IsResale,
		})
	}
	return &orderResponse{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		ShippingCents: order.ShippingCents,
		TotalCents:    order.TotalCents,
		Items:         items,
	}
}

func newBackorderResponse(result *backorders.Result) *backorderResponse {
	resp := &backorderResponse{
		ProcessedCount: result.ProcessedCount,
		SkippedCount:   result.SkippedCount,
	}
	if result.Draft == nil {
		return resp
	}
	resp.DraftID = result.Draft.ID
	resp.DraftNumber = result.Draft.DraftNumber
	resp.Status = string(result.Draft.Status)
	for _, item := range result.Draft.Items {
		resp.Items = append(resp.Items, backorderItemResponse{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			AvailableQty:   item.AvailableQty,
		})
	}
	return resp
}
