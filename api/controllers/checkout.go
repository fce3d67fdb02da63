package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lokapasar/backend/api/responses"
	"github.com/lokapasar/backend/api/validators"
	checkoutsvc "github.com/lokapasar/backend/internal/checkout"
	"github.com/lokapasar/backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

// Checkout converts the caller's cart into an order and opens a payment
// session.
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

		input := checkoutsvc.Input{
			LocationID:   payload.LocationID,
			VoucherCode:  payload.VoucherCode,
			ShippingCost: payload.ShippingCost,
		}
		if payload.Notes != "" {
			notes := validators.SanitizeString(payload.Notes, 500)
			input.Notes = &notes
		}

		result, err := svc.Execute(r.Context(), userID, input)
		if err != nil {
			if result != nil && result.Order != nil {
				// order committed but the gateway was unreachable; hand the
				// client the order so it can retry the payment session
				ctx := logg.WithOrderNumber(r.Context(), result.Order.OrderNumber)
				logg.Error(ctx, "payment session creation failed after checkout", err)
				responses.WriteSuccessStatus(w, http.StatusAccepted, newCheckoutResponse(result))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutRequest struct {
	LocationID   uuid.UUID `json:"location_id" validate:"required"`
	VoucherCode  string    `json:"voucher_code,omitempty" validate:"omitempty,max=64"`
	ShippingCost int64     `json:"shipping_cost" validate:"gte=0"`
	Notes        string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type checkoutResponse struct {
	OrderID        uuid.UUID        `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	Status         string           `json:"status"`
	ItemsAmount    int64            `json:"items_amount"`
	ShippingCost   int64            `json:"shipping_cost"`
	DiscountAmount int64            `json:"discount_amount"`
	TotalAmount    int64            `json:"total_amount"`
	Payment        *paymentResponse `json:"payment,omitempty"`
}

type paymentResponse struct {
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
	Status      string `json:"status"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	order := result.Order
	resp := checkoutResponse{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		ItemsAmount:    order.ItemsAmount,
		ShippingCost:   order.ShippingCost,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
	}
	resp.Payment = newPaymentResponse(result.Payment)
	return resp
}

func newPaymentResponse(payment *models.Payment) *paymentResponse {
	if payment == nil {
		return nil
	}
	return &paymentResponse{
		SnapToken:   payment.SnapToken,
		RedirectURL: payment.RedirectURL,
		Status:      string(payment.Status),
	}
}
