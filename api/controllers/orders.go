package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lokapasar/backend/api/responses"
	orderssvc "github.com/lokapasar/backend/internal/orders"
	paymentssvc "github.com/lokapasar/backend/internal/payments"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

// OrderDetail returns the caller's order read model.
func OrderDetail(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNumber := chi.URLParam(r, "orderNumber")
		detail, err := svc.GetByOrderNumber(r.Context(), userID, orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// OrderRetryPayment re-opens a payment session for a pending order that lost
// its first one.
func OrderRetryPayment(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNumber := chi.URLParam(r, "orderNumber")
		payment, err := svc.RetrySession(r.Context(), userID, orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentResponse(payment))
	}
}
