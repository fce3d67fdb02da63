package controllers

import (
	"net/http"

	"github.com/lokapasar/backend/api/responses"
	cartsvc "github.com/lokapasar/backend/internal/cart"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

// CartQuote returns the caller's priced cart with the automatic discount it
// currently qualifies for.
func CartQuote(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.GetQuote(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
