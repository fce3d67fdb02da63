package webhooks

import (
	"io"
	"net/http"

	"github.com/lokapasar/backend/api/responses"
	shipmentwebhook "github.com/lokapasar/backend/internal/webhooks/shipment"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

const carrierSignatureHeader = "X-Callback-Signature"

// ShipmentWebhook receives carrier callbacks. The raw body is handed to the
// service untouched; the signature covers the exact bytes on the wire.
func ShipmentWebhook(svc *shipmentwebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return
		}

		if err := svc.HandleCallback(r.Context(), body, r.Header.Get(carrierSignatureHeader)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
