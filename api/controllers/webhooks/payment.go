package webhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/lokapasar/backend/api/responses"
	paymentwebhook "github.com/lokapasar/backend/internal/webhooks/payment"
	pkgerrors "github.com/lokapasar/backend/pkg/errors"
	"github.com/lokapasar/backend/pkg/logger"
)

// PaymentWebhook receives gateway notifications. Gateway payloads carry
// fields beyond the ones this service reads, so decoding is lenient; the
// service acknowledges everything it resolves to a no-op and only transient
// failures return a retryable status to the gateway.
func PaymentWebhook(svc *paymentwebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return
		}

		var notification paymentwebhook.Notification
		if err := json.Unmarshal(body, &notification); err != nil {
			// The gateway retries non-2xx responses; a body we cannot parse
			// will never parse on retry, so acknowledge and drop it.
			logg.Warn(r.Context(), "malformed payment notification, acknowledging without action")
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		if err := svc.HandleNotification(r.Context(), &notification); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
