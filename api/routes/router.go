package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lokapasar/backend/api/controllers"
	webhookcontrollers "github.com/lokapasar/backend/api/controllers/webhooks"
	"github.com/lokapasar/backend/api/middleware"
	cartsvc "github.com/lokapasar/backend/internal/cart"
	checkoutsvc "github.com/lokapasar/backend/internal/checkout"
	orderssvc "github.com/lokapasar/backend/internal/orders"
	paymentssvc "github.com/lokapasar/backend/internal/payments"
	paymentwebhook "github.com/lokapasar/backend/internal/webhooks/payment"
	shipmentwebhook "github.com/lokapasar/backend/internal/webhooks/shipment"
	"github.com/lokapasar/backend/pkg/config"
	"github.com/lokapasar/backend/pkg/db"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config                 *config.Config
	Logger                 *logger.Logger
	DB                     db.Pinger
	Redis                  *redis.Client
	CartService            cartsvc.Service
	CheckoutService        checkoutsvc.Service
	OrdersService          orderssvc.Service
	PaymentsService        paymentssvc.Service
	PaymentWebhookService  *paymentwebhook.Service
	ShipmentWebhookService *shipmentwebhook.Service
}

// NewRouter assembles the HTTP routing tree.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	// vendor callbacks authenticate with signatures, not user identity
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.PaymentWebhook(p.PaymentWebhookService, p.Logger))
		r.Post("/shipment", webhookcontrollers.ShipmentWebhook(p.ShipmentWebhookService, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(p.Logger))
		r.Use(middleware.Idempotency(p.Redis, p.Logger))

		r.Get("/cart", controllers.CartQuote(p.CartService, p.Logger))
		r.Post("/checkout", controllers.Checkout(p.CheckoutService, p.Logger))
		r.Route("/orders/{orderNumber}", func(r chi.Router) {
			r.Get("/", controllers.OrderDetail(p.OrdersService, p.Logger))
			r.Post("/retry-payment", controllers.OrderRetryPayment(p.PaymentsService, p.Logger))
		})
	})

	return r
}
