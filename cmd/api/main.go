package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lokapasar/backend/api/routes"
	"github.com/lokapasar/backend/internal/cart"
	"github.com/lokapasar/backend/internal/checkout"
	"github.com/lokapasar/backend/internal/orders"
	"github.com/lokapasar/backend/internal/payments"
	"github.com/lokapasar/backend/internal/promos"
	"github.com/lokapasar/backend/internal/shipments"
	paymentwebhook "github.com/lokapasar/backend/internal/webhooks/payment"
	shipmentwebhook "github.com/lokapasar/backend/internal/webhooks/shipment"
	"github.com/lokapasar/backend/pkg/carrier"
	"github.com/lokapasar/backend/pkg/config"
	"github.com/lokapasar/backend/pkg/db"
	"github.com/lokapasar/backend/pkg/logger"
	"github.com/lokapasar/backend/pkg/midtrans"
	"github.com/lokapasar/backend/pkg/migrate"
	"github.com/lokapasar/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := midtrans.NewClient(context.Background(), cfg.Midtrans, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	carrierClient, err := carrier.NewClient(context.Background(), cfg.Carrier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create carrier client", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	promosRepo := promos.NewRepository(dbClient.DB())
	shipmentsRepo := shipments.NewRepository(dbClient.DB())

	promoService, err := promos.NewService(promosRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create promos service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, promoService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(paymentsRepo, ordersRepo, gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, cartRepo, ordersRepo, promoService, paymentsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	shipmentsService, err := shipments.NewService(shipmentsRepo, ordersRepo, carrierClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipments service", err)
		os.Exit(1)
	}

	paymentWebhookService, err := paymentwebhook.NewService(paymentwebhook.ServiceParams{
		PaymentsRepo:      paymentsRepo,
		OrdersRepo:        ordersRepo,
		Shipments:         shipmentsService,
		TransactionRunner: dbClient,
		ServerKey:         gateway.ServerKey(),
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}

	shipmentWebhookService, err := shipmentwebhook.NewService(shipmentwebhook.ServiceParams{
		ShipmentsRepo: shipmentsRepo,
		WebhookSecret: cfg.Carrier.WebhookSecret,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shipment webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:                 cfg,
			Logger:                 logg,
			DB:                     dbClient,
			Redis:                  redisClient,
			CartService:            cartService,
			CheckoutService:        checkoutService,
			OrdersService:          ordersService,
			PaymentsService:        paymentsService,
			PaymentWebhookService:  paymentWebhookService,
			ShipmentWebhookService: shipmentWebhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
