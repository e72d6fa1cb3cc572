package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threadkart/threadkart-backend/api/controllers"
	"github.com/threadkart/threadkart-backend/api/routes"
	"github.com/threadkart/threadkart-backend/internal/cart"
	"github.com/threadkart/threadkart-backend/internal/checkout"
	"github.com/threadkart/threadkart-backend/internal/fulfillment"
	"github.com/threadkart/threadkart-backend/internal/orders"
	"github.com/threadkart/threadkart-backend/internal/payments"
	"github.com/threadkart/threadkart-backend/internal/products"
	"github.com/threadkart/threadkart-backend/pkg/config"
	"github.com/threadkart/threadkart-backend/pkg/db"
	"github.com/threadkart/threadkart-backend/pkg/events"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/metrics"
	"github.com/threadkart/threadkart-backend/pkg/migrate"
	"github.com/threadkart/threadkart-backend/pkg/pubsub"
	"github.com/threadkart/threadkart-backend/pkg/redis"
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

	publisher := buildPublisher(cfg, logg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logg.Error(context.Background(), "error closing event publisher", err)
		}
	}()

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	conn := dbClient.DB()
	cartRepo := cart.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	cartService, err := cart.NewService(cartRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(dbClient, cartRepo, ordersRepo, publisher, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(dbClient, ordersRepo, cartRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	fulfillmentService, err := fulfillment.NewService(dbClient, fulfillment.NewRepository(conn), publisher, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}
	paymentsService, err := payments.NewService(dbClient, ordersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(cfg, logg, redisClient,
		map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		routes.Services{
			Cart:        cartService,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Fulfillment: fulfillmentService,
			Payments:    paymentsService,
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/", router)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

// buildPublisher wires the Pub/Sub publisher when a GCP project is configured
// and falls back to log-only publishing otherwise, so local development does
// not need an emulator.
func buildPublisher(cfg *config.Config, logg *logger.Logger) events.Publisher {
	if cfg.GCP.ProjectID == "" {
		logg.Warn(context.Background(), "no gcp project configured, publishing events to logs")
		return events.NewLogPublisher(logg)
	}

	client, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub, publishing events to logs", err)
		return events.NewLogPublisher(logg)
	}

	eventsPublisher, err := events.NewPubSubPublisher(client, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event publisher, publishing events to logs", err)
		return events.NewLogPublisher(logg)
	}
	return eventsPublisher
}
